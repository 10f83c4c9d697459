package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/models"
)

type roleRequest struct {
	Role string `json:"role"`
}

// grade null -> bỏ gán khối
type gradeRequest struct {
	Grade *int `json:"grade"`
}

func (h *Handler) AdminOverview(c *gin.Context) {
	overview, err := h.svc.AdminOverview(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) GetUsers(c *gin.Context) {
	dir, err := h.svc.ListUsers(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dir)
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req roleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.SetUserRole(c.Request.Context(), viewer(c), id, models.UserRole(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUserGrade(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req gradeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.svc.SetUserGrade(c.Request.Context(), viewer(c), id, req.Grade)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
