package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) CreateComment(c *gin.Context) {
	resourceID, ok := h.pathID(c)
	if !ok {
		return
	}
	var req commentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), viewer(c), resourceID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), viewer(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
