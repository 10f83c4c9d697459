package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/services"
)

type subjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r subjectRequest) input() services.SubjectInput {
	return services.SubjectInput{Name: r.Name, Description: r.Description}
}

// Dashboard: danh sách môn học, mới nhất trước.
func (h *Handler) GetSubjects(c *gin.Context) {
	subjects, err := h.svc.ListSubjects(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) GetSubjectDetail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.svc.ViewSubject(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CreateSubject(c *gin.Context) {
	var req subjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	subject, err := h.svc.CreateSubject(c.Request.Context(), viewer(c), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *Handler) UpdateSubject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req subjectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	subject, err := h.svc.UpdateSubject(c.Request.Context(), viewer(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *Handler) DeleteSubject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubject(c.Request.Context(), viewer(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subject deleted"})
}
