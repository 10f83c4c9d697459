package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/services"
)

type weekRequest struct {
	SubjectID   string `json:"subject_id"`
	WeekNumber  int    `json:"week_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (r weekRequest) input() services.WeekInput {
	return services.WeekInput{
		WeekNumber:  r.WeekNumber,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// GetWeeks: GET /api/admin/weeks?subject_id=
func (h *Handler) GetWeeks(c *gin.Context) {
	subjectID, err := parseID(c.Query("subject_id"), "subject_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	weeks, err := h.svc.ListWeeks(c.Request.Context(), viewer(c), subjectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (h *Handler) CreateWeek(c *gin.Context) {
	var req weekRequest
	if !h.bindJSON(c, &req) {
		return
	}
	subjectID, err := parseID(req.SubjectID, "subject_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	week, err := h.svc.CreateWeek(c.Request.Context(), viewer(c), subjectID, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, week)
}

func (h *Handler) UpdateWeek(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req weekRequest
	if !h.bindJSON(c, &req) {
		return
	}
	week, err := h.svc.UpdateWeek(c.Request.Context(), viewer(c), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (h *Handler) DeleteWeek(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteWeek(c.Request.Context(), viewer(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "week deleted"})
}
