package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/services"
)

type attendanceRequest struct {
	UserID    string `json:"user_id"`
	EventDate string `json:"event_date"`
	Attended  *bool  `json:"attended"`
}

// GetAttendance: ?date=YYYY-MM-DD lọc theo ngày, bỏ trống thì lấy tất cả.
func (h *Handler) GetAttendance(c *gin.Context) {
	records, err := h.svc.ListAttendance(c.Request.Context(), viewer(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}

func (h *Handler) MarkAttendance(c *gin.Context) {
	var req attendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	userID, err := parseID(req.UserID, "user_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	attended := req.Attended != nil && *req.Attended
	record, err := h.svc.RecordAttendance(c.Request.Context(), viewer(c), services.AttendanceInput{
		UserID:    userID,
		EventDate: req.EventDate,
		Attended:  attended,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) ExportAttendance(c *gin.Context) {
	date := c.Query("date")
	data, err := h.svc.ExportAttendance(c.Request.Context(), viewer(c), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	name := "attendance.xlsx"
	if date != "" {
		name = "attendance-" + date + ".xlsx"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *Handler) MyAttendance(c *gin.Context) {
	records, err := h.svc.MyAttendance(c.Request.Context(), viewer(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records})
}
