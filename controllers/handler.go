package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/middleware"
	"github.com/learnclub/club-portal-backend/services"
)

type Options struct {
	// FrontendURL là gốc cho các redirect sau /auth/callback.
	FrontendURL   string
	MaxUploadSize int64
	SecureCookies bool
}

type Handler struct {
	svc  *services.Services
	log  *zap.Logger
	opts Options
}

func New(svc *services.Services, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 20 << 20
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")
	return &Handler{svc: svc, log: log, opts: opts}
}

func viewer(c *gin.Context) *services.Viewer {
	return middleware.CurrentViewer(c)
}

// respondError chuyển lỗi service thành response JSON {"error": ...}.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": "/login"})
	case errors.Is(err, apperrors.ErrAuthorizationDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &ve):
		body := gin.H{"error": ve.Error()}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, apperrors.FromBinding(err))
		return false
	}
	return true
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.Validation(field+" is not a valid id", apperrors.FieldError{Field: field, Error: "uuid"})
	}
	return id, nil
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := parseID(c.Param("id"), "id")
	if err != nil {
		h.respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// parseGrade đọc khối từ form; chuỗi rỗng nghĩa là mọi khối đều xem được.
func parseGrade(raw, field string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" || raw == "null" {
		return nil, nil
	}
	g, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Validation(field+" must be a number", apperrors.FieldError{Field: field, Error: "number"})
	}
	return &g, nil
}
