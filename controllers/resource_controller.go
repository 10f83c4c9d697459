package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
	"github.com/learnclub/club-portal-backend/services"
)

func (h *Handler) GetResourceDetail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.svc.ViewResource(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// readUpload đọc field "file" của form multipart; không có file thì trả nil.
func (h *Handler) readUpload(c *gin.Context) (*services.FileUpload, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Invalid(fmt.Errorf("read upload: %w", err), apperrors.FieldError{Field: "file", Error: "invalid"})
	}
	if header.Size > h.opts.MaxUploadSize {
		return nil, apperrors.Validation(
			fmt.Sprintf("file is larger than %d MB", h.opts.MaxUploadSize>>20),
			apperrors.FieldError{Field: "file", Error: "max"})
	}
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.Backend("open upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Backend("read upload", err)
	}
	return &services.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// CreateResource nhận multipart/form-data: week_id, title, description, type,
// allowed_grade, external_url, file_url, file.
func (h *Handler) CreateResource(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadSize+1<<20)

	weekID, err := parseID(c.PostForm("week_id"), "week_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	grade, err := parseGrade(c.PostForm("allowed_grade"), "allowed_grade")
	if err != nil {
		h.respondError(c, err)
		return
	}
	file, err := h.readUpload(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resource, err := h.svc.CreateResource(c.Request.Context(), viewer(c), services.ResourceInput{
		WeekID:       weekID,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Type:         models.ResourceType(c.PostForm("type")),
		AllowedGrade: grade,
		FileURL:      c.PostForm("file_url"),
		ExternalURL:  c.PostForm("external_url"),
		File:         file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

type resourceUpdateRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AllowedGrade *int   `json:"allowed_grade"`
	ExternalURL  string `json:"external_url"`
}

func (h *Handler) UpdateResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req resourceUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resource, err := h.svc.UpdateResource(c.Request.Context(), viewer(c), id, services.ResourceUpdate{
		Title:        req.Title,
		Description:  req.Description,
		AllowedGrade: req.AllowedGrade,
		ExternalURL:  req.ExternalURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (h *Handler) DeleteResource(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteResource(c.Request.Context(), viewer(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resource deleted"})
}
