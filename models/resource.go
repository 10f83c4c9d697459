package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourcePDF   ResourceType = "pdf"
	ResourceImage ResourceType = "image"
	ResourceLink  ResourceType = "link"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourcePDF, ResourceImage, ResourceLink:
		return true
	}
	return false
}

// HasFile báo loại tài nguyên cần file đã upload.
func (t ResourceType) HasFile() bool {
	return t == ResourcePDF || t == ResourceImage
}

var (
	ErrLinkNeedsURL      = errors.New("external URL is required for link resources")
	ErrFileNeedsURL      = errors.New("file URL is required for PDF or image resources")
	ErrLinkHasFile       = errors.New("link resources cannot carry a file URL")
	ErrFileHasExternal   = errors.New("file resources cannot carry an external URL")
	ErrUnknownResource   = errors.New("resource type must be pdf, image or link")
	ErrAllowedGradeRange = errors.New("allowed grade must be between 1 and 8")
)

type Resource struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WeekID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"week_id"`
	Title        string       `gorm:"size:255;not null" json:"title"`
	Description  *string      `gorm:"type:text" json:"description"`
	Type         ResourceType `gorm:"type:varchar(10);not null" json:"type"`
	FileURL      *string      `gorm:"type:text" json:"file_url"`
	ExternalURL  *string      `gorm:"type:text" json:"external_url"`
	AllowedGrade *int         `json:"allowed_grade"` // null: mọi khối đều xem được
	CreatedBy    uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// CheckShape kiểm tra ràng buộc giữa loại tài nguyên và URL.
func (r *Resource) CheckShape() error {
	if !r.Type.Valid() {
		return ErrUnknownResource
	}
	if r.AllowedGrade != nil && !ValidGrade(*r.AllowedGrade) {
		return ErrAllowedGradeRange
	}
	if r.Type == ResourceLink {
		if blank(r.ExternalURL) {
			return ErrLinkNeedsURL
		}
		if r.FileURL != nil {
			return ErrLinkHasFile
		}
		return nil
	}
	if blank(r.FileURL) {
		return ErrFileNeedsURL
	}
	if r.ExternalURL != nil {
		return ErrFileHasExternal
	}
	return nil
}

// VisibleTo báo tài nguyên có hiển thị cho người xem với role và grade cho trước.
func (r *Resource) VisibleTo(role UserRole, grade *int) bool {
	if role == RoleAdmin || r.AllowedGrade == nil {
		return true
	}
	return grade != nil && *grade == *r.AllowedGrade
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
