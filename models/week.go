package models

import (
	"time"

	"github.com/google/uuid"
)

type Week struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	WeekNumber  int       `gorm:"not null" json:"week_number"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	StartDate   *Date     `gorm:"type:date" json:"start_date"`
	EndDate     *Date     `gorm:"type:date" json:"end_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Resources []Resource `gorm:"-" json:"resources,omitempty"`
}
