package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance là duy nhất theo (user_id, event_date).
type Attendance struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	EventDate Date      `gorm:"type:date;not null;uniqueIndex:idx_attendance_user_date" json:"event_date"`
	Attended  bool      `gorm:"not null;default:false" json:"attended"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Attendance) TableName() string { return "attendance" }
