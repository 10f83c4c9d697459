package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"   // Quản trị câu lạc bộ
	RoleStudent UserRole = "student" // Học sinh
)

const (
	MinGrade = 1
	MaxGrade = 8
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User là hồ sơ gắn với tài khoản của nhà cung cấp xác thực, ID trùng với auth user id.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	FullName  *string   `gorm:"size:255" json:"full_name"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url"`
	Grade     *int      `json:"grade"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidGrade báo grade nằm trong khoảng 1..8.
func ValidGrade(g int) bool {
	return g >= MinGrade && g <= MaxGrade
}
