package services

import (
	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

// Viewer là danh tính đã xác thực của request hiện tại. Middleware dựng nó một
// lần mỗi request từ hồ sơ trong DB, nên role/grade luôn là giá trị mới nhất.
type Viewer struct {
	ID    uuid.UUID       `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	Grade *int            `json:"grade"`
}

func ViewerFromUser(u *models.User) *Viewer {
	if u == nil {
		return nil
	}
	v := &Viewer{ID: u.ID, Email: u.Email, Role: u.Role}
	if u.Grade != nil {
		g := *u.Grade
		v.Grade = &g
	}
	return v
}

func (v *Viewer) IsAdmin() bool {
	return v != nil && v.Role == models.RoleAdmin
}

func RequireAuthenticated(v *Viewer) error {
	if v == nil {
		return apperrors.ErrAuthenticationRequired
	}
	return nil
}

// RequireAdmin trả ErrAuthorizationDenied kèm msg khi viewer không phải admin.
func RequireAdmin(v *Viewer, msg string) error {
	if err := RequireAuthenticated(v); err != nil {
		return err
	}
	if !v.IsAdmin() {
		return apperrors.Denied(msg)
	}
	return nil
}

func RequireOwnerOrAdmin(v *Viewer, ownerID uuid.UUID, msg string) error {
	if err := RequireAuthenticated(v); err != nil {
		return err
	}
	if v.ID != ownerID && !v.IsAdmin() {
		return apperrors.Denied(msg)
	}
	return nil
}

// FilterVisible giữ các tài nguyên viewer được xem theo khối. Admin thấy tất cả;
// học sinh chưa có khối chỉ thấy tài nguyên không gắn khối.
func FilterVisible(v *Viewer, resources []models.Resource) []models.Resource {
	if v.IsAdmin() {
		return resources
	}
	var grade *int
	if v != nil {
		grade = v.Grade
	}
	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if r.VisibleTo(models.RoleStudent, grade) {
			out = append(out, r)
		}
	}
	return out
}
