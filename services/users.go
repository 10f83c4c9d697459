package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

func gradeError() error {
	return apperrors.Validation("grade must be between 1 and 8", apperrors.FieldError{Field: "grade", Error: "range"})
}

// Profile trả hồ sơ của viewer.
func (s *Services) Profile(ctx context.Context, v *Viewer) (*models.User, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	return s.Store.GetUser(ctx, v.ID)
}

// CompleteOnboarding lưu khối (1..8) người dùng tự chọn.
func (s *Services) CompleteOnboarding(ctx context.Context, v *Viewer, grade int) (*models.User, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	if !models.ValidGrade(grade) {
		return nil, gradeError()
	}
	if err := s.Store.UpdateUserGrade(ctx, v.ID, &grade); err != nil {
		return nil, err
	}
	return s.Store.GetUser(ctx, v.ID)
}

type GradeGroup struct {
	Grade    int           `json:"grade"`
	Students []models.User `json:"students"`
}

type UserDirectory struct {
	Users      []models.User `json:"users"`
	Admins     []models.User `json:"admins"`
	ByGrade    []GradeGroup  `json:"by_grade"`
	Unassigned []models.User `json:"unassigned"`
}

func (s *Services) ListUsers(ctx context.Context, v *Viewer) (*UserDirectory, error) {
	if err := RequireAdmin(v, "only admins can list users"); err != nil {
		return nil, err
	}
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	dir := &UserDirectory{Users: users, Admins: []models.User{}, ByGrade: []GradeGroup{}, Unassigned: []models.User{}}
	groups := map[int][]models.User{}
	for _, u := range users {
		switch {
		case u.Role == models.RoleAdmin:
			dir.Admins = append(dir.Admins, u)
		case u.Grade == nil:
			dir.Unassigned = append(dir.Unassigned, u)
		default:
			groups[*u.Grade] = append(groups[*u.Grade], u)
		}
	}
	for g, students := range groups {
		dir.ByGrade = append(dir.ByGrade, GradeGroup{Grade: g, Students: students})
	}
	sort.Slice(dir.ByGrade, func(i, j int) bool { return dir.ByGrade[i].Grade < dir.ByGrade[j].Grade })
	return dir, nil
}

// SetUserRole: admin không được tự đổi role của chính mình.
func (s *Services) SetUserRole(ctx context.Context, v *Viewer, id uuid.UUID, role models.UserRole) (*models.User, error) {
	if err := RequireAdmin(v, "only admins can update user roles"); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.Validation("role must be admin or student", apperrors.FieldError{Field: "role", Error: "oneof"})
	}
	if id == v.ID {
		return nil, apperrors.Conflict("admins cannot change their own role")
	}
	if err := s.Store.UpdateUserRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.Store.GetUser(ctx, id)
}

// SetUserGrade gán hoặc xoá (nil) khối của người dùng.
func (s *Services) SetUserGrade(ctx context.Context, v *Viewer, id uuid.UUID, grade *int) (*models.User, error) {
	if err := RequireAdmin(v, "only admins can update user grades"); err != nil {
		return nil, err
	}
	if grade != nil && !models.ValidGrade(*grade) {
		return nil, gradeError()
	}
	if err := s.Store.UpdateUserGrade(ctx, id, grade); err != nil {
		return nil, err
	}
	return s.Store.GetUser(ctx, id)
}

type Overview struct {
	Users           int64               `json:"users"`
	Subjects        int64               `json:"subjects"`
	Today           string              `json:"today"`
	PresentToday    int                 `json:"present_today"`
	TodayAttendance []models.Attendance `json:"today_attendance"`
}

func (s *Services) AdminOverview(ctx context.Context, v *Viewer) (*Overview, error) {
	if err := RequireAdmin(v, "only admins can view the overview"); err != nil {
		return nil, err
	}
	users, err := s.Store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.Store.CountSubjects(ctx)
	if err != nil {
		return nil, err
	}
	today := models.NewDate(s.Now())
	records, err := s.Store.ListAttendance(ctx, &today)
	if err != nil {
		return nil, err
	}
	o := &Overview{Users: users, Subjects: subjects, Today: today.String(), TodayAttendance: records}
	for _, r := range records {
		if r.Attended {
			o.PresentToday++
		}
	}
	return o, nil
}
