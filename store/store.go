// Package store hides the relational datastore behind one interface. The
// postgres implementation talks to the managed (Supabase) database through
// gorm; the memory implementation backs local runs and tests.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/models"
)

type Store interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.UserRole) error
	UpdateUserGrade(ctx context.Context, id uuid.UUID, grade *int) error
	CountUsers(ctx context.Context) (int64, error)

	ListSubjects(ctx context.Context) ([]models.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	CreateSubject(ctx context.Context, s *models.Subject) error
	SaveSubject(ctx context.Context, s *models.Subject) error
	DeleteSubject(ctx context.Context, id uuid.UUID) error
	CountSubjects(ctx context.Context) (int64, error)

	ListWeeks(ctx context.Context, subjectID uuid.UUID) ([]models.Week, error)
	GetWeek(ctx context.Context, id uuid.UUID) (*models.Week, error)
	CreateWeek(ctx context.Context, w *models.Week) error
	SaveWeek(ctx context.Context, w *models.Week) error
	DeleteWeek(ctx context.Context, id uuid.UUID) error
	CountWeeks(ctx context.Context, subjectID uuid.UUID) (int64, error)

	// ListResources trả mọi tài nguyên của tuần, mới nhất trước; lọc theo khối do services làm.
	ListResources(ctx context.Context, weekID uuid.UUID) ([]models.Resource, error)
	GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	CreateResource(ctx context.Context, r *models.Resource) error
	SaveResource(ctx context.Context, r *models.Resource) error
	// DeleteResource xoá tài nguyên cùng các bình luận của nó.
	DeleteResource(ctx context.Context, id uuid.UUID) error
	CountResources(ctx context.Context, weekID uuid.UUID) (int64, error)
	// CountResourcesByFileURL đếm tài nguyên còn trỏ tới cùng một file đã lưu.
	CountResourcesByFileURL(ctx context.Context, fileURL string) (int64, error)

	ListComments(ctx context.Context, resourceID uuid.UUID) ([]models.Comment, error)
	CountComments(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error

	// ListAttendance lọc theo ngày khi date != nil, sắp xếp event_date giảm dần.
	ListAttendance(ctx context.Context, date *models.Date) ([]models.Attendance, error)
	ListAttendanceForUser(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error)
	// UpsertAttendance ghi đè bản ghi cùng (user_id, event_date).
	UpsertAttendance(ctx context.Context, a *models.Attendance) error

	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	UpdateInventoryStatus(ctx context.Context, id uuid.UUID, status models.InventoryStatus) error
	DeleteInventoryItem(ctx context.Context, id uuid.UUID) error
}
