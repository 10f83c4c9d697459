package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Models liệt kê các bảng cho AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Subject{},
		&models.Week{},
		&models.Resource{},
		&models.Comment{},
		&models.Attendance{},
		&models.InventoryItem{},
	}
}

func (s *Gorm) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func lookupErr(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return apperrors.Backend("load "+entity, err)
}

// affected trả NotFound khi câu lệnh không chạm dòng nào.
func affected(entity, op string, res *gorm.DB) error {
	if res.Error != nil {
		return apperrors.Backend(op+" "+entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(entity)
	}
	return nil
}

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Backend("get sql.DB", err)
	}
	return apperrors.Backend("ping database", sqlDB.PingContext(ctx))
}

// ====== USERS ======

func (s *Gorm) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, lookupErr("user", err)
	}
	return &u, nil
}

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return apperrors.Backend("insert user", s.conn(ctx).Create(u).Error)
}

func (s *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperrors.Backend("list users", err)
	}
	return users, nil
}

func (s *Gorm) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.UserRole) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	return affected("user", "update", res)
}

func (s *Gorm) UpdateUserGrade(ctx context.Context, id uuid.UUID, grade *int) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("grade", grade)
	return affected("user", "update", res)
}

func (s *Gorm) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).Count(&n).Error
	return n, apperrors.Backend("count users", err)
}

// ====== SUBJECTS ======

func (s *Gorm) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := s.conn(ctx).Order("created_at DESC").Find(&subjects).Error; err != nil {
		return nil, apperrors.Backend("list subjects", err)
	}
	return subjects, nil
}

func (s *Gorm) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	var subject models.Subject
	if err := s.conn(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, lookupErr("subject", err)
	}
	return &subject, nil
}

func (s *Gorm) CreateSubject(ctx context.Context, subject *models.Subject) error {
	return apperrors.Backend("insert subject", s.conn(ctx).Create(subject).Error)
}

func (s *Gorm) SaveSubject(ctx context.Context, subject *models.Subject) error {
	return apperrors.Backend("update subject", s.conn(ctx).Save(subject).Error)
}

func (s *Gorm) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return affected("subject", "delete", s.conn(ctx).Delete(&models.Subject{}, "id = ?", id))
}

func (s *Gorm) CountSubjects(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Subject{}).Count(&n).Error
	return n, apperrors.Backend("count subjects", err)
}

// ====== WEEKS ======

func (s *Gorm) ListWeeks(ctx context.Context, subjectID uuid.UUID) ([]models.Week, error) {
	var weeks []models.Week
	if err := s.conn(ctx).
		Where("subject_id = ?", subjectID).
		Order("week_number ASC").
		Find(&weeks).Error; err != nil {
		return nil, apperrors.Backend("list weeks", err)
	}
	return weeks, nil
}

func (s *Gorm) GetWeek(ctx context.Context, id uuid.UUID) (*models.Week, error) {
	var w models.Week
	if err := s.conn(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, lookupErr("week", err)
	}
	return &w, nil
}

func (s *Gorm) CreateWeek(ctx context.Context, w *models.Week) error {
	return apperrors.Backend("insert week", s.conn(ctx).Create(w).Error)
}

func (s *Gorm) SaveWeek(ctx context.Context, w *models.Week) error {
	return apperrors.Backend("update week", s.conn(ctx).Save(w).Error)
}

func (s *Gorm) DeleteWeek(ctx context.Context, id uuid.UUID) error {
	return affected("week", "delete", s.conn(ctx).Delete(&models.Week{}, "id = ?", id))
}

func (s *Gorm) CountWeeks(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Week{}).Where("subject_id = ?", subjectID).Count(&n).Error
	return n, apperrors.Backend("count weeks", err)
}

// ====== RESOURCES ======

func (s *Gorm) ListResources(ctx context.Context, weekID uuid.UUID) ([]models.Resource, error) {
	var resources []models.Resource
	if err := s.conn(ctx).
		Where("week_id = ?", weekID).
		Order("created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, apperrors.Backend("list resources", err)
	}
	return resources, nil
}

func (s *Gorm) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	var r models.Resource
	if err := s.conn(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, lookupErr("resource", err)
	}
	return &r, nil
}

func (s *Gorm) CreateResource(ctx context.Context, r *models.Resource) error {
	return apperrors.Backend("insert resource", s.conn(ctx).Create(r).Error)
}

func (s *Gorm) SaveResource(ctx context.Context, r *models.Resource) error {
	return apperrors.Backend("update resource", s.conn(ctx).Save(r).Error)
}

func (s *Gorm) DeleteResource(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return apperrors.Backend("delete resource comments", err)
		}
		return affected("resource", "delete", tx.Delete(&models.Resource{}, "id = ?", id))
	})
}

func (s *Gorm) CountResources(ctx context.Context, weekID uuid.UUID) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Resource{}).Where("week_id = ?", weekID).Count(&n).Error
	return n, apperrors.Backend("count resources", err)
}

func (s *Gorm) CountResourcesByFileURL(ctx context.Context, fileURL string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Resource{}).Where("file_url = ?", fileURL).Count(&n).Error
	return n, apperrors.Backend("count resources by file", err)
}

// ====== COMMENTS ======

func (s *Gorm) ListComments(ctx context.Context, resourceID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.conn(ctx).
		Preload("User").
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, apperrors.Backend("list comments", err)
	}
	return comments, nil
}

func (s *Gorm) CountComments(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(resourceIDs))
	if len(resourceIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ResourceID uuid.UUID
		Total      int64
	}
	if err := s.conn(ctx).Model(&models.Comment{}).
		Select("resource_id, COUNT(*) AS total").
		Where("resource_id IN ?", resourceIDs).
		Group("resource_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Backend("count comments", err)
	}
	for _, row := range rows {
		counts[row.ResourceID] = row.Total
	}
	return counts, nil
}

func (s *Gorm) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, lookupErr("comment", err)
	}
	return &c, nil
}

func (s *Gorm) CreateComment(ctx context.Context, c *models.Comment) error {
	return apperrors.Backend("insert comment", s.conn(ctx).Omit("User").Create(c).Error)
}

func (s *Gorm) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return affected("comment", "delete", s.conn(ctx).Delete(&models.Comment{}, "id = ?", id))
}

// ====== ATTENDANCE ======

func (s *Gorm) ListAttendance(ctx context.Context, date *models.Date) ([]models.Attendance, error) {
	q := s.conn(ctx).Preload("User")
	if date != nil {
		q = q.Where("event_date = ?", *date)
	}
	var records []models.Attendance
	if err := q.Order("event_date DESC").Find(&records).Error; err != nil {
		return nil, apperrors.Backend("list attendance", err)
	}
	return records, nil
}

func (s *Gorm) ListAttendanceForUser(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error) {
	var records []models.Attendance
	if err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("event_date DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Backend("list attendance", err)
	}
	return records, nil
}

// UpsertAttendance ghi theo (user_id, event_date) rồi đọc lại dòng đã lưu, để
// created_at là của lần đánh dấu đầu tiên.
func (s *Gorm) UpsertAttendance(ctx context.Context, a *models.Attendance) error {
	err := s.conn(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"attended", "updated_at"}),
	}).Create(a).Error
	if err != nil {
		return apperrors.Backend("upsert attendance", err)
	}
	var stored models.Attendance
	if err := s.conn(ctx).First(&stored, "user_id = ? AND event_date = ?", a.UserID, a.EventDate).Error; err != nil {
		return apperrors.Backend("reload attendance", err)
	}
	*a = stored
	return nil
}

// ====== INVENTORY ======

func (s *Gorm) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.conn(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, apperrors.Backend("list inventory", err)
	}
	return items, nil
}

func (s *Gorm) GetInventoryItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.conn(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, lookupErr("inventory item", err)
	}
	return &item, nil
}

func (s *Gorm) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	return apperrors.Backend("insert inventory item", s.conn(ctx).Create(item).Error)
}

func (s *Gorm) UpdateInventoryStatus(ctx context.Context, id uuid.UUID, status models.InventoryStatus) error {
	res := s.conn(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Update("status", status)
	return affected("inventory item", "update", res)
}

func (s *Gorm) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	return affected("inventory item", "delete", s.conn(ctx).Delete(&models.InventoryItem{}, "id = ?", id))
}
