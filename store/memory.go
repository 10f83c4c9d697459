package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

// Memory là Store trong bộ nhớ, dùng khi DB_DRIVER=memory và trong test.
type Memory struct {
	mu    sync.RWMutex
	now   func() time.Time
	seq   time.Duration
	users map[uuid.UUID]*models.User

	subjects   map[uuid.UUID]*models.Subject
	weeks      map[uuid.UUID]*models.Week
	resources  map[uuid.UUID]*models.Resource
	comments   map[uuid.UUID]*models.Comment
	attendance map[uuid.UUID]*models.Attendance
	inventory  map[uuid.UUID]*models.InventoryItem

	// FailNext, khi khác nil, được trả cho lần ghi kế tiếp rồi tự xoá.
	FailNext error
}

func NewMemory() *Memory {
	return &Memory{
		now:        time.Now,
		users:      map[uuid.UUID]*models.User{},
		subjects:   map[uuid.UUID]*models.Subject{},
		weeks:      map[uuid.UUID]*models.Week{},
		resources:  map[uuid.UUID]*models.Resource{},
		comments:   map[uuid.UUID]*models.Comment{},
		attendance: map[uuid.UUID]*models.Attendance{},
		inventory:  map[uuid.UUID]*models.InventoryItem{},
	}
}

// stamp trả thời điểm tăng dần nghiêm ngặt để thứ tự created_at ổn định.
func (m *Memory) stamp() time.Time {
	m.seq += time.Microsecond
	return m.now().Add(m.seq)
}

func (m *Memory) failure(op string) error {
	if m.FailNext == nil {
		return nil
	}
	err := m.FailNext
	m.FailNext = nil
	return apperrors.Backend(op, err)
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// ====== USERS ======

func (m *Memory) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert user"); err != nil {
		return err
	}
	ensureID(&u.ID)
	if _, exists := m.users[u.ID]; exists {
		return apperrors.Backend("insert user", apperrors.Conflict("duplicate user id"))
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	u.CreatedAt = m.stamp()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update user"); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	u.Role = role
	u.UpdatedAt = m.stamp()
	return nil
}

func (m *Memory) UpdateUserGrade(ctx context.Context, id uuid.UUID, grade *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update user"); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	if grade != nil {
		g := *grade
		grade = &g
	}
	u.Grade = grade
	u.UpdatedAt = m.stamp()
	return nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// ====== SUBJECTS ======

func (m *Memory) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetSubject(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subjects[id]
	if !ok {
		return nil, apperrors.NotFound("subject")
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) CreateSubject(ctx context.Context, s *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert subject"); err != nil {
		return err
	}
	ensureID(&s.ID)
	s.CreatedAt = m.stamp()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.subjects[s.ID] = &cp
	return nil
}

func (m *Memory) SaveSubject(ctx context.Context, s *models.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update subject"); err != nil {
		return err
	}
	if _, ok := m.subjects[s.ID]; !ok {
		return apperrors.NotFound("subject")
	}
	s.UpdatedAt = m.stamp()
	cp := *s
	m.subjects[s.ID] = &cp
	return nil
}

func (m *Memory) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete subject"); err != nil {
		return err
	}
	if _, ok := m.subjects[id]; !ok {
		return apperrors.NotFound("subject")
	}
	delete(m.subjects, id)
	return nil
}

func (m *Memory) CountSubjects(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.subjects)), nil
}

// ====== WEEKS ======

func (m *Memory) ListWeeks(ctx context.Context, subjectID uuid.UUID) ([]models.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Week{}
	for _, w := range m.weeks {
		if w.SubjectID == subjectID {
			out = append(out, *w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber < out[j].WeekNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetWeek(ctx context.Context, id uuid.UUID) (*models.Week, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.weeks[id]
	if !ok {
		return nil, apperrors.NotFound("week")
	}
	cp := *w
	return &cp, nil
}

func (m *Memory) CreateWeek(ctx context.Context, w *models.Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert week"); err != nil {
		return err
	}
	ensureID(&w.ID)
	w.CreatedAt = m.stamp()
	w.UpdatedAt = w.CreatedAt
	cp := *w
	cp.Resources = nil
	m.weeks[w.ID] = &cp
	return nil
}

func (m *Memory) SaveWeek(ctx context.Context, w *models.Week) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update week"); err != nil {
		return err
	}
	if _, ok := m.weeks[w.ID]; !ok {
		return apperrors.NotFound("week")
	}
	w.UpdatedAt = m.stamp()
	cp := *w
	cp.Resources = nil
	m.weeks[w.ID] = &cp
	return nil
}

func (m *Memory) DeleteWeek(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete week"); err != nil {
		return err
	}
	if _, ok := m.weeks[id]; !ok {
		return apperrors.NotFound("week")
	}
	delete(m.weeks, id)
	return nil
}

func (m *Memory) CountWeeks(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, w := range m.weeks {
		if w.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

// ====== RESOURCES ======

func (m *Memory) ListResources(ctx context.Context, weekID uuid.UUID) ([]models.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Resource{}
	for _, r := range m.resources {
		if r.WeekID == weekID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.resources[id]
	if !ok {
		return nil, apperrors.NotFound("resource")
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) CreateResource(ctx context.Context, r *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert resource"); err != nil {
		return err
	}
	ensureID(&r.ID)
	r.CreatedAt = m.stamp()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

func (m *Memory) SaveResource(ctx context.Context, r *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update resource"); err != nil {
		return err
	}
	if _, ok := m.resources[r.ID]; !ok {
		return apperrors.NotFound("resource")
	}
	r.UpdatedAt = m.stamp()
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

func (m *Memory) DeleteResource(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete resource"); err != nil {
		return err
	}
	if _, ok := m.resources[id]; !ok {
		return apperrors.NotFound("resource")
	}
	for cid, c := range m.comments {
		if c.ResourceID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.resources, id)
	return nil
}

func (m *Memory) CountResources(ctx context.Context, weekID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.resources {
		if r.WeekID == weekID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountResourcesByFileURL(ctx context.Context, fileURL string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, r := range m.resources {
		if r.FileURL != nil && *r.FileURL == fileURL {
			n++
		}
	}
	return n, nil
}

// ====== COMMENTS ======

func (m *Memory) ListComments(ctx context.Context, resourceID uuid.UUID) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.ResourceID != resourceID {
			continue
		}
		cp := *c
		if u, ok := m.users[c.UserID]; ok {
			author := *u
			cp.User = &author
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountComments(ctx context.Context, resourceIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		wanted[id] = true
	}
	counts := make(map[uuid.UUID]int64, len(resourceIDs))
	for _, c := range m.comments {
		if wanted[c.ResourceID] {
			counts[c.ResourceID]++
		}
	}
	return counts, nil
}

func (m *Memory) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, apperrors.NotFound("comment")
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) CreateComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert comment"); err != nil {
		return err
	}
	ensureID(&c.ID)
	c.CreatedAt = m.stamp()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.User = nil
	m.comments[c.ID] = &cp
	return nil
}

func (m *Memory) DeleteComment(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete comment"); err != nil {
		return err
	}
	if _, ok := m.comments[id]; !ok {
		return apperrors.NotFound("comment")
	}
	delete(m.comments, id)
	return nil
}

// ====== ATTENDANCE ======

func (m *Memory) withUser(a models.Attendance) models.Attendance {
	if u, ok := m.users[a.UserID]; ok {
		cp := *u
		a.User = &cp
	}
	return a
}

func sortAttendance(out []models.Attendance) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.After(out[j].EventDate.Time)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}

func (m *Memory) ListAttendance(ctx context.Context, date *models.Date) ([]models.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Attendance{}
	for _, a := range m.attendance {
		if date != nil && !a.EventDate.Equal(*date) {
			continue
		}
		out = append(out, m.withUser(*a))
	}
	sortAttendance(out)
	return out, nil
}

func (m *Memory) ListAttendanceForUser(ctx context.Context, userID uuid.UUID) ([]models.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Attendance{}
	for _, a := range m.attendance {
		if a.UserID == userID {
			cp := *a
			out = append(out, cp)
		}
	}
	sortAttendance(out)
	return out, nil
}

func (m *Memory) UpsertAttendance(ctx context.Context, a *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("upsert attendance"); err != nil {
		return err
	}
	for _, existing := range m.attendance {
		if existing.UserID == a.UserID && existing.EventDate.Equal(a.EventDate) {
			existing.Attended = a.Attended
			existing.UpdatedAt = m.stamp()
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			a.UpdatedAt = existing.UpdatedAt
			return nil
		}
	}
	ensureID(&a.ID)
	a.CreatedAt = m.stamp()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	cp.User = nil
	m.attendance[a.ID] = &cp
	return nil
}

// ====== INVENTORY ======

func (m *Memory) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.InventoryItem, 0, len(m.inventory))
	for _, item := range m.inventory {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetInventoryItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.inventory[id]
	if !ok {
		return nil, apperrors.NotFound("inventory item")
	}
	cp := *item
	return &cp, nil
}

func (m *Memory) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("insert inventory item"); err != nil {
		return err
	}
	ensureID(&item.ID)
	item.CreatedAt = m.stamp()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	m.inventory[item.ID] = &cp
	return nil
}

func (m *Memory) UpdateInventoryStatus(ctx context.Context, id uuid.UUID, status models.InventoryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update inventory item"); err != nil {
		return err
	}
	item, ok := m.inventory[id]
	if !ok {
		return apperrors.NotFound("inventory item")
	}
	item.Status = status
	item.UpdatedAt = m.stamp()
	return nil
}

func (m *Memory) DeleteInventoryItem(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("delete inventory item"); err != nil {
		return err
	}
	if _, ok := m.inventory[id]; !ok {
		return apperrors.NotFound("inventory item")
	}
	delete(m.inventory, id)
	return nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Gorm)(nil)
)
