package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

// ============ SUBJECTS ============

type SubjectInput struct {
	Name        string
	Description string
}

func (in SubjectInput) validate() (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", apperrors.Validation("subject name is required", apperrors.FieldError{Field: "name", Error: "required"})
	}
	return name, nil
}

func (s *Services) ListSubjects(ctx context.Context, v *Viewer) ([]models.Subject, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	return s.Store.ListSubjects(ctx)
}

func (s *Services) CreateSubject(ctx context.Context, v *Viewer, in SubjectInput) (*models.Subject, error) {
	if err := RequireAdmin(v, "only admins can create subjects"); err != nil {
		return nil, err
	}
	name, err := in.validate()
	if err != nil {
		return nil, err
	}
	subject := &models.Subject{
		Name:        name,
		Slug:        slug.Make(name),
		Description: optional(in.Description),
		CreatedBy:   v.ID,
	}
	if err := s.Store.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *Services) UpdateSubject(ctx context.Context, v *Viewer, id uuid.UUID, in SubjectInput) (*models.Subject, error) {
	if err := RequireAdmin(v, "only admins can update subjects"); err != nil {
		return nil, err
	}
	name, err := in.validate()
	if err != nil {
		return nil, err
	}
	subject, err := s.Store.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	subject.Name = name
	subject.Slug = slug.Make(name)
	subject.Description = optional(in.Description)
	subject.UpdatedAt = s.Now()
	if err := s.Store.SaveSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject từ chối khi môn học còn tuần.
func (s *Services) DeleteSubject(ctx context.Context, v *Viewer, id uuid.UUID) error {
	if err := RequireAdmin(v, "only admins can delete subjects"); err != nil {
		return err
	}
	if _, err := s.Store.GetSubject(ctx, id); err != nil {
		return err
	}
	n, err := s.Store.CountWeeks(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.Conflict("subject still has weeks; delete them first")
	}
	return s.Store.DeleteSubject(ctx, id)
}

// ============ WEEKS ============

type WeekInput struct {
	WeekNumber  int
	Title       string
	Description string
	StartDate   string
	EndDate     string
}

func parseOptionalDate(field, raw string) (*models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, apperrors.Invalid(err, apperrors.FieldError{Field: field, Error: "date"})
	}
	return &d, nil
}

func (in WeekInput) apply(w *models.Week) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return apperrors.Validation("week title is required", apperrors.FieldError{Field: "title", Error: "required"})
	}
	if in.WeekNumber < 1 {
		return apperrors.Validation("week number must be 1 or more", apperrors.FieldError{Field: "week_number", Error: "min"})
	}
	start, err := parseOptionalDate("start_date", in.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("end_date", in.EndDate)
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(start.Time) {
		return apperrors.Validation("end date cannot be before start date", apperrors.FieldError{Field: "end_date", Error: "gtefield"})
	}
	w.WeekNumber = in.WeekNumber
	w.Title = title
	w.Description = optional(in.Description)
	w.StartDate = start
	w.EndDate = end
	return nil
}

func (s *Services) ListWeeks(ctx context.Context, v *Viewer, subjectID uuid.UUID) ([]models.Week, error) {
	if err := RequireAdmin(v, "only admins can list weeks"); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.Store.ListWeeks(ctx, subjectID)
}

func (s *Services) CreateWeek(ctx context.Context, v *Viewer, subjectID uuid.UUID, in WeekInput) (*models.Week, error) {
	if err := RequireAdmin(v, "only admins can create weeks"); err != nil {
		return nil, err
	}
	week := &models.Week{SubjectID: subjectID}
	if err := in.apply(week); err != nil {
		return nil, err
	}
	if _, err := s.Store.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	if err := s.Store.CreateWeek(ctx, week); err != nil {
		return nil, err
	}
	return week, nil
}

func (s *Services) UpdateWeek(ctx context.Context, v *Viewer, id uuid.UUID, in WeekInput) (*models.Week, error) {
	if err := RequireAdmin(v, "only admins can update weeks"); err != nil {
		return nil, err
	}
	week, err := s.Store.GetWeek(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(week); err != nil {
		return nil, err
	}
	week.UpdatedAt = s.Now()
	if err := s.Store.SaveWeek(ctx, week); err != nil {
		return nil, err
	}
	return week, nil
}

// DeleteWeek từ chối khi tuần còn tài nguyên.
func (s *Services) DeleteWeek(ctx context.Context, v *Viewer, id uuid.UUID) error {
	if err := RequireAdmin(v, "only admins can delete weeks"); err != nil {
		return err
	}
	if _, err := s.Store.GetWeek(ctx, id); err != nil {
		return err
	}
	n, err := s.Store.CountResources(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.Conflict("week still has resources; delete them first")
	}
	return s.Store.DeleteWeek(ctx, id)
}

// ============ RESOURCES ============

type ResourceInput struct {
	WeekID       uuid.UUID
	Title        string
	Description  string
	Type         models.ResourceType
	AllowedGrade *int
	FileURL      string
	ExternalURL  string
	File         *FileUpload
}

type ResourceUpdate struct {
	Title        string
	Description  string
	AllowedGrade *int
	ExternalURL  string
}

func checkAllowedGrade(g *int) error {
	if g != nil && !models.ValidGrade(*g) {
		return apperrors.Invalid(models.ErrAllowedGradeRange, apperrors.FieldError{Field: "allowed_grade", Error: "range"})
	}
	return nil
}

func checkHTTPURL(field, label, raw string) (string, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.Validation(label+" must be an absolute http(s) URL", apperrors.FieldError{Field: field, Error: "url"})
	}
	return raw, nil
}

func checkExternalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.Invalid(models.ErrLinkNeedsURL, apperrors.FieldError{Field: "external_url", Error: "required"})
	}
	return checkHTTPURL("external_url", "external URL", raw)
}

func (s *Services) CreateResource(ctx context.Context, v *Viewer, in ResourceInput) (*models.Resource, error) {
	if err := RequireAdmin(v, "only admins can create resources"); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if in.WeekID == uuid.Nil || title == "" {
		return nil, apperrors.Validation("week and title are required")
	}
	if !in.Type.Valid() {
		return nil, apperrors.Invalid(models.ErrUnknownResource, apperrors.FieldError{Field: "type", Error: "oneof"})
	}
	if err := checkAllowedGrade(in.AllowedGrade); err != nil {
		return nil, err
	}

	resource := &models.Resource{
		WeekID:       in.WeekID,
		Title:        title,
		Description:  optional(in.Description),
		Type:         in.Type,
		AllowedGrade: in.AllowedGrade,
		CreatedBy:    v.ID,
	}
	if in.Type == models.ResourceLink {
		link, err := checkExternalURL(in.ExternalURL)
		if err != nil {
			return nil, err
		}
		resource.ExternalURL = &link
	}

	week, err := s.Store.GetWeek(ctx, in.WeekID)
	if err != nil {
		return nil, err
	}

	var stored *StoredObject
	if in.Type.HasFile() {
		switch {
		case in.File != nil && len(in.File.Data) > 0:
			stored, err = s.uploadResourceFile(ctx, in.Type, week.SubjectID, week.ID, in.File)
			if err != nil {
				return nil, err
			}
			resource.FileURL = &stored.URL
		case strings.TrimSpace(in.FileURL) != "":
			fileURL, err := checkHTTPURL("file_url", "file URL", strings.TrimSpace(in.FileURL))
			if err != nil {
				return nil, err
			}
			resource.FileURL = &fileURL
		default:
			return nil, apperrors.Invalid(models.ErrFileNeedsURL, apperrors.FieldError{Field: "file", Error: "required"})
		}
	}

	if err := resource.CheckShape(); err != nil {
		if stored != nil {
			s.discard(ctx, stored.Bucket, stored.Path)
		}
		return nil, apperrors.Invalid(err)
	}
	if err := s.Store.CreateResource(ctx, resource); err != nil {
		if stored != nil {
			s.Log.Warn("resource insert failed after upload, removing object",
				zap.String("bucket", stored.Bucket), zap.String("path", stored.Path), zap.Error(err))
			s.discard(ctx, stored.Bucket, stored.Path)
		}
		return nil, err
	}
	return resource, nil
}

func (s *Services) UpdateResource(ctx context.Context, v *Viewer, id uuid.UUID, in ResourceUpdate) (*models.Resource, error) {
	if err := RequireAdmin(v, "only admins can update resources"); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("resource title is required", apperrors.FieldError{Field: "title", Error: "required"})
	}
	if err := checkAllowedGrade(in.AllowedGrade); err != nil {
		return nil, err
	}
	resource, err := s.Store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.Type == models.ResourceLink && strings.TrimSpace(in.ExternalURL) != "" {
		link, err := checkExternalURL(in.ExternalURL)
		if err != nil {
			return nil, err
		}
		resource.ExternalURL = &link
	}
	resource.Title = title
	resource.Description = optional(in.Description)
	resource.AllowedGrade = in.AllowedGrade
	resource.UpdatedAt = s.Now()
	if err := resource.CheckShape(); err != nil {
		return nil, apperrors.Invalid(err)
	}
	if err := s.Store.SaveResource(ctx, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// DeleteResource xoá tài nguyên, bình luận của nó, rồi file đã lưu (best-effort).
func (s *Services) DeleteResource(ctx context.Context, v *Viewer, id uuid.UUID) error {
	if err := RequireAdmin(v, "only admins can delete resources"); err != nil {
		return err
	}
	resource, err := s.Store.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteResource(ctx, id); err != nil {
		return err
	}
	if resource.FileURL != nil && s.Storage != nil {
		s.releaseFile(ctx, *resource.FileURL)
	}
	return nil
}

// releaseFile xoá object của fileURL khi nó thuộc storage của mình và không còn
// tài nguyên nào khác trỏ tới.
func (s *Services) releaseFile(ctx context.Context, fileURL string) {
	bucket, path, ok := s.Storage.Locate(fileURL)
	if !ok {
		return
	}
	n, err := s.Store.CountResourcesByFileURL(ctx, fileURL)
	if err != nil {
		s.Log.Warn("keep stored object, reference count failed",
			zap.String("bucket", bucket), zap.String("path", path), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}
	s.discard(ctx, bucket, path)
}

// ============ READ VIEWS ============

type SubjectView struct {
	Subject models.Subject `json:"subject"`
	Weeks   []models.Week  `json:"weeks"`
}

type ResourceView struct {
	Resource models.Resource  `json:"resource"`
	Week     *models.Week     `json:"week,omitempty"`
	Comments []models.Comment `json:"comments"`
}

// ViewSubject trả môn học cùng các tuần, mỗi tuần kèm tài nguyên viewer được xem.
func (s *Services) ViewSubject(ctx context.Context, v *Viewer, id uuid.UUID) (*SubjectView, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	subject, err := s.Store.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	weeks, err := s.Store.ListWeeks(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range weeks {
		resources, err := s.Store.ListResources(ctx, weeks[i].ID)
		if err != nil {
			return nil, err
		}
		visible := FilterVisible(v, resources)
		if err := s.attachCommentCounts(ctx, visible); err != nil {
			return nil, err
		}
		weeks[i].Resources = visible
	}
	return &SubjectView{Subject: *subject, Weeks: weeks}, nil
}

func (s *Services) attachCommentCounts(ctx context.Context, resources []models.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	counts, err := s.Store.CountComments(ctx, ids)
	if err != nil {
		return err
	}
	for i := range resources {
		resources[i].CommentCount = counts[resources[i].ID]
	}
	return nil
}

// ViewResource trả NotFound cả khi tài nguyên bị ẩn với khối của viewer.
func (s *Services) ViewResource(ctx context.Context, v *Viewer, id uuid.UUID) (*ResourceView, error) {
	if err := RequireAuthenticated(v); err != nil {
		return nil, err
	}
	resource, err := s.Store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if !resource.VisibleTo(v.Role, v.Grade) {
		return nil, apperrors.NotFound("resource")
	}
	comments, err := s.Store.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	resource.CommentCount = int64(len(comments))
	view := &ResourceView{Resource: *resource, Comments: comments}
	week, err := s.Store.GetWeek(ctx, resource.WeekID)
	switch {
	case err == nil:
		view.Week = week
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return view, nil
}
