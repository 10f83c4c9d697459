package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

func TestSubjectCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	subject, err := f.svc.CreateSubject(ctx, f.admin, SubjectInput{Name: "  Khoa học Tự nhiên ", Description: "lab"})
	require.NoError(t, err)
	assert.Equal(t, "Khoa học Tự nhiên", subject.Name)
	assert.Equal(t, "khoa-hoc-tu-nhien", subject.Slug)
	assert.Equal(t, f.admin.ID, subject.CreatedBy)

	updated, err := f.svc.UpdateSubject(ctx, f.admin, subject.ID, SubjectInput{Name: "Science"})
	require.NoError(t, err)
	assert.Equal(t, "science", updated.Slug)
	assert.Nil(t, updated.Description)
	assert.True(t, !updated.UpdatedAt.Before(subject.UpdatedAt))

	_, err = f.svc.CreateSubject(ctx, f.admin, SubjectInput{Name: "   "})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.UpdateSubject(ctx, f.admin, uuid.New(), SubjectInput{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, f.svc.DeleteSubject(ctx, f.admin, subject.ID))
	assert.ErrorIs(t, f.svc.DeleteSubject(ctx, f.admin, subject.ID), apperrors.ErrNotFound)
}

func TestAdminOnlyMutationsLeaveNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)

	_, err := f.svc.CreateSubject(ctx, f.student, SubjectInput{Name: "Hack"})
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)
	_, err = f.svc.UpdateSubject(ctx, f.student, subject.ID, SubjectInput{Name: "Hack"})
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)
	assert.ErrorIs(t, f.svc.DeleteSubject(ctx, f.student, subject.ID), apperrors.ErrAuthorizationDenied)
	_, err = f.svc.CreateWeek(ctx, f.student, subject.ID, WeekInput{WeekNumber: 2, Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)
	assert.ErrorIs(t, f.svc.DeleteWeek(ctx, f.student, week.ID), apperrors.ErrAuthorizationDenied)
	_, err = f.svc.CreateResource(ctx, f.student, ResourceInput{WeekID: week.ID, Title: "x", Type: models.ResourceLink, ExternalURL: "https://x"})
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)

	subjects, err := f.svc.ListSubjects(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Math", subjects[0].Name)
	weeks, err := f.mem.ListWeeks(ctx, subject.ID)
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
	n, err := f.mem.CountResources(ctx, week.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.svc.ListSubjects(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)
}

func TestWeekValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)

	cases := []struct {
		name string
		in   WeekInput
	}{
		{"missing title", WeekInput{WeekNumber: 2}},
		{"zero number", WeekInput{WeekNumber: 0, Title: "x"}},
		{"bad date", WeekInput{WeekNumber: 2, Title: "x", StartDate: "14/10/2026"}},
		{"end before start", WeekInput{WeekNumber: 2, Title: "x", StartDate: "2026-10-14", EndDate: "2026-10-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateWeek(ctx, f.admin, subject.ID, tc.in)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}

	_, err := f.svc.CreateWeek(ctx, f.admin, uuid.New(), WeekInput{WeekNumber: 1, Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := f.svc.UpdateWeek(ctx, f.admin, week.ID, WeekInput{WeekNumber: 4, Title: "Fractions", StartDate: "2026-10-12", EndDate: "2026-10-16"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.WeekNumber)
	assert.Equal(t, "2026-10-12", updated.StartDate.String())
}

func TestDeleteRejectsParentsWithChildren(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)
	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "Syllabus", Type: models.ResourceLink, ExternalURL: "https://x"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteSubject(ctx, f.admin, subject.ID), apperrors.ErrConflict)
	assert.ErrorIs(t, f.svc.DeleteWeek(ctx, f.admin, week.ID), apperrors.ErrConflict)

	require.NoError(t, f.svc.DeleteResource(ctx, f.admin, res.ID))
	require.NoError(t, f.svc.DeleteWeek(ctx, f.admin, week.ID))
	require.NoError(t, f.svc.DeleteSubject(ctx, f.admin, subject.ID))
}

func TestCreateLinkResource(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)

	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "Syllabus", Type: models.ResourceLink,
		ExternalURL: "https://x", FileURL: "https://ignored",
	})
	require.NoError(t, err)
	require.NotNil(t, res.ExternalURL)
	assert.Equal(t, "https://x", *res.ExternalURL)
	assert.Nil(t, res.FileURL)
	assert.Nil(t, res.AllowedGrade)

	for _, bad := range []string{"", "   ", "not a url", "ftp://files.example.com/a"} {
		_, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "x", Type: models.ResourceLink, ExternalURL: bad})
		assert.True(t, apperrors.IsValidation(err), "url %q", bad)
	}

	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "x", Type: "video", ExternalURL: "https://x"})
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "x", Type: models.ResourceLink, ExternalURL: "https://x", AllowedGrade: intp(9)})
	assert.True(t, apperrors.IsValidation(err))
	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: uuid.New(), Title: "x", Type: models.ResourceLink, ExternalURL: "https://x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Type: models.ResourceLink, ExternalURL: "https://x"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateFileResourceUploads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)

	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "Worksheet", Type: models.ResourcePDF,
		File: &FileUpload{Name: "bài tập #1.pdf", ContentType: "application/pdf", Data: minimalPDF()},
	})
	require.NoError(t, err)
	require.NotNil(t, res.FileURL)
	assert.Nil(t, res.ExternalURL)

	wantPath := "resources/" + subject.ID.String() + "/" + week.ID.String() + "/" +
		"1791970200000-b_i_t_p__1.pdf"
	assert.Equal(t, f.storage.PublicURL(BucketPDFs, wantPath), *res.FileURL)
	_, ok := f.storage.objects[BucketPDFs+"/"+wantPath]
	assert.True(t, ok)

	img, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "Diagram", Type: models.ResourceImage,
		File: &FileUpload{Name: "diagram.png", Data: pngHeader},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(*img.FileURL, "/public/images/"))
}

func TestCreateFileResourceRejectsBadPayloads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)

	_, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "x", Type: models.ResourcePDF})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourcePDF,
		File: &FileUpload{Name: "fake.pdf", Data: []byte("just text")},
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourceImage,
		File: &FileUpload{Name: "doc.png", Data: minimalPDF()},
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.storage.objects)

	// URL có sẵn vẫn được chấp nhận khi không gửi file
	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourcePDF, FileURL: "https://cdn.example.com/a.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.pdf", *res.FileURL)
}

func TestUploadFailureAbortsCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)
	f.storage.uploadErr = errors.New("quota exceeded")

	_, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourcePDF,
		File: &FileUpload{Name: "a.pdf", Data: minimalPDF()},
	})
	assert.True(t, apperrors.IsBackend(err))
	n, err := f.mem.CountResources(ctx, week.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertFailureRemovesUploadedObject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)
	f.mem.FailNext = errors.New("insert failed")

	_, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourcePDF,
		File: &FileUpload{Name: "a.pdf", Data: minimalPDF()},
	})
	assert.True(t, apperrors.IsBackend(err))
	assert.Empty(t, f.storage.objects)
	assert.Len(t, f.storage.removed, 1)
}

func TestDeleteResourceRemovesStoredFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)
	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "x", Type: models.ResourceImage,
		File: &FileUpload{Name: "a.png", Data: pngHeader},
	})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.student, res.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteResource(ctx, f.admin, res.ID))
	assert.Empty(t, f.storage.objects)
	counts, err := f.mem.CountComments(ctx, []uuid.UUID{res.ID})
	require.NoError(t, err)
	assert.Zero(t, counts[res.ID])
}

func TestDeleteResourceKeepsSharedFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)
	first, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "original", Type: models.ResourcePDF,
		File: &FileUpload{Name: "a.pdf", Data: minimalPDF()},
	})
	require.NoError(t, err)
	second, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "copy", Type: models.ResourcePDF, FileURL: *first.FileURL,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteResource(ctx, f.admin, second.ID))
	assert.Empty(t, f.storage.removed)
	assert.Len(t, f.storage.objects, 1)

	require.NoError(t, f.svc.DeleteResource(ctx, f.admin, first.ID))
	assert.Len(t, f.storage.removed, 1)
	assert.Empty(t, f.storage.objects)
}

func TestDeleteResourceIgnoresForeignFileURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)
	f.storage.objects["pdfs/resources/x/y/1-a.pdf"] = minimalPDF()

	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
		WeekID: week.ID, Title: "elsewhere", Type: models.ResourcePDF,
		FileURL: "https://evil.example.com/storage/v1/object/public/pdfs/resources/x/y/1-a.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteResource(ctx, f.admin, res.ID))
	assert.Empty(t, f.storage.removed)
	assert.Len(t, f.storage.objects, 1)
}

func TestSuppliedFileURLMustBeHTTP(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, week := f.subjectWithWeek(t)

	for _, bad := range []string{"not a url", "ftp://files.example.com/a.pdf", "/relative/a.pdf"} {
		_, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{
			WeekID: week.ID, Title: "x", Type: models.ResourcePDF, FileURL: bad,
		})
		assert.True(t, apperrors.IsValidation(err), "url %q", bad)
	}
	n, err := f.mem.CountResources(ctx, week.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListWeeksIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, _ := f.subjectWithWeek(t)

	_, err := f.svc.ListWeeks(ctx, f.student, subject.ID)
	assert.ErrorIs(t, err, apperrors.ErrAuthorizationDenied)

	weeks, err := f.svc.ListWeeks(ctx, f.admin, subject.ID)
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
}

func TestGradeVisibilityScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)

	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "Syllabus", Type: models.ResourceLink, ExternalURL: "https://x"})
	require.NoError(t, err)

	view, err := f.svc.ViewSubject(ctx, f.student, subject.ID)
	require.NoError(t, err)
	require.Len(t, view.Weeks, 1)
	require.Len(t, view.Weeks[0].Resources, 1)
	assert.Equal(t, "Syllabus", view.Weeks[0].Resources[0].Title)

	_, err = f.svc.UpdateResource(ctx, f.admin, res.ID, ResourceUpdate{Title: "Syllabus", AllowedGrade: intp(5)})
	require.NoError(t, err)

	view, err = f.svc.ViewSubject(ctx, f.student, subject.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Weeks[0].Resources)
	_, err = f.svc.ViewResource(ctx, f.student, res.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	view, err = f.svc.ViewSubject(ctx, f.admin, subject.ID)
	require.NoError(t, err)
	require.Len(t, view.Weeks[0].Resources, 1)
	detail, err := f.svc.ViewResource(ctx, f.admin, res.ID)
	require.NoError(t, err)
	assert.Equal(t, week.ID, detail.Week.ID)
}

func TestViewSubjectCountsComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	subject, week := f.subjectWithWeek(t)
	res, err := f.svc.CreateResource(ctx, f.admin, ResourceInput{WeekID: week.ID, Title: "Syllabus", Type: models.ResourceLink, ExternalURL: "https://x"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := f.svc.AddComment(ctx, f.student, res.ID, "question")
		require.NoError(t, err)
	}

	view, err := f.svc.ViewSubject(ctx, f.student, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Weeks[0].Resources[0].CommentCount)

	_, err = f.svc.ViewSubject(ctx, f.student, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
