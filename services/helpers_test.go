package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/learnclub/club-portal-backend/models"
	"github.com/learnclub/club-portal-backend/store"
)

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	key := bucket + "/" + path
	if _, exists := f.objects[key]; exists {
		return errors.New("the resource already exists")
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "https://project.supabase.co/storage/v1/object/public/" + bucket + "/" + path
}

func (f *fakeStorage) Remove(ctx context.Context, bucket, path string) error {
	key := bucket + "/" + path
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Locate(publicURL string) (string, string, bool) {
	rest := strings.TrimPrefix(publicURL, "https://project.supabase.co/storage/v1/object/public/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || rest == publicURL {
		return "", "", false
	}
	return parts[0], parts[1], true
}

type fixture struct {
	svc     *Services
	mem     *store.Memory
	storage *fakeStorage
	admin   *Viewer
	student *Viewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	storage := newFakeStorage()
	svc := New(mem, storage, nil, nil)
	svc.Now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }

	f := &fixture{svc: svc, mem: mem, storage: storage}
	f.admin = f.addUser(t, "admin@club.test", models.RoleAdmin, nil)
	f.student = f.addUser(t, "student@club.test", models.RoleStudent, intp(3))
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role models.UserRole, grade *int) *Viewer {
	t.Helper()
	u := models.User{ID: uuid.New(), Email: email, Role: role, Grade: grade}
	require.NoError(t, f.mem.CreateUser(context.Background(), &u))
	return ViewerFromUser(&u)
}

func (f *fixture) subjectWithWeek(t *testing.T) (*models.Subject, *models.Week) {
	t.Helper()
	ctx := context.Background()
	subject, err := f.svc.CreateSubject(ctx, f.admin, SubjectInput{Name: "Math"})
	require.NoError(t, err)
	week, err := f.svc.CreateWeek(ctx, f.admin, subject.ID, WeekInput{WeekNumber: 1, Title: "Intro"})
	require.NoError(t, err)
	return subject, week
}

// minimalPDF dựng một PDF một trang với bảng xref đúng offset.
func minimalPDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
