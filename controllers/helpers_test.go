package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/controllers"
	"github.com/learnclub/club-portal-backend/middleware"
	"github.com/learnclub/club-portal-backend/models"
	"github.com/learnclub/club-portal-backend/routes"
	"github.com/learnclub/club-portal-backend/services"
	"github.com/learnclub/club-portal-backend/store"
	"github.com/learnclub/club-portal-backend/utils"
)

const storagePrefix = "https://project.supabase.co/storage/v1/object/public/"

type memStorage struct {
	objects map[string][]byte
	fail    error
}

func (s *memStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if s.fail != nil {
		return s.fail
	}
	key := bucket + "/" + path
	if _, ok := s.objects[key]; ok {
		return errors.New("the resource already exists")
	}
	s.objects[key] = data
	return nil
}

func (s *memStorage) PublicURL(bucket, path string) string {
	return storagePrefix + bucket + "/" + path
}

func (s *memStorage) Remove(ctx context.Context, bucket, path string) error {
	delete(s.objects, bucket+"/"+path)
	return nil
}

func (s *memStorage) Locate(publicURL string) (string, string, bool) {
	return utils.ParseObjectURL(publicURL)
}

type stubAuth struct {
	session *services.AuthSession
	err     error
}

func (a *stubAuth) ExchangeCode(ctx context.Context, code, verifier string) (*services.AuthSession, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

type apiEnv struct {
	t        *testing.T
	router   *gin.Engine
	mem      *store.Memory
	storage  *memStorage
	auth     *stubAuth
	verifier *utils.TokenVerifier
	admin    *models.User
	student  *models.User
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	storage := &memStorage{objects: map[string][]byte{}}
	auth := &stubAuth{}
	svc := services.New(mem, storage, auth, zap.NewNop())
	svc.Now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	h := controllers.New(svc, zap.NewNop(), controllers.Options{FrontendURL: "http://localhost:5173/", MaxUploadSize: 1 << 20})

	verifier := utils.NewTokenVerifier("test-secret")
	r := routes.SetupRouter(gin.New(), h, middleware.Identity(verifier, mem, zap.NewNop()))

	env := &apiEnv{t: t, router: r, mem: mem, storage: storage, auth: auth, verifier: verifier}
	env.admin = env.addUser("admin@club.test", models.RoleAdmin, nil)
	grade := 3
	env.student = env.addUser("student@club.test", models.RoleStudent, &grade)
	return env
}

func (e *apiEnv) addUser(email string, role models.UserRole, grade *int) *models.User {
	e.t.Helper()
	u := &models.User{ID: uuid.New(), Email: email, Role: role, Grade: grade}
	require.NoError(e.t, e.mem.CreateUser(context.Background(), u))
	return u
}

func (e *apiEnv) token(u *models.User) string {
	e.t.Helper()
	tok, err := e.verifier.SignToken(utils.SupabaseClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(e.t, err)
	return tok
}

func (e *apiEnv) send(req *http.Request, as *models.User) *httptest.ResponseRecorder {
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(as))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) json(method, path string, body interface{}, as *models.User) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.send(req, as)
}

type formFile struct {
	name string
	data []byte
}

func (e *apiEnv) multipart(path string, fields map[string]string, file *formFile, as *models.User) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("file", file.name)
		require.NoError(e.t, err)
		_, err = part.Write(file.data)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(req, as)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (e *apiEnv) createSubject(name string) models.Subject {
	e.t.Helper()
	w := e.json(http.MethodPost, "/api/admin/subjects", map[string]string{"name": name}, e.admin)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var s models.Subject
	decode(e.t, w, &s)
	return s
}

func (e *apiEnv) createWeek(subjectID uuid.UUID, number int, title string) models.Week {
	e.t.Helper()
	w := e.json(http.MethodPost, "/api/admin/weeks", map[string]interface{}{
		"subject_id":  subjectID.String(),
		"week_number": number,
		"title":       title,
	}, e.admin)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var wk models.Week
	decode(e.t, w, &wk)
	return wk
}

func (e *apiEnv) createLink(weekID uuid.UUID, title, link string) models.Resource {
	e.t.Helper()
	w := e.multipart("/api/admin/resources", map[string]string{
		"week_id":      weekID.String(),
		"title":        title,
		"type":         "link",
		"external_url": link,
	}, nil, e.admin)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var r models.Resource
	decode(e.t, w, &r)
	return r
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func httptestGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
