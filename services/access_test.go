package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

func intp(i int) *int { return &i }

func TestGuards(t *testing.T) {
	admin := &Viewer{ID: uuid.New(), Role: models.RoleAdmin}
	student := &Viewer{ID: uuid.New(), Role: models.RoleStudent}

	assert.ErrorIs(t, RequireAuthenticated(nil), apperrors.ErrAuthenticationRequired)
	assert.NoError(t, RequireAuthenticated(student))

	assert.ErrorIs(t, RequireAdmin(nil, "x"), apperrors.ErrAuthenticationRequired)
	assert.ErrorIs(t, RequireAdmin(student, "only admins"), apperrors.ErrAuthorizationDenied)
	assert.NoError(t, RequireAdmin(admin, "only admins"))

	assert.NoError(t, RequireOwnerOrAdmin(student, student.ID, "own only"))
	assert.NoError(t, RequireOwnerOrAdmin(admin, student.ID, "own only"))
	assert.ErrorIs(t, RequireOwnerOrAdmin(student, admin.ID, "own only"), apperrors.ErrAuthorizationDenied)
}

func TestFilterVisible(t *testing.T) {
	resources := []models.Resource{
		{Title: "all"},
		{Title: "g3", AllowedGrade: intp(3)},
		{Title: "g5", AllowedGrade: intp(5)},
	}
	titles := func(rs []models.Resource) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.Title)
		}
		return out
	}

	cases := []struct {
		name   string
		viewer *Viewer
		want   []string
	}{
		{"admin sees everything", &Viewer{Role: models.RoleAdmin}, []string{"all", "g3", "g5"}},
		{"admin without grade", &Viewer{Role: models.RoleAdmin, Grade: intp(1)}, []string{"all", "g3", "g5"}},
		{"grade 3 student", &Viewer{Role: models.RoleStudent, Grade: intp(3)}, []string{"all", "g3"}},
		{"grade 5 student", &Viewer{Role: models.RoleStudent, Grade: intp(5)}, []string{"all", "g5"}},
		{"ungraded student", &Viewer{Role: models.RoleStudent}, []string{"all"}},
		{"anonymous", nil, []string{"all"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(FilterVisible(tc.viewer, resources)))
		})
	}
}
