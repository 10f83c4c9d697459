package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":         "report.pdf",
		"my report (v2).pdf": "my_report__v2_.pdf",
		"a/b\\c.png":         "a_b_c.png",
		"keep-this_ok.JPG":   "keep-this_ok.JPG",
		"":                   "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
}

func TestObjectPath(t *testing.T) {
	s, w := uuid.New(), uuid.New()
	assert.Equal(t, "resources/"+s.String()+"/"+w.String()+"/42-a_b.pdf", ObjectPath(s, w, 42, "a b.pdf"))
}

func TestBucketFor(t *testing.T) {
	b, err := BucketFor(models.ResourcePDF)
	require.NoError(t, err)
	assert.Equal(t, BucketPDFs, b)
	b, err = BucketFor(models.ResourceImage)
	require.NoError(t, err)
	assert.Equal(t, BucketImages, b)
	_, err = BucketFor(models.ResourceLink)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSniff(t *testing.T) {
	ct, err := sniff(models.ResourcePDF, &FileUpload{Data: minimalPDF(), ContentType: "application/octet-stream"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	ct, err = sniff(models.ResourceImage, &FileUpload{Data: pngHeader, ContentType: "image/x-custom"})
	require.NoError(t, err)
	assert.Equal(t, "image/x-custom", ct)

	_, err = sniff(models.ResourceImage, &FileUpload{})
	assert.True(t, apperrors.IsValidation(err))

	truncated := minimalPDF()[:40]
	_, err = sniff(models.ResourcePDF, &FileUpload{Data: truncated})
	assert.True(t, apperrors.IsValidation(err))
}
