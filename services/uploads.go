package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/apperrors"
	"github.com/learnclub/club-portal-backend/models"
)

const (
	BucketPDFs   = "pdfs"
	BucketImages = "images"
)

type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// StoredObject là object vừa upload, dùng để bù trừ khi insert thất bại.
type StoredObject struct {
	Bucket string
	Path   string
	URL    string
}

func BucketFor(t models.ResourceType) (string, error) {
	switch t {
	case models.ResourcePDF:
		return BucketPDFs, nil
	case models.ResourceImage:
		return BucketImages, nil
	}
	return "", apperrors.Validation("only pdf and image resources carry files")
}

// SanitizeFileName thay mọi ký tự ngoài [a-zA-Z0-9._-] bằng '_'.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// ObjectPath: resources/<subject>/<week>/<unix millis>-<tên file an toàn>
func ObjectPath(subjectID, weekID uuid.UUID, millis int64, fileName string) string {
	return fmt.Sprintf("resources/%s/%s/%d-%s", subjectID, weekID, millis, SanitizeFileName(fileName))
}

// sniff kiểm tra nội dung khớp loại tài nguyên và trả content type sẽ lưu.
func sniff(t models.ResourceType, f *FileUpload) (string, error) {
	if len(f.Data) == 0 {
		return "", apperrors.Validation("uploaded file is empty", apperrors.FieldError{Field: "file", Error: "empty"})
	}
	detected := mimetype.Detect(f.Data)
	switch t {
	case models.ResourcePDF:
		if !detected.Is("application/pdf") || !readablePDF(f.Data) {
			return "", apperrors.Validation("uploaded file is not a readable PDF", apperrors.FieldError{Field: "file", Error: "pdf"})
		}
	case models.ResourceImage:
		if !strings.HasPrefix(detected.String(), "image/") {
			return "", apperrors.Validation("uploaded file is not an image", apperrors.FieldError{Field: "file", Error: "image"})
		}
	}
	ct := strings.TrimSpace(f.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = detected.String()
	}
	return ct, nil
}

func readablePDF(data []byte) (ok bool) {
	// pdf.NewReader có thể panic với xref hỏng
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	return err == nil && r.NumPage() > 0
}

// uploadResourceFile đẩy file lên bucket theo loại tài nguyên và trả public URL.
func (s *Services) uploadResourceFile(ctx context.Context, t models.ResourceType, subjectID, weekID uuid.UUID, f *FileUpload) (*StoredObject, error) {
	bucket, err := BucketFor(t)
	if err != nil {
		return nil, err
	}
	contentType, err := sniff(t, f)
	if err != nil {
		return nil, err
	}
	path := ObjectPath(subjectID, weekID, s.Now().UnixMilli(), f.Name)
	if err := s.Storage.Upload(ctx, bucket, path, f.Data, contentType); err != nil {
		return nil, apperrors.Backend("upload "+bucket+"/"+path, err)
	}
	return &StoredObject{Bucket: bucket, Path: path, URL: s.Storage.PublicURL(bucket, path)}, nil
}

// discard xoá object best-effort; lỗi chỉ được ghi log.
func (s *Services) discard(ctx context.Context, bucket, path string) {
	if err := s.Storage.Remove(ctx, bucket, path); err != nil {
		s.Log.Warn("remove stored object failed",
			zap.String("bucket", bucket), zap.String("path", path), zap.Error(err))
	}
}
