package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/learnclub/club-portal-backend/store"
)

// ObjectStorage là kho object bên ngoài (Supabase Storage).
type ObjectStorage interface {
	// Upload không ghi đè: object đã tồn tại thì trả lỗi.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket, path string) error
	// Locate tách bucket và path từ public URL do PublicURL sinh ra.
	Locate(publicURL string) (bucket, path string, ok bool)
}

type Services struct {
	Store   store.Store
	Storage ObjectStorage
	Auth    AuthProvider
	Log     *zap.Logger
	Now     func() time.Time
}

func New(st store.Store, storage ObjectStorage, auth AuthProvider, log *zap.Logger) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	return &Services{Store: st, Storage: storage, Auth: auth, Log: log, Now: time.Now}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
