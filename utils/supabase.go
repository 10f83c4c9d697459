package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const objectPrefix = "/storage/v1/object/"

// SupabaseStorage upload/xoá object trên Supabase Storage bằng service role key.
type SupabaseStorage struct {
	baseURL string
	client  *storage.Client
}

func NewSupabaseStorage(supabaseURL, serviceKey string) *SupabaseStorage {
	base := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStorage{
		baseURL: base,
		client:  storage.NewClient(base+"/storage/v1", serviceKey, nil),
	}
}

// Upload không bật upsert: trùng path thì Supabase trả lỗi thay vì ghi đè.
func (s *SupabaseStorage) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	cacheControl := "3600"
	options := storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	}
	if _, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("supabase upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Public URL: <SUPABASE_URL>/storage/v1/object/public/<bucket>/<path>
func (s *SupabaseStorage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s%spublic/%s/%s", s.baseURL, objectPrefix, bucket, path)
}

func (s *SupabaseStorage) Remove(ctx context.Context, bucket, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, []string{path}); err != nil {
		return fmt.Errorf("supabase remove %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Locate chỉ nhận public URL của chính project này; URL của host khác trả ok=false.
func (s *SupabaseStorage) Locate(publicURL string) (string, string, bool) {
	if !strings.HasPrefix(publicURL, s.baseURL+objectPrefix+"public/") {
		return "", "", false
	}
	return ParseObjectURL(publicURL)
}

func ParseObjectURL(publicURL string) (string, string, bool) {
	idx := strings.Index(publicURL, objectPrefix)
	if idx == -1 {
		return "", "", false
	}
	rest := publicURL[idx+len(objectPrefix):]
	// Luôn bỏ prefix "public/" nếu có
	rest = strings.TrimPrefix(rest, "public/")

	// rest => "<bucket>/<path/to/object...>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	bucket, object := parts[0], parts[1]
	// bỏ query params nếu có
	if q := strings.Index(object, "?"); q != -1 {
		object = object[:q]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return bucket, object, true
}
