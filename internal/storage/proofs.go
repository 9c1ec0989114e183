package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/domain"
)

// BlobStore persists uploaded images and returns a stable public reference.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, ref string) error
}

// SupabaseStorage talks to the Supabase Storage REST API with a service
// key. Refs returned by Put are public object URLs.
type SupabaseStorage struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Client     *http.Client
}

func NewSupabaseStorage(baseURL, serviceKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Bucket:     bucket,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, s.Bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", domain.DependencyError{Op: "storage upload", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	res, err := s.Client.Do(req)
	if err != nil {
		return "", domain.DependencyError{Op: "storage upload", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", domain.DependencyError{
			Op:  "storage upload",
			Err: fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.BaseURL, s.Bucket, key), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, ref string) error {
	key, err := s.keyFromRef(ref)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.BaseURL, s.Bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return domain.DependencyError{Op: "storage delete", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)

	res, err := s.Client.Do(req)
	if err != nil {
		return domain.DependencyError{Op: "storage delete", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.DependencyError{
			Op:  "storage delete",
			Err: fmt.Errorf("status %d", res.StatusCode),
		}
	}
	return nil
}

func (s *SupabaseStorage) keyFromRef(ref string) (string, error) {
	marker := fmt.Sprintf("/storage/v1/object/public/%s/", s.Bucket)
	i := strings.Index(ref, marker)
	if i < 0 {
		return "", domain.ValidationError{Field: "ref", Msg: "not an object URL for this bucket"}
	}
	key := ref[i+len(marker):]
	if key == "" {
		return "", domain.ValidationError{Field: "ref", Msg: "empty object key"}
	}
	return key, nil
}
