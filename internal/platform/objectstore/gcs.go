package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

type GCSStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

// NewGCSStore connects with application default credentials, or without
// authentication when emulatorHost is set.
func NewGCSStore(ctx context.Context, log *logger.Logger, bucket, emulatorHost string) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing GCS bucket name")
	}
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(emulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	log.Info("Object storage initialized", "bucket", bucket, "emulator_host", emulatorHost)
	return &GCSStore{log: log, client: client, bucket: bucket}, nil
}

func (s *GCSStore) Mode() Mode { return ModeGCS }

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(k).NewWriter(ctx)
	w.ContentType = contentTypeForKey(k)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object %q: %w", k, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := s.client.Bucket(s.bucket).Object(k).NewReader(ctx2)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
		}
		return nil, fmt.Errorf("open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err = s.client.Bucket(s.bucket).Object(k).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete GCS object %q in bucket %q: %w", k, s.bucket, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
