// Package objectstore reads and writes uploaded resource bytes. The local
// backend serves development and tests; gcs and s3 serve deployments.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

var ErrNotFound = errors.New("object not found")

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
	ModeS3    Mode = "s3"
)

type Store interface {
	Mode() Mode
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Mode Mode

	LocalRoot string

	GCSBucket       string
	GCSEmulatorHost string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// New selects a backend by cfg.Mode.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if mode == "" {
		mode = ModeLocal
	}
	log = log.With("service", "ObjectStore", "mode", mode)
	switch mode {
	case ModeLocal:
		return NewLocalStore(log, cfg.LocalRoot)
	case ModeGCS:
		return NewGCSStore(ctx, log, cfg.GCSBucket, cfg.GCSEmulatorHost)
	case ModeS3:
		return NewS3Store(ctx, log, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported object storage mode %q", cfg.Mode)
	}
}

// ReadAll reads at most maxBytes of the object. A non-positive maxBytes
// reads everything.
func ReadAll(ctx context.Context, s Store, key string, maxBytes int64) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return b, nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".txt"):
		return "text/plain; charset=utf-8"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// readCloserWithCancel ties a context's lifetime to a reader. The context
// must outlive the call that opened the reader.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func cleanKey(key string) (string, error) {
	k := strings.TrimLeft(strings.TrimSpace(key), "/")
	if k == "" {
		return "", fmt.Errorf("empty object key")
	}
	return k, nil
}
