// Package photos archives the images tenants upload for classification.
package photos

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Store persists an uploaded photo and returns a URL for it. Owns reports
// whether a URL names a photo this store archived.
type Store interface {
	Save(ctx context.Context, contentType string, data []byte) (string, error)
	Owns(url string) bool
	Close() error
}

// NewStore returns a GCS-backed store when a bucket is configured and a
// no-op store otherwise.
func NewStore(ctx context.Context, bucket, encodedCredentials string, logger *zap.SugaredLogger) (Store, error) {
	if bucket == "" {
		logger.Infow("photo archive disabled, using noop", "reason", "empty bucket")
		return noopStore{}, nil
	}

	var opts []option.ClientOption
	if encodedCredentials != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCredentials)
		if err != nil {
			return nil, fmt.Errorf("failed to decode service account json: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	logger.Infow("photo archive enabled", "bucket", bucket)
	return &gcsStore{client: client, bucket: bucket, now: time.Now}, nil
}

type gcsStore struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func (s *gcsStore) Save(ctx context.Context, contentType string, data []byte) (string, error) {
	name := objectName(s.now(), uuid.NewString(), contentType)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close photo writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

func (s *gcsStore) Owns(url string) bool {
	name, ok := strings.CutPrefix(url, fmt.Sprintf("gs://%s/", s.bucket))
	if !ok || !strings.HasPrefix(name, "issues/") {
		return false
	}
	return path.Clean(name) == name && !strings.ContainsAny(name, "?#")
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}

type noopStore struct{}

func (noopStore) Save(context.Context, string, []byte) (string, error) { return "", nil }

func (noopStore) Owns(string) bool { return false }

func (noopStore) Close() error { return nil }

func objectName(now time.Time, id, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return path.Join("issues", now.UTC().Format("2006/01/02"), id+ext)
}
