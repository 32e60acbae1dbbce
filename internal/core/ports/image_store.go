package ports

import (
	"context"
	"io"

	"github.com/blogcms/cms-api/internal/core/domain"
)

// ImageStore persists image bytes under a key.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ImageService validates and stores uploaded images.
type ImageService interface {
	Save(ctx context.Context, files []ImageInput) ([]domain.StoredImage, error)
	// Discard removes stored images; failures are logged, not returned.
	Discard(ctx context.Context, keys []string)
	URL(key string) string
}
