package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blogcms/cms-api/internal/api/metrics"
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// ImageService validates uploads by their content and writes them to the
// configured store under random names.
type ImageService struct {
	store  ports.ImageStore
	log    zerolog.Logger
	newKey func() string
}

var _ ports.ImageService = (*ImageService)(nil)

func NewImageService(store ports.ImageStore, log zerolog.Logger) *ImageService {
	return &ImageService{store: store, log: log, newKey: uuid.NewString}
}

// Save stores every file or none: when one file fails, the files already
// written by this call are removed.
func (s *ImageService) Save(ctx context.Context, files []ports.ImageInput) ([]domain.StoredImage, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoImages
	}
	if len(files) > domain.MaxImagesPerCall {
		metrics.ImagesRejectedTotal.WithLabelValues("too_many").Inc()
		return nil, fmt.Errorf("%w: at most %d per request", domain.ErrTooManyImages, domain.MaxImagesPerCall)
	}

	stored := make([]domain.StoredImage, 0, len(files))
	for _, f := range files {
		img, err := s.saveOne(ctx, f)
		if err != nil {
			s.Discard(ctx, storedKeys(stored))
			return nil, err
		}
		stored = append(stored, img)
	}
	return stored, nil
}

func (s *ImageService) saveOne(ctx context.Context, f ports.ImageInput) (domain.StoredImage, error) {
	// Read one byte past the limit so oversized files are detected without
	// trusting the declared size.
	data, err := io.ReadAll(io.LimitReader(f.Content, domain.MaxImageSize+1))
	if err != nil {
		return domain.StoredImage{}, fmt.Errorf("read %s: %w", f.OriginalName, err)
	}
	if len(data) > domain.MaxImageSize {
		metrics.ImagesRejectedTotal.WithLabelValues("too_large").Inc()
		return domain.StoredImage{}, fmt.Errorf("%s: %w", f.OriginalName, domain.ErrImageTooLarge)
	}

	contentType, ext, ok := sniffImage(data)
	if !ok {
		metrics.ImagesRejectedTotal.WithLabelValues("unsupported").Inc()
		return domain.StoredImage{}, fmt.Errorf("%s: %w", f.OriginalName, domain.ErrUnsupportedImage)
	}

	key := s.newKey() + ext
	size := int64(len(data))
	if err := s.store.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return domain.StoredImage{}, fmt.Errorf("store image: %w", err)
	}
	metrics.ImagesStoredTotal.WithLabelValues(contentType).Inc()

	return domain.StoredImage{
		Key:          key,
		URL:          s.store.URL(key),
		OriginalName: f.OriginalName,
		Size:         size,
		ContentType:  contentType,
	}, nil
}

func sniffImage(data []byte) (contentType, ext string, ok bool) {
	if len(data) == 0 {
		return "", "", false
	}
	mt := mimetype.Detect(data)
	for ct, e := range domain.AllowedImageTypes {
		if mt.Is(ct) {
			return ct, e, true
		}
	}
	return "", "", false
}

func (s *ImageService) Discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to delete image")
		}
	}
}

func (s *ImageService) URL(key string) string {
	return s.store.URL(key)
}

func storedKeys(images []domain.StoredImage) []string {
	keys := make([]string, len(images))
	for i, img := range images {
		keys[i] = img.Key
	}
	return keys
}
