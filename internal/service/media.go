package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"blacklink/internal/model"
	"blacklink/internal/storage"
)

var (
	// ErrStorageDisabled is returned when object storage was not configured
	// for this deployment; media endpoints answer 503 instead of failing
	// startup.
	ErrStorageDisabled = errors.New("object storage is not configured")
	ErrReaderNil       = errors.New("reader is nil")
	ErrKeyRequired     = errors.New("key is required")
)

// mediaURLExpiry bounds the presigned download URL handed back after an
// upload. Clients keep the key and re-resolve when the URL lapses.
const mediaURLExpiry = 7 * 24 * time.Hour

// MediaService stores avatar and product images in object storage.
type MediaService interface {
	// Upload streams the content to object storage under a generated key.
	// originalFilename is used only to keep the extension; the stored name
	// is a UUID.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Media, error)

	// Resolve returns a presigned download URL for a stored key.
	Resolve(ctx context.Context, key string) (string, error)

	// Delete removes a stored object.
	Delete(ctx context.Context, key string) error
}

// mediaService is a concrete implementation of MediaService. A nil store
// marks the deployment as storage-less and every call returns
// ErrStorageDisabled.
type mediaService struct {
	store storage.Storage
}

// NewMediaService constructs a new MediaService.
func NewMediaService(store storage.Storage) MediaService {
	return &mediaService{store: store}
}

func (s *mediaService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Media, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if r == nil {
		return nil, ErrReaderNil
	}

	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("media", uuid.New().String()+ext))

	info, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.store.PresignGet(ctx, info.Key, mediaURLExpiry)
	if err != nil {
		// Rollback: an object nobody can reach is only dead weight.
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &model.Media{
		Key:         info.Key,
		URL:         url,
		Size:        info.Size,
		ContentType: info.ContentType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *mediaService) Resolve(ctx context.Context, key string) (string, error) {
	if s.store == nil {
		return "", ErrStorageDisabled
	}
	if key == "" {
		return "", ErrKeyRequired
	}
	return s.store.PresignGet(ctx, key, mediaURLExpiry)
}

func (s *mediaService) Delete(ctx context.Context, key string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	if key == "" {
		return ErrKeyRequired
	}
	return s.store.Delete(ctx, key)
}
