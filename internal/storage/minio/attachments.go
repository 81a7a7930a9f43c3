// Package minio — presigned-загрузка вложений (картинки к постам и
// комментариям) в S3-совместимое объектное хранилище. Сервис не проксирует
// байты через себя: клиент получает временный PUT URL и грузит напрямую.
package minio

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/storage"
)

// allowedContentTypes — допустимые типы вложений и их расширения.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AttachmentsStorage — адаптер объектного хранилища вложений.
type AttachmentsStorage struct {
	cfg    *config.Config
	client *mclient.Client
}

// New создаёт клиент MinIO/S3 по конфигу.
func New(cfg *config.Config) (*AttachmentsStorage, error) {
	if cfg == nil || cfg.S3.Endpoint == "" {
		return nil, fmt.Errorf("minio: empty endpoint")
	}

	cli, err := mclient.New(cfg.S3.Endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		Secure: cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client: %w", err)
	}

	return &AttachmentsStorage{cfg: cfg, client: cli}, nil
}

// AttachmentUploadURL генерирует presigned PUT URL для загрузки вложения.
// Валидирует contentType и contentLength согласно конфигу, формирует ключ
// вида "attachments/<ownerID>/<uuid>.<ext>" и возвращает заголовки, которые
// клиент обязан передать при PUT.
func (s *AttachmentsStorage) AttachmentUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "storage/minio/AttachmentUploadURL"

	if contentLength <= 0 || contentLength > s.cfg.S3.MaxSizeBytes {
		return nil, storage.ErrInvalidArgument
	}

	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, storage.ErrInvalidArgument
	}

	key := path.Join("attachments", ownerID.String(), uuid.NewString()+ext)

	url, err := s.client.PresignedPutObject(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.UploadInfo{
		UploadURL: url.String(),
		Key:       key,
		Expires:   s.cfg.S3.PresignTTL,
		RequiredHeader: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", contentLength),
		},
	}, nil
}
