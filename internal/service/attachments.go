package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/storage"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// AttachmentUploadURL — presigned PUT URL для загрузки вложения.
// Возвращает ErrUnavailable, если объектное хранилище не настроено.
func (s *Service) AttachmentUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service/attachments/AttachmentUploadURL"

	lg := log.From(ctx).With("op", op, "owner_id", ownerID.String())

	if s.attachments == nil {
		lg.Warn("attachments storage is not configured")
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	if ownerID == uuid.Nil {
		lg.Warn("invalid argument: empty owner_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	info, err := s.attachments.AttachmentUploadURL(ctx, ownerID, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			lg.Warn("invalid attachment params", "content_type", contentType, "content_length", contentLength)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		lg.Error("attachments storage error", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return info, nil
}
