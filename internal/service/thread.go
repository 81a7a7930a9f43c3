package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/thread"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// Thread — дерево комментариев поста, развёрнутое до maxDepth уровней.
// maxDepth <= 0 означает значение из конфига (по умолчанию 4).
// Глубже maxDepth ветки сворачиваются в счётчик HiddenReplies — ленивое
// «показать ещё» остаётся на клиенте.
func (s *Service) Thread(ctx context.Context, postID uuid.UUID, maxDepth int) ([]thread.Node, error) {
	const op = "service/thread/Thread"

	lg := log.From(ctx).With("op", op, "post_id", postID.String())

	if postID == uuid.Nil {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if maxDepth <= 0 {
		maxDepth = s.cfg.Limits.MaxRenderDepth
	}

	flat, err := s.storage.ListByPost(ctx, postID)
	if err != nil {
		lg.Error("storage error on ListByPost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return thread.Compose(thread.BuildTree(flat), maxDepth), nil
}
