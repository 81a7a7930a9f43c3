package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/metrics"
	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/internal/storage"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// Входные структуры сервисного слоя.

// CreateCommentInput — создание корневого комментария или ответа.
// Правила:
//   - PostID и AuthorID обязательны;
//   - Content нормализуется (TrimSpace) и не должен быть пустым;
//   - AuthorName/AuthorAvatarURL денормализуются в документ как есть
//     (пустое имя заменяется фолбэком) и далее не синхронизируются
//     с профилем автора;
//   - ParentID (опционально) должен указывать на существующий комментарий;
//     его принадлежность тому же посту обеспечивает сторедж.
type CreateCommentInput struct {
	PostID          uuid.UUID
	ParentID        string
	AuthorID        uuid.UUID
	AuthorName      string
	AuthorAvatarURL string
	Content         string
}

// EditCommentInput — правка текста. Меняется только Content; правка
// разрешена лишь автору (EditorID сверяется с author_id документа).
type EditCommentInput struct {
	ID       string
	EditorID uuid.UUID
	Content  string
}

// CreateComment — бизнес-операция создания комментария.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой user_id/post_id, пустой текст, превышение
//     лимита длины;
//   - ErrParentNotFound — указан ParentID, но родитель отсутствует;
//   - ErrInternal — прочие ошибки стораджа.
//
// Успешное создание сигналит подписчикам поста и публикует событие для
// push-уведомлений (best-effort).
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"post_id", in.PostID.String(),
		"author_id", in.AuthorID.String(),
		"parent_id", in.ParentID,
	)

	if in.AuthorID == uuid.Nil {
		lg.Warn("invalid argument: empty author_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.PostID == uuid.Nil {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if len([]rune(in.Content)) > s.cfg.Limits.MaxContentLen {
		lg.Warn("invalid argument: content too long")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	name := strings.TrimSpace(in.AuthorName)
	if name == "" {
		name = models.UnknownUserName
	}

	comm := models.Comment{
		PostID:          in.PostID,
		ParentID:        strings.TrimSpace(in.ParentID),
		AuthorID:        in.AuthorID,
		AuthorName:      name,
		AuthorAvatarURL: strings.TrimSpace(in.AuthorAvatarURL),
		Content:         in.Content,
	}

	result, err := s.storage.CreateComment(ctx, comm)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent not found")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		default:
			lg.Error("storage error on CreateComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	kind := "root"
	if result.IsReply() {
		kind = "reply"
	}
	metrics.CommentsCreated.WithLabelValues(kind).Inc()

	s.bus.Publish(realtime.CommentsTopic(result.PostID))
	s.notifier.CommentCreated(ctx, *result)

	// Отправка комментария снимает отметку «печатает» автора.
	s.StopTyping(ctx, result.PostID, result.AuthorID)

	return result, nil
}

// EditComment — правка текста комментария автором.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id/editor_id, пустой текст, лимит длины;
//   - ErrNotFound — комментарий не найден;
//   - ErrPermissionDenied — редактор не является автором;
//   - ErrInternal — иные ошибки стораджа.
//
// created_at и parent_id операция не затрагивает.
func (s *Service) EditComment(ctx context.Context, in EditCommentInput) (*models.Comment, error) {
	const op = "service/comments/EditComment"

	in.ID = strings.TrimSpace(in.ID)
	lg := log.From(ctx).With("op", op, "id", in.ID, "editor_id", in.EditorID.String())

	if in.ID == "" || in.EditorID == uuid.Nil {
		lg.Warn("invalid argument: empty id or editor_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if len([]rune(in.Content)) > s.cfg.Limits.MaxContentLen {
		lg.Warn("invalid argument: content too long")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.CommentByID(ctx, in.ID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if current.AuthorID != in.EditorID {
		lg.Warn("permission denied: editor is not the author")
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	result, err := s.storage.UpdateContent(ctx, in.ID, in.Content)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Комментарий успели удалить между чтением и правкой.
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateContent", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	s.bus.Publish(realtime.CommentsTopic(result.PostID))

	return result, nil
}

// DeleteComment — жёсткое удаление комментария автором.
// Ответы не каскадируются и осиротевают (их разбирает движок композиции).
//
// Поведение/ошибки:
//   - ErrInvalidArgument / ErrNotFound / ErrPermissionDenied / ErrInternal.
func (s *Service) DeleteComment(ctx context.Context, id string, actorID uuid.UUID) error {
	const op = "service/comments/DeleteComment"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "id", id, "actor_id", actorID.String())

	if id == "" || actorID == uuid.Nil {
		lg.Warn("invalid argument: empty id or actor_id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if current.AuthorID != actorID {
		lg.Warn("permission denied: actor is not the author")
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteComment(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on DeleteComment", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	metrics.CommentsDeleted.Inc()

	s.bus.Publish(realtime.CommentsTopic(current.PostID))
	s.notifier.CommentDeleted(ctx, current.PostID, id, actorID)

	return nil
}

// CommentByID — получить комментарий по ID.
func (s *Service) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CommentByID", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// ListComments — полный упорядоченный список комментариев поста
// (created_at ASC). Потребители строят производное состояние заново на
// каждом снапшоте, диффов контракт не требует.
func (s *Service) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	const op = "service/comments/ListComments"

	lg := log.From(ctx).With("op", op, "post_id", postID.String())

	if postID == uuid.Nil {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	items, err := s.storage.ListByPost(ctx, postID)
	if err != nil {
		lg.Error("storage error on ListByPost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return items, nil
}
