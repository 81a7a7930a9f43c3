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

// ToggleReactionInput — переключение реакции пользователя на сущность.
type ToggleReactionInput struct {
	Entity models.EntityRef
	UserID uuid.UUID
	Key    models.EmojiKey
}

// validateEntity — базовая проверка адреса сущности.
func validateEntity(e models.EntityRef) error {
	if e.Kind != models.EntityPost && e.Kind != models.EntityComment {
		return ErrInvalidArgument
	}

	if strings.TrimSpace(e.ID) == "" {
		return ErrInvalidArgument
	}

	return nil
}

// ToggleReaction — переключатель реакции.
//
// Семантика:
//   - реакции нет — создать с запрошенным ключом;
//   - есть с тем же ключом — снять (toggle-off);
//   - есть с другим — перезаписать (ключ документа один, дубликатов
//     не возникает).
//
// Ошибки стораджа здесь best-effort: реакция — косметический сигнал,
// сбой логируется и не поднимается наружу (ErrInvalidArgument — единственная
// ошибка вызывающей стороны). Повторные клики безопасны: конкурентные записи
// одного пользователя сериализуются ключом документа (last write wins).
func (s *Service) ToggleReaction(ctx context.Context, in ToggleReactionInput) error {
	const op = "service/reactions/ToggleReaction"

	lg := log.From(ctx).With(
		"op", op,
		"entity_kind", string(in.Entity.Kind),
		"entity_id", in.Entity.ID,
		"user_id", in.UserID.String(),
	)

	if in.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validateEntity(in.Entity); err != nil {
		lg.Warn("invalid argument: bad entity ref")
		return fmt.Errorf("%s: %w", op, err)
	}

	if !models.ValidEmojiKey(in.Key) {
		lg.Warn("invalid argument: unknown emoji key", "key", string(in.Key))
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	current, err := s.storage.ReactionByUser(ctx, in.Entity, in.UserID)
	switch {
	case err == nil:
		if current.ResolvedKey() == in.Key {
			// Тот же ключ — toggle-off.
			if err := s.storage.DeleteReaction(ctx, in.Entity, in.UserID); err != nil {
				lg.Error("storage error on DeleteReaction", "err", err)
				return nil
			}

			metrics.ReactionsToggled.WithLabelValues("clear").Inc()
			s.bus.Publish(realtime.ReactionsTopic(in.Entity))
			s.notifier.ReactionToggled(ctx, in.Entity, in.UserID, in.Key, false)

			return nil
		}

		// Другой ключ — перезапись.
		if err := s.upsert(ctx, in); err != nil {
			lg.Error("storage error on UpsertReaction", "err", err)
			return nil
		}

		metrics.ReactionsToggled.WithLabelValues("switch").Inc()
		s.bus.Publish(realtime.ReactionsTopic(in.Entity))
		s.notifier.ReactionToggled(ctx, in.Entity, in.UserID, in.Key, true)

		return nil

	case errors.Is(err, storage.ErrNotFound):
		if err := s.upsert(ctx, in); err != nil {
			lg.Error("storage error on UpsertReaction", "err", err)
			return nil
		}

		metrics.ReactionsToggled.WithLabelValues("set").Inc()
		s.bus.Publish(realtime.ReactionsTopic(in.Entity))
		s.notifier.ReactionToggled(ctx, in.Entity, in.UserID, in.Key, true)

		return nil

	default:
		lg.Error("storage error on ReactionByUser", "err", err)
		return nil
	}
}

func (s *Service) upsert(ctx context.Context, in ToggleReactionInput) error {
	return s.storage.UpsertReaction(ctx, models.Reaction{
		Entity: in.Entity,
		UserID: in.UserID,
		Key:    in.Key,
		Glyph:  models.GlyphForKey(in.Key),
	})
}

// ReactionSummary — агрегат реакций сущности: счётчики по ключам единой
// emoji-таблицы и собственная реакция пользователя userID (uuid.Nil —
// анонимный запрос, Own останется пустым).
//
// Легаси-документы без ключа учитываются через глиф; незнакомый глиф
// попадает в корзину heart — поведение сохранено как есть.
func (s *Service) ReactionSummary(ctx context.Context, entity models.EntityRef, userID uuid.UUID) (*models.ReactionSummary, error) {
	const op = "service/reactions/ReactionSummary"

	lg := log.From(ctx).With(
		"op", op,
		"entity_kind", string(entity.Kind),
		"entity_id", entity.ID,
	)

	if err := validateEntity(entity); err != nil {
		lg.Warn("invalid argument: bad entity ref")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.storage.ListByEntity(ctx, entity)
	if err != nil {
		lg.Error("storage error on ListByEntity", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	summary := &models.ReactionSummary{Counts: make(map[models.EmojiKey]int64, len(items))}
	for _, r := range items {
		key := r.ResolvedKey()
		summary.Counts[key]++

		if userID != uuid.Nil && r.UserID == userID {
			summary.Own = key
		}
	}

	return summary, nil
}
