package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// Live-подписки: хранилище не умеет инкрементальных диффов, поэтому на
// каждый сигнал шины подписчику отправляется полный актуальный снапшот
// (контракт документного стора). Первый снапшот уходит сразу при подписке.
//
// Возвращаемый stop-колбэк обязателен к вызову при размонтировании
// потребителя: подписки долгоживущие, утечки слушателей недопустимы.

// subscribeSnapshots — общий цикл «сигнал → перечитать → отправить».
// Канал закрывается при отмене ctx, вызове stop или закрытии шины.
// Ошибка перечитывания логируется; предыдущий снапшот остаётся последним
// доставленным (подписчик догонит на следующем сигнале).
func subscribeSnapshots[T any](ctx context.Context, bus realtime.Bus, topic realtime.Topic, buffer int, fetch func(context.Context) (T, error)) (<-chan T, func()) {
	sub := bus.Subscribe(topic)
	out := make(chan T, buffer)

	go func() {
		defer close(out)

		emit := func() bool {
			snap, err := fetch(ctx)
			if err != nil {
				log.From(ctx).Warn("snapshot fetch failed",
					"topic", string(topic), "err", err)
				return true
			}

			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C:
				if !ok {
					return
				}

				if !emit() {
					return
				}
			}
		}
	}()

	return out, sub.Close
}

// SubscribeComments — полный упорядоченный список комментариев поста на
// каждое изменение.
func (s *Service) SubscribeComments(ctx context.Context, postID uuid.UUID) (<-chan []models.Comment, func(), error) {
	const op = "service/subscriptions/SubscribeComments"

	if postID == uuid.Nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	out, stop := subscribeSnapshots(ctx, s.bus, realtime.CommentsTopic(postID), s.cfg.Realtime.SendBuffer,
		func(ctx context.Context) ([]models.Comment, error) {
			return s.storage.ListByPost(ctx, postID)
		})

	return out, stop, nil
}

// SubscribeReactions — агрегат реакций сущности на каждое изменение.
// userID определяет поле Own в снапшотах (uuid.Nil — анонимно).
func (s *Service) SubscribeReactions(ctx context.Context, entity models.EntityRef, userID uuid.UUID) (<-chan models.ReactionSummary, func(), error) {
	const op = "service/subscriptions/SubscribeReactions"

	if err := validateEntity(entity); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	out, stop := subscribeSnapshots(ctx, s.bus, realtime.ReactionsTopic(entity), s.cfg.Realtime.SendBuffer,
		func(ctx context.Context) (models.ReactionSummary, error) {
			summary, err := s.ReactionSummary(ctx, entity, userID)
			if err != nil {
				return models.ReactionSummary{}, err
			}

			return *summary, nil
		})

	return out, stop, nil
}

// SubscribeTyping — список печатающих по посту на каждое изменение.
func (s *Service) SubscribeTyping(ctx context.Context, postID uuid.UUID) (<-chan []models.TypingPresence, func(), error) {
	const op = "service/subscriptions/SubscribeTyping"

	if postID == uuid.Nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	out, stop := subscribeSnapshots(ctx, s.bus, realtime.TypingTopic(postID), s.cfg.Realtime.SendBuffer,
		func(ctx context.Context) ([]models.TypingPresence, error) {
			return s.presence.ListTyping(ctx, postID)
		})

	return out, stop, nil
}
