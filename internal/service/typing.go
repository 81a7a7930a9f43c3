package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/metrics"
	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// typingTimers — таймеры простоя typing-отметок, ключ «postID|userID».
// Явный владелец с close() вместо глобального реестра: жизненный цикл
// детерминирован и тестируем.
type typingTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func newTypingTimers() *typingTimers {
	return &typingTimers{timers: make(map[string]*time.Timer)}
}

func typingKey(postID, userID uuid.UUID) string {
	return postID.String() + "|" + userID.String()
}

// reset перезапускает таймер ключа: debounce, а не накопление.
func (t *typingTimers) reset(key string, d time.Duration, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	if old, ok := t.timers[key]; ok {
		old.Stop()
	}

	t.timers[key] = time.AfterFunc(d, func() {
		t.cancel(key)
		fire()
	})
}

// cancel снимает таймер ключа, если он есть.
func (t *typingTimers) cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[key]; ok {
		old.Stop()
		delete(t.timers, key)
	}
}

// close останавливает все таймеры; новые не заводятся.
func (t *typingTimers) close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for k, timer := range t.timers {
		timer.Stop()
		delete(t.timers, k)
	}
}

// StartTyping — отметка «пользователь печатает» с окном простоя.
// Повторный вызов до истечения окна перезапускает таймер (debounce).
//
// Вся операция best-effort: сбой записи присутствия логируется и не
// возвращается наружу — отметка не должна блокировать отправку комментария.
func (s *Service) StartTyping(ctx context.Context, postID, userID uuid.UUID, displayName string) {
	const op = "service/typing/StartTyping"

	lg := log.From(ctx).With("op", op, "post_id", postID.String(), "user_id", userID.String())

	if postID == uuid.Nil || userID == uuid.Nil {
		lg.Warn("invalid argument: empty post_id or user_id")
		return
	}

	if displayName == "" {
		displayName = models.UnknownUserName
	}

	idle := s.cfg.Realtime.TypingIdle

	p := models.TypingPresence{
		PostID:      postID,
		UserID:      userID,
		DisplayName: displayName,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.presence.UpsertTyping(ctx, p, idle); err != nil {
		lg.Warn("presence upsert failed", "err", err)
		return
	}

	metrics.TypingStarted.Inc()
	s.bus.Publish(realtime.TypingTopic(postID))

	s.typing.reset(typingKey(postID, userID), idle, func() {
		s.expireTyping(postID, userID)
	})
}

// StopTyping снимает отметку и таймер. Идемпотентна; best-effort.
// Вызывается при отправке комментария, явной отмене и потере фокуса.
func (s *Service) StopTyping(ctx context.Context, postID, userID uuid.UUID) {
	const op = "service/typing/StopTyping"

	if postID == uuid.Nil || userID == uuid.Nil {
		return
	}

	s.typing.cancel(typingKey(postID, userID))

	if err := s.presence.DeleteTyping(ctx, postID, userID); err != nil {
		log.From(ctx).Warn("presence delete failed",
			"op", op, "post_id", postID.String(), "user_id", userID.String(), "err", err)
		return
	}

	s.bus.Publish(realtime.TypingTopic(postID))
}

// expireTyping — срабатывание таймера простоя: отметка снимается без
// явного StopTyping со стороны клиента.
func (s *Service) expireTyping(postID, userID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.presence.DeleteTyping(ctx, postID, userID); err != nil {
		log.From(ctx).Warn("presence expire delete failed",
			"post_id", postID.String(), "user_id", userID.String(), "err", err)
	}

	s.bus.Publish(realtime.TypingTopic(postID))
}

// ListTyping — текущий список печатающих по посту.
func (s *Service) ListTyping(ctx context.Context, postID uuid.UUID) ([]models.TypingPresence, error) {
	const op = "service/typing/ListTyping"

	lg := log.From(ctx).With("op", op, "post_id", postID.String())

	if postID == uuid.Nil {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	items, err := s.presence.ListTyping(ctx, postID)
	if err != nil {
		lg.Error("presence list failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return items, nil
}
