package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	libnats "github.com/nats-io/nats.go"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

// NatsNotifier публикует события в один subject core NATS.
type NatsNotifier struct {
	conn    *libnats.Conn
	subject string
}

// NewNats подключается к NATS. Fail-fast: сервис без шины уведомлений
// стартует только с явно выключенной публикацией (Nop).
func NewNats(url, subject string) (*NatsNotifier, error) {
	nc, err := libnats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NatsNotifier{conn: nc, subject: subject}, nil
}

// Close дренирует соединение.
func (n *NatsNotifier) Close() error {
	return n.conn.Drain()
}

// publish сериализует и отправляет событие. Любая ошибка — Warn в лог,
// наружу ничего не поднимается.
func (n *NatsNotifier) publish(ctx context.Context, e Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		log.From(ctx).Warn("notify_marshal_failed",
			slog.String("type", e.Type),
			slog.String("err", err.Error()),
		)
		return
	}

	if err := n.conn.Publish(n.subject, raw); err != nil {
		log.From(ctx).Warn("notify_publish_failed",
			slog.String("type", e.Type),
			slog.String("err", err.Error()),
		)
	}
}

func (n *NatsNotifier) CommentCreated(ctx context.Context, c models.Comment) {
	n.publish(ctx, Event{
		Type:      EventCommentCreated,
		PostID:    c.PostID.String(),
		CommentID: c.ID,
		ParentID:  c.ParentID,
		ActorID:   c.AuthorID.String(),
		ActorName: c.AuthorName,
	})
}

func (n *NatsNotifier) CommentDeleted(ctx context.Context, postID uuid.UUID, commentID string, actorID uuid.UUID) {
	n.publish(ctx, Event{
		Type:      EventCommentDeleted,
		PostID:    postID.String(),
		CommentID: commentID,
		ActorID:   actorID.String(),
	})
}

func (n *NatsNotifier) ReactionToggled(ctx context.Context, entity models.EntityRef, userID uuid.UUID, key models.EmojiKey, active bool) {
	n.publish(ctx, Event{
		Type:       EventReactionToggled,
		ActorID:    userID.String(),
		EntityKind: string(entity.Kind),
		EntityID:   entity.ID,
		EmojiKey:   string(key),
		Active:     active,
	})
}
