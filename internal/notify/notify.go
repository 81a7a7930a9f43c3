// Package notify — best-effort события для внешнего сервиса push-уведомлений.
// Сервис публикует JSON-события в NATS; доставка и фан-аут на устройства —
// забота подписчика. Ошибки публикации логируются и никогда не влияют на
// исход пользовательской операции.
package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/models"
)

// Типы событий.
const (
	EventCommentCreated  = "comment.created"
	EventCommentDeleted  = "comment.deleted"
	EventReactionToggled = "reaction.toggled"
)

// Event — общий конверт события.
type Event struct {
	Type      string `json:"type"`
	PostID    string `json:"post_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
	// Для reaction.toggled.
	EntityKind string `json:"entity_kind,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	EmojiKey   string `json:"emoji_key,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// Notifier — контракт публикации событий для сервисного слоя.
type Notifier interface {
	CommentCreated(ctx context.Context, c models.Comment)
	CommentDeleted(ctx context.Context, postID uuid.UUID, commentID string, actorID uuid.UUID)
	ReactionToggled(ctx context.Context, entity models.EntityRef, userID uuid.UUID, key models.EmojiKey, active bool)
}

// Nop — заглушка при выключенной публикации (пустой cfg.Nats.URL).
type Nop struct{}

func (Nop) CommentCreated(context.Context, models.Comment) {}

func (Nop) CommentDeleted(context.Context, uuid.UUID, string, uuid.UUID) {}

func (Nop) ReactionToggled(context.Context, models.EntityRef, uuid.UUID, models.EmojiKey, bool) {}
