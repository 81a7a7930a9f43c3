package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/storage"
)

// reactionDoc — BSON-представление реакции.
// emoji_key опционален: легаси-документы несут только глиф (обычно ❤️);
// ключ для них восстанавливается на чтении через models.KeyForGlyph.
type reactionDoc struct {
	EntityKind string    `bson:"entity_kind"`
	EntityID   string    `bson:"entity_id"`
	UserID     string    `bson:"user_id"`
	EmojiKey   string    `bson:"emoji_key,omitempty"`
	Glyph      string    `bson:"glyph"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d reactionDoc) toModel() models.Reaction {
	userID, _ := uuid.Parse(d.UserID)

	return models.Reaction{
		Entity: models.EntityRef{
			Kind: models.EntityKind(d.EntityKind),
			ID:   d.EntityID,
		},
		UserID:    userID,
		Key:       models.EmojiKey(d.EmojiKey),
		Glyph:     d.Glyph,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// reactionKey — фильтр по естественному ключу документа (entity, user).
func reactionKey(entity models.EntityRef, userID uuid.UUID) bson.D {
	return bson.D{
		{Key: "entity_kind", Value: string(entity.Kind)},
		{Key: "entity_id", Value: entity.ID},
		{Key: "user_id", Value: userID.String()},
	}
}

// ReactionByUser возвращает текущую реакцию пользователя на сущность.
func (m *Mongo) ReactionByUser(ctx context.Context, entity models.EntityRef, userID uuid.UUID) (*models.Reaction, error) {
	const op = "storage/mongo/ReactionByUser"

	var doc reactionDoc
	if err := m.reactions.FindOne(ctx, reactionKey(entity, userID)).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// UpsertReaction записывает реакцию, перезаписывая существующий документ
// пары (entity, user). Ключ сериализует конкурентные записи одного
// пользователя: последняя запись побеждает, дубликатов не возникает.
func (m *Mongo) UpsertReaction(ctx context.Context, r models.Reaction) error {
	const op = "storage/mongo/UpsertReaction"

	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	doc := reactionDoc{
		EntityKind: string(r.Entity.Kind),
		EntityID:   r.Entity.ID,
		UserID:     r.UserID.String(),
		EmojiKey:   string(r.Key),
		Glyph:      r.Glyph,
		CreatedAt:  toMS(createdAt),
	}

	_, err := m.reactions.ReplaceOne(ctx,
		reactionKey(r.Entity, r.UserID),
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		// Гонка двух upsert-ов по одному ключу может дать duplicate key —
		// один из них уже записал документ, инвариант не нарушен.
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteReaction снимает реакцию пользователя. Идемпотентна.
func (m *Mongo) DeleteReaction(ctx context.Context, entity models.EntityRef, userID uuid.UUID) error {
	const op = "storage/mongo/DeleteReaction"

	if _, err := m.reactions.DeleteOne(ctx, reactionKey(entity, userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListByEntity возвращает все реакции на сущность.
func (m *Mongo) ListByEntity(ctx context.Context, entity models.EntityRef) ([]models.Reaction, error) {
	const op = "storage/mongo/ListByEntity"

	filter := bson.D{
		{Key: "entity_kind", Value: string(entity.Kind)},
		{Key: "entity_id", Value: entity.ID},
	}

	cur, err := m.reactions.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Reaction
	for cur.Next(ctx) {
		var doc reactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return items, nil
}
