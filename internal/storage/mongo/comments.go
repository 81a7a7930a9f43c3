package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/storage"
)

// commentDoc — BSON-представление комментария. UUID храним строками, чтобы
// не зависеть от кодеков драйвера; наружу конвертируется в models.Comment.
type commentDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	PostID          string             `bson:"post_id"`
	ParentID        string             `bson:"parent_id"`
	AuthorID        string             `bson:"author_id"`
	AuthorName      string             `bson:"author_name"`
	AuthorAvatarURL string             `bson:"author_avatar_url,omitempty"`
	Content         string             `bson:"content"`
	ReplyToAuthor   string             `bson:"reply_to_author,omitempty"`
	ReplyToSnippet  string             `bson:"reply_to_snippet,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

// toModel конвертирует документ в доменную модель.
// Пустой/битый author_id и отсутствующее имя маппятся в предсказуемые
// фолбэки: хранилище schema-less, старые документы могли писаться иначе.
func (d commentDoc) toModel() models.Comment {
	postID, _ := uuid.Parse(d.PostID)
	authorID, _ := uuid.Parse(d.AuthorID)

	name := d.AuthorName
	if name == "" {
		name = models.UnknownUserName
	}

	return models.Comment{
		ID:              d.ID.Hex(),
		PostID:          postID,
		ParentID:        d.ParentID,
		AuthorID:        authorID,
		AuthorName:      name,
		AuthorAvatarURL: d.AuthorAvatarURL,
		Content:         d.Content,
		ReplyToAuthor:   d.ReplyToAuthor,
		ReplyToSnippet:  d.ReplyToSnippet,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// CreateComment создаёт комментарий (корневой или ответ).
//   - created_at/updated_at назначаются здесь (серверное время).
//   - Для ответа находит родителя, принудительно наследует его post_id
//     (защита от рассинхрона) и снимает денормализованный reply-контекст:
//     имя автора родителя и превью его текста на момент ответа.
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	now := toMS(time.Now())

	doc := commentDoc{
		PostID:          comm.PostID.String(),
		ParentID:        strings.TrimSpace(comm.ParentID),
		AuthorID:        comm.AuthorID.String(),
		AuthorName:      comm.AuthorName,
		AuthorAvatarURL: comm.AuthorAvatarURL,
		Content:         comm.Content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if doc.ParentID != "" {
		parentOID, err := primitive.ObjectIDFromHex(doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		var parent commentDoc
		if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: parentOID}}).Decode(&parent); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return nil, fmt.Errorf("%s: find parent: %w", op, err)
		}

		doc.PostID = parent.PostID
		doc.ParentID = parent.ID.Hex()

		pm := parent.toModel()
		doc.ReplyToAuthor = pm.AuthorName
		doc.ReplyToSnippet = pm.Snippet()
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()

	return &out, nil
}

// UpdateContent меняет только текст комментария (и updated_at);
// created_at/parent_id неизменяемы. При отсутствии записи — storage.ErrNotFound.
func (m *Mongo) UpdateContent(ctx context.Context, id string, content string) (*models.Comment, error) {
	const op = "storage/mongo/UpdateContent"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	after := options.After
	res := m.comments.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "content", Value: content},
			{Key: "updated_at", Value: toMS(time.Now())},
		}}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)

	var doc commentDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// DeleteComment жёстко удаляет документ. Ответы не каскадируются: их
// parent_id продолжает указывать на удалённый id, осиротевшие ветки
// разбирает движок композиции. При отсутствии записи — storage.ErrNotFound.
func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	const op = "storage/mongo/DeleteComment"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// CommentByID возвращает комментарий по идентификатору.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.toModel()

	return &out, nil
}

// ListByPost возвращает все комментарии поста.
// Сортировка: created_at ASC, _id ASC — стабильный порядок для снапшотов.
func (m *Mongo) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	const op = "storage/mongo/ListByPost"

	filter := bson.D{{Key: "post_id", Value: postID.String()}}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := m.comments.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer cur.Close(ctx)

	var items []models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
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
