// Package storage описывает контракты хранилищ community-сервиса и их
// сигнальные ошибки. Реализации: mongo (комментарии/реакции), redis
// (typing-присутствие), minio (вложения).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument — некорректные входные параметры хранилища.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Comments описывает операции над комментариями поста.
type Comments interface {
	// CreateComment создаёт корневой комментарий или ответ.
	// Входной Comment должен содержать PostID, AuthorID, AuthorName, Content
	// (обязательные), ParentID/AuthorAvatarURL — опционально.
	// Вычисляется хранилищем: ID, CreatedAt, UpdatedAt, ReplyToAuthor,
	// ReplyToSnippet (из родителя). Возможные ошибки: ErrParentNotFound.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// UpdateContent меняет только текст комментария (и updated_at).
	// created_at/parent_id неизменяемы. Если запись не найдена — ErrNotFound.
	UpdateContent(ctx context.Context, id string, content string) (*models.Comment, error)

	// DeleteComment жёстко удаляет документ; ответы на него не каскадируются
	// и остаются со старым parent_id. Если запись не найдена — ErrNotFound.
	DeleteComment(ctx context.Context, id string) error

	// CommentByID возвращает комментарий по его строковому идентификатору.
	// Если запись не найдена — ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// ListByPost возвращает все комментарии поста, отсортированные по
	// created_at ASC (при равенстве — по _id ASC).
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
}

// Reactions описывает леджер реакций: не более одного документа на пару
// (entity, user).
type Reactions interface {
	// ReactionByUser возвращает текущую реакцию пользователя на сущность.
	// Если реакции нет — ErrNotFound.
	ReactionByUser(ctx context.Context, entity models.EntityRef, userID uuid.UUID) (*models.Reaction, error)

	// UpsertReaction записывает реакцию пользователя, перезаписывая
	// существующую (last write wins в пределах одного ключа).
	UpsertReaction(ctx context.Context, r models.Reaction) error

	// DeleteReaction снимает реакцию пользователя. Идемпотентна: отсутствие
	// документа ошибкой не считается.
	DeleteReaction(ctx context.Context, entity models.EntityRef, userID uuid.UUID) error

	// ListByEntity возвращает все реакции на сущность.
	ListByEntity(ctx context.Context, entity models.EntityRef) ([]models.Reaction, error)
}

// Storage объединяет персистентные коллекции документного хранилища.
type Storage interface {
	Comments
	Reactions

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

// Presence — эфемерное typing-присутствие. Все операции best-effort:
// вызывающая сторона логирует ошибки и не прерывает основной поток.
type Presence interface {
	// UpsertTyping создаёт/обновляет отметку с временем жизни ttl.
	UpsertTyping(ctx context.Context, p models.TypingPresence, ttl time.Duration) error

	// DeleteTyping снимает отметку. Идемпотентна.
	DeleteTyping(ctx context.Context, postID, userID uuid.UUID) error

	// ListTyping возвращает актуальные отметки по посту; протухшие записи
	// отфильтровываются (и лениво подчищаются).
	ListTyping(ctx context.Context, postID uuid.UUID) ([]models.TypingPresence, error)

	// Close закрывает клиент.
	Close() error
}

// UploadInfo — параметры предподписанной загрузки вложения.
type UploadInfo struct {
	UploadURL      string
	Key            string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// Attachments — presigned-загрузка вложений во внешнее объектное хранилище.
type Attachments interface {
	// AttachmentUploadURL генерирует presigned PUT URL для вложения.
	// Валидирует contentType/contentLength; ошибки — ErrInvalidArgument.
	AttachmentUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)
}
