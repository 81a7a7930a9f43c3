// Package models содержит доменные сущности community-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment — внутренняя доменная модель комментария (MongoDB).
// Важно:
//   - ID — ObjectID MongoDB. Наружу/вовнутрь конвертируется в string.
//   - PostID/AuthorID — UUID из смежных сервисов (posts/auth).
//   - ParentID — ObjectID родителя; пустая строка = корневой комментарий.
//   - AuthorName/AuthorAvatarURL — денормализованы на момент записи и далее
//     не синхронизируются с профилем (осознанное продуктовое решение).
//   - ReplyToAuthor/ReplyToSnippet — денормализованный контекст родителя
//     (имя автора и первые ~50 символов текста), снятый в момент ответа;
//     при последующем редактировании родителя не обновляется.
//   - CreatedAt/ParentID неизменяемы после создания; правка меняет только
//     Content (и UpdatedAt).
type Comment struct {
	ID              string
	PostID          uuid.UUID
	ParentID        string
	AuthorID        uuid.UUID
	AuthorName      string
	AuthorAvatarURL string
	Content         string
	ReplyToAuthor   string
	ReplyToSnippet  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsReply сообщает, является ли комментарий ответом.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

// SnippetLen — длина денормализованного превью текста родителя.
const SnippetLen = 50

// Snippet возвращает превью текста комментария для reply-контекста.
func (c Comment) Snippet() string {
	r := []rune(c.Content)
	if len(r) <= SnippetLen {
		return c.Content
	}

	return string(r[:SnippetLen])
}
