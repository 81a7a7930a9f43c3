package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind — вид сущности, на которую можно поставить реакцию.
type EntityKind string

const (
	EntityPost    EntityKind = "post"
	EntityComment EntityKind = "comment"
)

// EntityRef — адрес сущности-носителя реакций (пост или комментарий).
// Для поста ID — UUID поста, для комментария — ObjectID в hex.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// EmojiKey — стабильный ключ реакции из фиксированной таблицы.
type EmojiKey string

const (
	EmojiThumbsUp    EmojiKey = "thumbs_up"
	EmojiHeart       EmojiKey = "heart"
	EmojiLaughing    EmojiKey = "laughing"
	EmojiWow         EmojiKey = "wow"
	EmojiSad         EmojiKey = "sad"
	EmojiFire        EmojiKey = "fire"
	EmojiClap        EmojiKey = "clap"
	EmojiCelebration EmojiKey = "celebration"
)

// emojiGlyphs — единая таблица «ключ → глиф». Обе системы реакций
// (посты и комментарии) используют её без расхождений.
var emojiGlyphs = map[EmojiKey]string{
	EmojiThumbsUp:    "👍",
	EmojiHeart:       "❤️",
	EmojiLaughing:    "😂",
	EmojiWow:         "😮",
	EmojiSad:         "😢",
	EmojiFire:        "🔥",
	EmojiClap:        "👏",
	EmojiCelebration: "🎉",
}

// glyphKeys — обратная таблица «глиф → ключ».
var glyphKeys = func() map[string]EmojiKey {
	m := make(map[string]EmojiKey, len(emojiGlyphs))
	for k, g := range emojiGlyphs {
		m[g] = k
	}

	return m
}()

// ValidEmojiKey сообщает, входит ли ключ в фиксированную таблицу.
func ValidEmojiKey(k EmojiKey) bool {
	_, ok := emojiGlyphs[k]
	return ok
}

// GlyphForKey возвращает глиф для ключа; пустая строка для неизвестного ключа.
func GlyphForKey(k EmojiKey) string {
	return emojiGlyphs[k]
}

// KeyForGlyph маппит глиф в ключ. Неизвестные глифы складываются в корзину
// heart — легаси-поведение старых документов, сохранено намеренно.
func KeyForGlyph(glyph string) EmojiKey {
	if k, ok := glyphKeys[glyph]; ok {
		return k
	}

	return EmojiHeart
}

// Reaction — документ реакции. Инвариант: не более одной реакции на пару
// (entity, user); обеспечивается уникальным индексом хранилища.
// Легаси-документы могут не содержать Key — тогда он восстанавливается из
// Glyph через KeyForGlyph при чтении.
type Reaction struct {
	Entity    EntityRef
	UserID    uuid.UUID
	Key       EmojiKey
	Glyph     string
	CreatedAt time.Time
}

// ResolvedKey возвращает ключ реакции с учётом легаси-документов без ключа.
func (r Reaction) ResolvedKey() EmojiKey {
	if r.Key != "" && ValidEmojiKey(r.Key) {
		return r.Key
	}

	return KeyForGlyph(r.Glyph)
}

// ReactionSummary — агрегат по сущности: счётчики по ключам и собственная
// реакция запрашивающего пользователя (пустой ключ — реакции нет).
type ReactionSummary struct {
	Counts map[EmojiKey]int64
	Own    EmojiKey
}
