package models

import (
	"time"

	"github.com/google/uuid"
)

// TypingPresence — эфемерная отметка «пользователь печатает» для поста.
// Живёт не дольше окна простоя (cfg.Realtime.TypingIdle) без обновления;
// best-effort: при аварийном отключении клиента запись добивает TTL ключа.
type TypingPresence struct {
	PostID      uuid.UUID
	UserID      uuid.UUID
	DisplayName string
	UpdatedAt   time.Time
}

// UnknownUserName — фолбэк для документов без display_name.
const UnknownUserName = "Unknown user"
