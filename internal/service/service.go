// service содержит бизнес-логику community-сервиса: комментарии, реакции,
// typing-присутствие и live-подписки на снапшоты.
package service

import (
	"errors"

	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/notify"
	"github.com/pribylovaa/go-community-service/internal/realtime"
	"github.com/pribylovaa/go-community-service/internal/storage"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису
	// (в т.ч. пустой после TrimSpace текст комментария).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrPermissionDenied — операция над чужим комментарием.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable — опциональная подсистема выключена конфигом
	// (например, presign вложений без настроенного S3).
	ErrUnavailable = errors.New("unavailable")
	// ErrInternal — внутренняя ошибка (сторедж/БД/контекст и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика community-сервиса.
type Service struct {
	storage     storage.Storage
	presence    storage.Presence
	attachments storage.Attachments
	bus         realtime.Bus
	notifier    notify.Notifier
	cfg         config.Config

	typing *typingTimers
}

// New создаёт новый экземпляр Service.
// attachments может быть nil (S3 не настроен); notifier — notify.Nop{},
// если публикация событий выключена.
func New(st storage.Storage, pr storage.Presence, att storage.Attachments, bus realtime.Bus, nt notify.Notifier, cfg config.Config) *Service {
	if nt == nil {
		nt = notify.Nop{}
	}

	return &Service{
		storage:     st,
		presence:    pr,
		attachments: att,
		bus:         bus,
		notifier:    nt,
		cfg:         cfg,
		typing:      newTypingTimers(),
	}
}

// Close останавливает фоновые таймеры сервиса (typing-присутствие).
// Активные подписки завершаются своими контекстами.
func (s *Service) Close() {
	s.typing.close()
}
