// Package auth — проверка bearer-токенов внешнего auth-провайдера.
// Сервис не издаёт токены и не ведёт пользователей: он лишь проверяет
// подпись и достаёт стабильный идентификатор + профильные клеймы,
// которые денормализуются в создаваемые документы.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidToken — токен отсутствует, просрочен или не прошёл проверку.
var ErrInvalidToken = errors.New("invalid token")

// Identity — подтверждённая личность вызывающего.
type Identity struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
}

// Verifier — контракт проверки токена для транспортного слоя.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
