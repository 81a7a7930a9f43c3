package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTVerifier проверяет HS256-токены auth-провайдера.
// Ожидаемые клеймы: sub — UUID пользователя (обязательный),
// name/avatar_url — профильные (опциональные).
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier создаёт верификатор с общим секретом провайдера.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify разбирает и проверяет токен.
// Любая причина отказа сворачивается в ErrInvalidToken: детали наружу
// не отдаются, полная причина остаётся в обёртке для логов.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	const op = "auth/jwt/Verify"

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%s: empty token: %w", op, ErrInvalidToken)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: bad claims: %w", op, ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%s: missing sub: %w", op, ErrInvalidToken)
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%s: sub is not a uuid: %w", op, ErrInvalidToken)
	}

	id := &Identity{UserID: userID}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	if avatar, ok := claims["avatar_url"].(string); ok {
		id.AvatarURL = avatar
	}

	return id, nil
}
