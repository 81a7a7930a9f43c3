package auth

// Тесты верификатора токенов (internal/auth/jwt.go).
//
//  Проверяем:
//  - happy-path: валидный HS256-токен с sub/name/avatar_url;
//  - отказ по каждой причине (пустой токен, чужой секрет, другой алгоритм,
//    истёкший срок, отсутствующий или не-UUID sub) сворачивается
//    в ErrInvalidToken.

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTVerifier_OK(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	userID := uuid.New()

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":        userID.String(),
		"name":       "Alice",
		"avatar_url": "https://cdn.local/a.png",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID, id.UserID)
	require.Equal(t, "Alice", id.DisplayName)
	require.Equal(t, "https://cdn.local/a.png", id.AvatarURL)
}

// Профильные клеймы опциональны: достаточно sub.
func TestJWTVerifier_SubOnly(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	userID := uuid.New()

	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": userID.String(),
	})

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID, id.UserID)
	require.Empty(t, id.DisplayName)
	require.Empty(t, id.AvatarURL)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	userID := uuid.New()

	cases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: "   "},
		{name: "garbage", token: "not.a.jwt"},
		{
			name: "wrong secret",
			token: signToken(t, jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{
				"sub": userID.String(),
			}),
		},
		{
			name: "wrong method",
			token: signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
				"sub": userID.String(),
			}),
		},
		{
			name: "expired",
			token: signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"sub": userID.String(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "missing sub",
			token: signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"name": "Alice",
			}),
		},
		{
			name: "sub is not uuid",
			token: signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
				"sub": "user-42",
			}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tc.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
