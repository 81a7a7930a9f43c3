package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-community-service/internal/auth"
	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
)

type ctxKey int

const ctxIdentity ctxKey = iota

// IdentityFrom возвращает подтверждённую личность вызывающего, если
// Authorization-заголовок был предъявлен и прошёл проверку.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(*auth.Identity)
	return id, ok && id != nil
}

// Auth извлекает Bearer-токен из Authorization и проверяет его верификатором.
// Валидный токен кладёт Identity в контекст; невалидный — сразу 401.
// Отсутствие заголовка пропускается: read-only ручки открыты, ручки записи
// сами требуют Identity и отвечают 401 при его отсутствии.
func Auth(verifier auth.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				apierrors.WriteError(w, r, auth.ErrInvalidToken)
				return
			}

			token := strings.TrimSpace(header[len(prefix):])

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
