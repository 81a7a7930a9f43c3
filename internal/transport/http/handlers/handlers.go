package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/auth"
	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/service"
	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
	"github.com/pribylovaa/go-community-service/internal/transport/http/middleware"
)

// Handlers агрегирует зависимости REST-слоя.
type Handlers struct {
	svc *service.Service
	cfg *config.Config
}

func New(svc *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, cfg: cfg}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка парсинга запроса -> 400.
func errInvalidArgument() error {
	return fmt.Errorf("bad request: %w", service.ErrInvalidArgument)
}

// requireIdentity достаёт подтверждённую личность из контекста.
// Отсутствие токена на ручке записи — это 401, а не 403: клиент
// не предъявил личность вовсе.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, auth.ErrInvalidToken)
		return nil, false
	}

	return id, true
}

// uuidParam разбирает обязательный UUID-параметр пути.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errInvalidArgument()
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidArgument()
	}

	return id, nil
}
