package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
)

// StartTyping — POST /posts/{post_id}/typing.
// Heartbeat «я печатаю»: клиент дёргает ручку при вводе, сервис сам
// гасит присутствие после паузы. Всегда 204 — сбой индикатора не
// должен мешать набору комментария.
func (h *Handlers) StartTyping(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.svc.StartTyping(r.Context(), postID, identity.UserID, identity.DisplayName)

	w.WriteHeader(http.StatusNoContent)
}

// StopTyping — DELETE /posts/{post_id}/typing.
// Явное снятие индикатора (очистка поля ввода, уход со страницы).
func (h *Handlers) StopTyping(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.svc.StopTyping(r.Context(), postID, identity.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// ListTyping — GET /posts/{post_id}/typing.
func (h *Handlers) ListTyping(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	users, err := h.svc.ListTyping(r.Context(), postID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newTypingViews(users))
}
