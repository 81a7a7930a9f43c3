package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/service"
	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
	"github.com/pribylovaa/go-community-service/internal/transport/http/middleware"
)

// TogglePostReaction — POST /posts/{post_id}/reactions.
func (h *Handlers) TogglePostReaction(w http.ResponseWriter, r *http.Request) {
	h.toggleReaction(w, r, models.EntityPost, "post_id")
}

// ToggleCommentReaction — POST /comments/{id}/reactions.
func (h *Handlers) ToggleCommentReaction(w http.ResponseWriter, r *http.Request) {
	h.toggleReaction(w, r, models.EntityComment, "id")
}

// toggleReaction — общий обработчик тумблера реакции.
// Успех — всегда 204: актуальный агрегат приедет подписчикам снапшотом,
// а сбой хранилища по контракту не роняет клиентский сценарий.
func (h *Handlers) toggleReaction(w http.ResponseWriter, r *http.Request, kind models.EntityKind, param string) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	entity, err := entityFromRoute(r, kind, param)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in struct {
		EmojiKey string `json:"emoji_key"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.svc.ToggleReaction(r.Context(), service.ToggleReactionInput{
		Entity: entity,
		UserID: identity.UserID,
		Key:    models.EmojiKey(in.EmojiKey),
	}); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PostReactions — GET /posts/{post_id}/reactions.
func (h *Handlers) PostReactions(w http.ResponseWriter, r *http.Request) {
	h.reactionSummary(w, r, models.EntityPost, "post_id")
}

// CommentReactions — GET /comments/{id}/reactions.
func (h *Handlers) CommentReactions(w http.ResponseWriter, r *http.Request) {
	h.reactionSummary(w, r, models.EntityComment, "id")
}

func (h *Handlers) reactionSummary(w http.ResponseWriter, r *http.Request, kind models.EntityKind, param string) {
	entity, err := entityFromRoute(r, kind, param)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	// Own заполняется только для аутентифицированного вызова.
	userID := uuid.Nil
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		userID = identity.UserID
	}

	summary, err := h.svc.ReactionSummary(r.Context(), entity, userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReactionSummaryView(*summary))
}

func entityFromRoute(r *http.Request, kind models.EntityKind, param string) (models.EntityRef, error) {
	id := chi.URLParam(r, param)
	if id == "" {
		return models.EntityRef{}, errInvalidArgument()
	}

	if kind == models.EntityPost {
		if _, err := uuid.Parse(id); err != nil {
			return models.EntityRef{}, errInvalidArgument()
		}
	}

	return models.EntityRef{Kind: kind, ID: id}, nil
}
