package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-community-service/internal/service"
	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
)

// CreateComment — POST /posts/{post_id}/comments.
// Корневой комментарий или ответ (parent_id в теле).
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in struct {
		ParentID string `json:"parent_id"`
		Content  string `json:"content"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), service.CreateCommentInput{
		PostID:          postID,
		ParentID:        in.ParentID,
		AuthorID:        identity.UserID,
		AuthorName:      identity.DisplayName,
		AuthorAvatarURL: identity.AvatarURL,
		Content:         in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCommentView(*comment))
}

// EditComment — PATCH /comments/{id}. Редактировать может только автор.
func (h *Handlers) EditComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	var in struct {
		Content string `json:"content"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	comment, err := h.svc.EditComment(r.Context(), service.EditCommentInput{
		ID:       id,
		EditorID: identity.UserID,
		Content:  in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCommentView(*comment))
}

// DeleteComment — DELETE /comments/{id}. Удалять может только автор.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.svc.DeleteComment(r.Context(), id, identity.UserID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListComments — GET /posts/{post_id}/comments.
// Плоский список в хронологическом порядке.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	comments, err := h.svc.ListComments(r.Context(), postID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCommentViews(comments))
}

// Thread — GET /posts/{post_id}/thread?depth=N.
// Дерево, развёрнутое до depth уровней (0/пусто — значение из конфига).
func (h *Handlers) Thread(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	depth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apierrors.WriteError(w, r, errInvalidArgument())
			return
		}
		depth = n
	}

	nodes, err := h.svc.Thread(r.Context(), postID, depth)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newThreadView(nodes))
}
