package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
)

// AttachmentPresign — POST /attachments/presign.
// Выдаёт presigned PUT URL: файл уходит в объектное хранилище напрямую,
// минуя сервис. Если хранилище не настроено — 503.
func (h *Handlers) AttachmentPresign(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in struct {
		ContentType   string `json:"content_type"`
		ContentLength int64  `json:"content_length"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	info, err := h.svc.AttachmentUploadURL(r.Context(), identity.UserID, in.ContentType, in.ContentLength)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newUploadInfoView(info))
}
