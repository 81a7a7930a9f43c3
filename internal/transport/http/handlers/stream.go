package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pribylovaa/go-community-service/internal/models"
	"github.com/pribylovaa/go-community-service/internal/transport/http/apierrors"
	"github.com/pribylovaa/go-community-service/internal/transport/http/middleware"
	"github.com/pribylovaa/go-community-service/pkg/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Проверку Origin выполняет фронтовый прокси; здесь соединение уже доверенное.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamFrame — кадр push-канала. Каждый кадр несёт полный снапшот
// своего среза (не дельту): клиент просто перерисовывает состояние.
type streamFrame struct {
	Kind string `json:"kind"` // config | comments | reactions | typing
	Data any    `json:"data"`
}

type streamConfig struct {
	TypingIdleMS   int64 `json:"typing_idle_ms"`
	HighlightTTLMS int64 `json:"highlight_ttl_ms"`
	MaxRenderDepth int   `json:"max_render_depth"`
}

// Stream — GET /posts/{post_id}/stream (websocket).
// Мультиплексирует три подписки поста: комментарии, реакции на пост и
// индикатор набора. Аутентификация опциональна: для анонима агрегат
// реакций приходит без поля own.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	postID, err := uuidParam(r, "post_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	userID := uuid.Nil
	if identity, ok := middleware.IdentityFrom(r.Context()); ok {
		userID = identity.UserID
	}

	// Подписки открываем до апгрейда: их ошибки ещё можно отдать как JSON.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	comments, stopComments, err := h.svc.SubscribeComments(ctx, postID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer stopComments()

	reactions, stopReactions, err := h.svc.SubscribeReactions(ctx, models.EntityRef{Kind: models.EntityPost, ID: postID.String()}, userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer stopReactions()

	typing, stopTyping, err := h.svc.SubscribeTyping(ctx, postID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer stopTyping()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ; нам остаётся лишь лог.
		log.From(ctx).Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// Читатель нужен только для обработки close/pong.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(frame streamFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(frame)
	}

	if err := write(streamFrame{Kind: "config", Data: streamConfig{
		TypingIdleMS:   h.cfg.Realtime.TypingIdle.Milliseconds(),
		HighlightTTLMS: h.cfg.Realtime.HighlightTTL.Milliseconds(),
		MaxRenderDepth: h.cfg.Limits.MaxRenderDepth,
	}}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-comments:
			if !ok {
				return
			}
			if err := write(streamFrame{Kind: "comments", Data: newCommentViews(snapshot)}); err != nil {
				return
			}
		case snapshot, ok := <-reactions:
			if !ok {
				return
			}
			if err := write(streamFrame{Kind: "reactions", Data: newReactionSummaryView(snapshot)}); err != nil {
				return
			}
		case snapshot, ok := <-typing:
			if !ok {
				return
			}
			if err := write(streamFrame{Kind: "typing", Data: newTypingViews(snapshot)}); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
