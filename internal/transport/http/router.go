package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-community-service/internal/auth"
	"github.com/pribylovaa/go-community-service/internal/config"
	"github.com/pribylovaa/go-community-service/internal/service"
	"github.com/pribylovaa/go-community-service/internal/transport/http/handlers"
	"github.com/pribylovaa/go-community-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, verifier auth.Verifier, cfg *config.Config, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Auth(verifier),       // валидируем Bearer и кладём Identity в контекст
	)

	// Зависимости хендлеров.
	h := handlers.New(svc, cfg)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts.Timeout)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts.Timeout)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Общий Timeout не вешается на websocket-стрим: это долгоживущее
// соединение, его жизненным циклом управляет сам хендлер.
func registerRoutes(r chi.Router, h *handlers.Handlers, timeout time.Duration) {
	r.Group(func(r chi.Router) {
		if timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}

		// comments
		r.Post("/posts/{post_id}/comments", h.CreateComment)
		r.Get("/posts/{post_id}/comments", h.ListComments)
		r.Get("/posts/{post_id}/thread", h.Thread)
		r.Patch("/comments/{id}", h.EditComment)
		r.Delete("/comments/{id}", h.DeleteComment)

		// reactions
		r.Post("/posts/{post_id}/reactions", h.TogglePostReaction)
		r.Get("/posts/{post_id}/reactions", h.PostReactions)
		r.Post("/comments/{id}/reactions", h.ToggleCommentReaction)
		r.Get("/comments/{id}/reactions", h.CommentReactions)

		// typing
		r.Post("/posts/{post_id}/typing", h.StartTyping)
		r.Delete("/posts/{post_id}/typing", h.StopTyping)
		r.Get("/posts/{post_id}/typing", h.ListTyping)

		// attachments
		r.Post("/attachments/presign", h.AttachmentPresign)
	})

	// realtime
	r.Get("/posts/{post_id}/stream", h.Stream)
}
