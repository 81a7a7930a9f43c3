// log — крошечный помощник для прокидывания request-scoped slog-логгера
// через context.Context. Транспортные middleware кладут логгер в контекст,
// нижние слои достают его через From и дополняют атрибутами.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into возвращает контекст с вложенным логгером.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// From возвращает логгер из контекста либо slog.Default(), если его там нет.
// Никогда не возвращает nil.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}
