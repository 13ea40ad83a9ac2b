// log передаёт request-scoped slog-логгер через context.Context.
// Middleware кладёт логгер с request_id в контекст запроса, нижние слои
// достают его через From и не знают о транспорте.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста. Если логгер не положен — slog.Default(),
// чтобы вызывающему коду не приходилось проверять nil.
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}

	return slog.Default()
}
