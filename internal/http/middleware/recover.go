package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	logctx "github.com/pribylovaa/go-blog-platform/pkg/log"
)

// Recover перехватывает panic, логирует её со стеком и отвечает 500
// в унифицированном конверте {"success":false,"message":...}.
//
// В окружениях "local" и "dev" причина паники попадает в message ответа,
// в остальных — наружу уходит только "internal error".
func Recover(env string) Middleware {
	verbose := env == "local" || env == "dev"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logctx.From(r.Context()).
						LogAttrs(r.Context(), slog.LevelError, "panic",
							slog.String("path", r.URL.Path),
							slog.Any("reason", rec),
							slog.String("stack", string(debug.Stack())),
						)

					msg := "internal error"
					if verbose {
						msg = fmt.Sprintf("panic: %v", rec)
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"message": msg,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
