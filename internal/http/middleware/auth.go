package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-blog-platform/internal/http/httperr"
	"github.com/pribylovaa/go-blog-platform/internal/models"
	"github.com/pribylovaa/go-blog-platform/internal/service"
)

type ctxKey int

const principalKey ctxKey = iota

// Authenticator проверяет access-токен и возвращает активного пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Principal, error)
}

// Authenticate — обязательная аутентификация по заголовку Authorization.
//
// Поведение:
//   - нет заголовка или он не вида "Bearer <token>" -> 401;
//   - токен просрочен/подделан или пользователь не найден -> 401;
//   - пользователь деактивирован -> 403;
//   - успех -> Principal кладётся в контекст запроса.
func Authenticate(svc Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			principal, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom достаёт аутентифицированного пользователя из контекста.
// Возвращает false, если запрос не проходил через Authenticate.
func PrincipalFrom(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*models.Principal)
	return p, ok && p != nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
