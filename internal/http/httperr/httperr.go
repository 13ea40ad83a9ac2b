// httperr стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает типизированную ошибку сервисного слоя, а на выход
// даёт корректный HTTP-статус и краткое безопасное message без утечки
// деталей. Формат тела — единый конверт {"success":false,"message":...}.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-blog-platform/internal/service"
)

// ErrorResponse — корневой объект в ответе об ошибке.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - известные sentinel-ошибки маппятся по таксономии
//     (валидация -> 400, аутентификация -> 401, авторизация -> 403,
//     отсутствие -> 404, конфликт уникальности -> 409);
//   - прочее -> 500 без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, fail("internal error")
	}

	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, fail("invalid argument")
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusBadRequest, fail("passwords do not match")
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, fail("invalid email format")
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, fail("password must be 6-50 characters")
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, fail("invalid email or password")
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, fail("token expired")
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, fail("invalid or expired token")
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusForbidden, fail("account is deactivated")
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, fail("you are not allowed to perform this action")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, fail("not found")
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, fail("email already in use")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, fail("request timed out")
	default:
		return http.StatusInternalServerError, fail("internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров: пишет корректный статус и тело.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func fail(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Message: msg}
}
