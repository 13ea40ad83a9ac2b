// handlers реализует REST-обработчики блог-платформы поверх сервисного слоя.
//
// Каждый успешный ответ упакован в конверт {"success":true,...} — либо с
// полем data (сущности), либо с полем message (операции без результата).
// Ошибки уходят через httperr.WriteError в виде {"success":false,"message":...}.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-blog-platform/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// dataResponse — успешный ответ с полезной нагрузкой.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// messageResponse — успешный ответ без полезной нагрузки.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Success: true, Message: msg})
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errBadBody — нечитаемое/невалидное тело запроса -> 400.
func errBadBody() error {
	return fmt.Errorf("malformed request body: %w", service.ErrInvalidArgument)
}
