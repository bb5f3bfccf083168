// Package api реализует HTTP-слой сервиса регистрации.
//
// Пакет отвечает за:
//   - обработку входящих запросов и формирование ответов (JSON, статусы);
//   - валидацию тела запроса до вызова сервисного слоя;
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/validation"
	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// errNoServices — сервисы не положены в контекст (не подключён middleware.WithServices).
var errNoServices = errors.New("services are not bound to the request context")

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Сервисный слой хендлеры берут из контекста запроса (middleware.WithServices).
type Handler struct {
	Log       *logger.Logger
	Validator *validation.Validator
	// MaxBodyBytes — лимит тела запроса, 0 = без лимита
	MaxBodyBytes int64
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(log *logger.Logger, v *validation.Validator, maxBodyBytes int64) *Handler {
	return &Handler{
		Log:          log,
		Validator:    v,
		MaxBodyBytes: maxBodyBytes,
	}
}

// services достаёт сервисный слой из контекста. Если его нет, сам отвечает 500.
func (h *Handler) services(w http.ResponseWriter, r *http.Request) (*service.Services, bool) {
	svc, ok := middleware.ServicesFromContext(r.Context())
	if !ok {
		h.RespondError(w, r, serr.Internal(errNoServices))
		return nil, false
	}
	return svc, true
}

// WriteJSON — вспомогательная функция вывода JSON-ответа.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
