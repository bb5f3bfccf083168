package api

import (
	"net/http"

	"go.uber.org/zap"

	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
)

// NotFoundMessage — текст ответа на любой несуществующий маршрут.
const NotFoundMessage = "The requested resource does not exist on this server!"

// ErrorResponse — {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldErrorsResponse — {"errors": {"field": ["message", ...]}}.
type FieldErrorsResponse struct {
	Errors serr.FieldErrors `json:"errors"`
}

// ErrorStatus возвращает HTTP-статус и тело ответа для ошибки.
//
//	ValidationFailed                      -> 400 {"errors": {...}}
//	MalformedRequest, BadRequest          -> 400 {"error": msg}
//	NotFound                              -> 404
//	Conflict                              -> 409
//	PreconditionFailed                    -> 412
//	Unauthorized, Forbidden               -> 401, 403 с фиксированным текстом
//	Store, InvalidIdentifier и остальное  -> 500 "unexpected error has occurred"
func ErrorStatus(err error) (int, any) {
	appErr, ok := serr.As(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{Error: serr.MsgInternal}
	}

	switch appErr.Kind {
	case serr.KindValidationFailed:
		return http.StatusBadRequest, FieldErrorsResponse{Errors: appErr.Fields}
	case serr.KindMalformedRequest, serr.KindBadRequest:
		return http.StatusBadRequest, ErrorResponse{Error: appErr.Message}
	case serr.KindNotFound:
		return http.StatusNotFound, ErrorResponse{Error: appErr.Message}
	case serr.KindConflict:
		return http.StatusConflict, ErrorResponse{Error: appErr.Message}
	case serr.KindPreconditionFailed:
		return http.StatusPreconditionFailed, ErrorResponse{Error: appErr.Message}
	case serr.KindUnauthorized:
		return http.StatusUnauthorized, ErrorResponse{Error: serr.MsgUnauthorized}
	case serr.KindForbidden:
		return http.StatusForbidden, ErrorResponse{Error: serr.MsgForbidden}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: serr.MsgInternal}
	}
}

// RespondError — единственное место перевода ошибки в HTTP-ответ.
// Любая ошибка сначала пишется в лог на уровне debug.
func (h *Handler) RespondError(w http.ResponseWriter, r *http.Request, err error) {
	h.Log.Debug("request failed",
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
		zap.Stringer("kind", serr.KindOf(err)),
		zap.Error(err),
	)

	status, body := ErrorStatus(err)
	WriteJSON(w, status, body)
}

// NotFound отвечает на несуществующий маршрут.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, FieldErrorsResponse{
		Errors: serr.FieldErrors{"message": {NotFoundMessage}},
	})
}
