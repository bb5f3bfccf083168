// HTTP-хендлеры пользователей: регистрация и список
package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
)

var errNotJSON = errors.New("expected request with `Content-Type: application/json`")

// SignupRequest описывает тело запроса регистрации.
// Поле id клиент передать не может: оно молча отбрасывается при разборе.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,min=1,email" messages:"email:email is invalid"`
	Password string `json:"password" validate:"required,min=6"`
}

// ListUsers godoc
// @Summary      List users
// @Description  Returns every registered user. Order is not specified.
// @Tags         users
// @Produce      json
// @Success      200 {array}  models.User
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       / [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.services(w, r)
	if !ok {
		return
	}

	users, err := svc.Users.List(r.Context())
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, users)
}

// Signup регистрирует пользователя.
//
// Ответы:
//   - 200 OK: пользователь создан, в теле подтверждение вставки;
//   - 400 Bad Request: Content-Type не JSON, неверный JSON или невалидные поля (все сразу);
//   - 409 Conflict: email уже занят;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Sign up
// @Description  Creates a user. Email must be unique, password at least 6 characters.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup request"
// @Success      200 {object} models.InsertResult
// @Failure      400 {object} FieldErrorsResponse "Validation failed"
// @Failure      409 {object} ErrorResponse "Email is taken"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.services(w, r)
	if !ok {
		return
	}

	if !hasJSONContentType(r) {
		h.RespondError(w, r, serr.MalformedRequest(errNotJSON))
		return
	}

	var body io.Reader = r.Body
	if h.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	}

	var req SignupRequest
	if err := h.Validator.DecodeAndValidate(body, &req); err != nil {
		h.RespondError(w, r, err)
		return
	}

	res, err := svc.Users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.RespondError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, res)
}

// hasJSONContentType проверяет, что тело объявлено как JSON
// (application/json или application/*+json, параметры вроде charset допустимы).
func hasJSONContentType(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get(ContentType))
	if err != nil {
		return false
	}
	return mt == JsonContentType ||
		(strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json"))
}
