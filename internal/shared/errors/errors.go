// Package errors содержит общие доменные ошибки приложения
// и закрытый набор видов ошибок (Kind), которые api слой
// однозначно переводит в HTTP-статус и тело ответа.
//
// Ошибки создаются в validation, service и repository слоях
// и пробрасываются наверх без изменений.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Входные данные невалидны (пустые поля, неправильный формат и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Неавторизован
	ErrUnauthorized = errors.New("unauthorized")
	// Нет прав
	ErrForbidden = errors.New("forbidden")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
	// конфликт (к примеру email уже занят)
	ErrConflict = errors.New("conflict")
	// предусловие не выполнено
	ErrPreconditionFailed = errors.New("precondition failed")
	// некорректный запрос
	ErrBadRequest = errors.New("bad request")
	// ошибка хранилища (соединение, запись, чтение)
	ErrStore = errors.New("store error")
	// строка не является корректным идентификатором хранилища
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// Фиксированные сообщения для видов ошибок без собственного текста.
const (
	MsgUnauthorized = "authentication is required to access this resource"
	MsgForbidden    = "user does not have privilege to access this resource"
	MsgInternal     = "unexpected error has occurred"
)

// Kind — вид доменной ошибки. Набор закрыт: api слой знает их все.
type Kind int

const (
	KindInternal Kind = iota
	KindValidationFailed
	KindMalformedRequest
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindStore
	KindInvalidIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindValidationFailed:
		return "validation_failed"
	case KindMalformedRequest:
		return "malformed_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStore:
		return "store"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	default:
		return "internal"
	}
}

// sentinel возвращает sentinel-ошибку вида, чтобы работал errors.Is.
func (k Kind) sentinel() error {
	switch k {
	case KindValidationFailed:
		return ErrInvalidInput
	case KindMalformedRequest:
		return ErrBadJSON
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindPreconditionFailed:
		return ErrPreconditionFailed
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindStore:
		return ErrStore
	case KindInvalidIdentifier:
		return ErrInvalidIdentifier
	default:
		return ErrInternal
	}
}

// FieldErrors — поле запроса -> упорядоченный список сообщений о нарушениях.
type FieldErrors map[string][]string

// Add дописывает сообщение к полю.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// AppError — доменная ошибка с видом, сообщением для клиента
// и (опционально) исходной причиной.
type AppError struct {
	Kind    Kind
	Message string
	// Fields заполнен только для KindValidationFailed
	Fields FieldErrors
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is позволяет писать errors.Is(err, ErrStore) для любой AppError вида KindStore.
func (e *AppError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// ValidationFailed — нарушены правила валидации полей.
func ValidationFailed(fields FieldErrors) *AppError {
	return &AppError{Kind: KindValidationFailed, Message: "validation failed", Fields: fields}
}

// MalformedRequest — тело запроса не удалось разобрать.
// Сообщение парсера уходит клиенту как есть.
func MalformedRequest(err error) *AppError {
	return &AppError{Kind: KindMalformedRequest, Message: err.Error(), Err: err}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func PreconditionFailed(msg string) *AppError {
	return &AppError{Kind: KindPreconditionFailed, Message: msg}
}

func BadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg}
}

func Unauthorized() *AppError {
	return &AppError{Kind: KindUnauthorized, Message: MsgUnauthorized}
}

func Forbidden() *AppError {
	return &AppError{Kind: KindForbidden, Message: MsgForbidden}
}

// Internal — непредвиденная ошибка, причина клиенту не показывается.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// Store — ошибка соединения/записи/чтения хранилища.
func Store(op string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: op, Err: err}
}

// InvalidIdentifier — id не является корректным идентификатором хранилища.
func InvalidIdentifier(id string, err error) *AppError {
	return &AppError{Kind: KindInvalidIdentifier, Message: fmt.Sprintf("invalid identifier %q", id), Err: err}
}

// KindOf возвращает вид ошибки. Всё, что не AppError, считается KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As — короткая обёртка над errors.As для AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
