// Package validation проверяет входные данные на HTTP-границе,
// до того как они попадут в сервисный слой.
//
// Правила задаются тегом validate (go-playground/validator), имена полей
// в ошибках берутся из тега json. Явное сообщение для правила можно
// задать тегом messages: `messages:"email:email is invalid;min:too short"`.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	serr "github.com/IvanChernomyrdin/go-signup-service/internal/shared/errors"
)

// MessagesTag — тег с явными сообщениями об ошибках.
const MessagesTag = "messages"

// Validator — обёртка над validator.Validate, собирающая ошибки
// всех полей в serr.FieldErrors.
//
// Безопасен для конкурентного использования.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

// errTrailingData — после JSON-значения в теле есть что-то ещё.
var errTrailingData = errors.New("trailing characters after JSON value")

// DecodeAndValidate разбирает JSON из r в dst и проверяет результат.
// Тело должно содержать ровно одно JSON-значение.
//
// Ошибка разбора — serr.MalformedRequest с сообщением парсера,
// нарушение правил — serr.ValidationFailed со всеми полями сразу.
func (val *Validator) DecodeAndValidate(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return serr.MalformedRequest(err)
	}

	// всё после первого значения, кроме пробелов, считаем мусором
	var rest json.RawMessage
	switch err := dec.Decode(&rest); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return serr.MalformedRequest(fmt.Errorf("%w: %v", errTrailingData, err))
	default:
		return serr.MalformedRequest(errTrailingData)
	}

	return val.Struct(dst)
}

// Struct проверяет уже разобранную структуру.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// сюда попадаем, только если передали не структуру
		return serr.Internal(err)
	}

	root := reflect.TypeOf(s)
	fields := serr.FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), message(root, fe))
	}
	return serr.ValidationFailed(fields)
}

// message выбирает текст ошибки: явный из тега messages или собранный
// из параметров правила.
func message(root reflect.Type, fe validator.FieldError) string {
	if sf, ok := structField(root, fe.StructNamespace()); ok {
		if msg, ok := explicitMessage(sf.Tag.Get(MessagesTag), fe.Tag()); ok {
			return msg
		}
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s value is %s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s is required", fe.Field())
}

// explicitMessage ищет в теге пару "<rule>:<message>".
func explicitMessage(tag, rule string) (string, bool) {
	if tag == "" {
		return "", false
	}
	for _, pair := range strings.Split(tag, ";") {
		name, msg, ok := strings.Cut(pair, ":")
		if ok && strings.TrimSpace(name) == rule {
			return strings.TrimSpace(msg), true
		}
	}
	return "", false
}

// structField находит поле по пути вида "SignupRequest.Address.City".
func structField(t reflect.Type, namespace string) (reflect.StructField, bool) {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return reflect.StructField{}, false
	}

	var sf reflect.StructField
	for _, name := range parts[1:] {
		t = elem(t)
		if t.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		// Items[0] -> Items
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return reflect.StructField{}, false
		}
		sf = f
		t = f.Type
	}
	return sf, true
}

func elem(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	return t
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
