package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"
)

// ErrRateLimited — запрос не уложился в глобальный лимит.
var ErrRateLimited = errors.New("too many requests")

// TimeoutError — обработка заняла больше настроенного времени.
type TimeoutError struct {
	After time.Duration
}

func (e TimeoutError) Error() string {
	if e.After%time.Second == 0 {
		return fmt.Sprintf("request took longer than the configured %d second timeout", int(e.After/time.Second))
	}
	return fmt.Sprintf("request took longer than the configured %s timeout", e.After)
}

const errorSlotKey ctxKey = "error_slot"

// errorSlot хранит первую ошибку, о которой сообщили middleware внутри цепочки.
type errorSlot struct {
	mu  sync.Mutex
	err error
}

func (s *errorSlot) set(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false
	}
	s.err = err
	return true
}

func (s *errorSlot) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Abort сообщает ErrorTranslator, что запрос завершился ошибкой и ответ
// должен сформировать он. Сохраняется только первая ошибка.
// Возвращает false, если ErrorTranslator выше по цепочке нет
// или ошибка уже была записана.
func Abort(r *http.Request, err error) bool {
	return abort(r.Context(), err)
}

func abort(ctx context.Context, err error) bool {
	slot, ok := ctx.Value(errorSlotKey).(*errorSlot)
	if !ok {
		return false
	}
	return slot.set(err)
}

// errorBody — {"error": "..."}.
type errorBody struct {
	Error string `json:"error"`
}

// ErrorTranslator превращает ошибки внутренних middleware и паники
// в JSON-ответ:
//   - TimeoutError — 408;
//   - ErrRateLimited — 429;
//   - всё остальное — 500 "unhandled internal error: <message>".
//
// Если обработчик уже начал писать ответ, ничего не делает.
func ErrorTranslator(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slot := &errorSlot{}
			r = r.WithContext(context.WithValue(r.Context(), errorSlotKey, slot))
			wr := &ResponseWriter{ResponseWriter: w}

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic while handling request",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					slot.set(fmt.Errorf("%v", rec))
				}

				err := slot.get()
				if err == nil || wr.Status != 0 {
					return
				}
				log.Debug("request aborted", zap.String("uri", r.RequestURI), zap.Error(err))
				writeAbortError(wr, err)
			}()

			next.ServeHTTP(wr, r)
		})
	}
}

func writeAbortError(w http.ResponseWriter, err error) {
	var timeout TimeoutError
	switch {
	case errors.As(err, &timeout):
		writeJSON(w, http.StatusRequestTimeout, errorBody{Error: timeout.Error()})
	case errors.Is(err, ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: ErrRateLimited.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "unhandled internal error: " + err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
