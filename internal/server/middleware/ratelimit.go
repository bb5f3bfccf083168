package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// RateLimit — глобальный (на весь сервер, не на клиента) лимит запросов.
//
// Запрос ждёт свободный токен, пока это укладывается в дедлайн
// контекста. Если ждать пришлось бы дольше, запрос отклоняется с 429.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Wait(r.Context()); err != nil {
				Abort(r, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Buffer ограничивает число одновременно обрабатываемых запросов
// (maxInFlight) и держит очередь ожидающих глубиной queueDepth.
// Переполнение очереди — 429.
func Buffer(maxInFlight, queueDepth int, wait time.Duration) func(http.Handler) http.Handler {
	return middleware.ThrottleWithOpts(middleware.ThrottleOpts{
		Limit:          maxInFlight,
		BacklogLimit:   queueDepth,
		BacklogTimeout: wait,
		StatusCode:     http.StatusTooManyRequests,
		RetryAfterFn: func(bool) time.Duration {
			return time.Second
		},
	})
}
