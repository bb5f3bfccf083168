package middleware

import (
	"context"
	"net/http"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
)

// ctxKey используется как тип ключа для хранения значений в context.Context.
type ctxKey string

const servicesKey ctxKey = "services"

// WithServicesContext кладёт сервисы в контекст.
func WithServicesContext(ctx context.Context, svc *service.Services) context.Context {
	return context.WithValue(ctx, servicesKey, svc)
}

// ServicesFromContext достаёт сервисы, положенные WithServices.
func ServicesFromContext(ctx context.Context) (*service.Services, bool) {
	svc, ok := ctx.Value(servicesKey).(*service.Services)
	return svc, ok && svc != nil
}

// WithServices делает сервисный слой доступным каждому обработчику
// через контекст запроса.
func WithServices(svc *service.Services) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithServicesContext(r.Context(), svc)))
		})
	}
}
