// Package http собирает полный HTTP-обработчик сервера.
//
// Пакет отвечает за:
//   - цепочку middleware (CORS, сервисы в контексте, трассировка,
//     перевод ошибок, таймаут, очередь запросов, rate limit);
//   - монтирование API под версионированным префиксом;
//   - единый ответ 404 для любого несуществующего маршрута;
//   - swagger (если включён в конфиге).
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/api"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-signup-service/internal/server/service"
	"github.com/IvanChernomyrdin/go-signup-service/internal/shared/logger"

	// регистрирует OpenAPI-документ в swag
	_ "github.com/IvanChernomyrdin/go-signup-service/swagger/docs"
)

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Middleware применяются в порядке (снаружи внутрь):
// CORS -> сервисы -> трассировка -> ошибки -> таймаут -> очередь -> rate limit.
// Все лимиты берутся из cfg, глобальных констант нет.
func NewRouter(h *api.Handler, svc *service.Services, cfg config.HTTPConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.WithServices(svc))
	r.Use(middleware.Tracing(log))
	r.Use(middleware.ErrorTranslator(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Buffer(cfg.MaxInFlight, cfg.QueueDepth, cfg.RequestTimeout))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	// добавляем swagger
	if cfg.Swagger {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Mount(cfg.APIPrefix, api.Routes(h))

	return r
}
