package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/IvanChernomyrdin/go-signup-service/internal/server/config"
)

// CORS применяет политику из конфига. Preflight-запросы
// отвечаются здесь же и дальше по цепочке не идут.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		MaxAge:         300,
	})
}
