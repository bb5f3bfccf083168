package api

import (
	"github.com/go-chi/chi/v5"
)

// Routes возвращает маршруты API. Их монтируют под версионированным
// префиксом (/api/v1).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/", h.ListUsers)
	r.Post("/signup", h.Signup)

	return r
}
