package attempt

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/quizdeck/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)

	r.Get("/", h.ListMine)
	r.Post("/quiz/{quizID}/start", h.Start)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/answers", h.SaveAnswer)
	r.Post("/{id}/submit", h.Submit)
	return r
}
