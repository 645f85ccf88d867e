package quiz

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/quizdeck/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)

	r.Post("/", h.CreateQuiz)
	r.Get("/", h.ListMine)
	r.Get("/published", h.ListPublished)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePermission(auth.PermQuizManageAny))
		r.Get("/all", h.ListAll)
	})

	r.Get("/{id}", h.GetQuizWithQuestions)
	r.Get("/{id}/take", h.GetTakeView)
	r.Patch("/{id}", h.UpdateQuiz)
	r.Post("/{id}/publish", h.PublishQuiz)
	r.Delete("/{id}", h.DeleteQuiz)
	r.Post("/{id}/questions", h.AddQuestion)
	r.Delete("/questions/{questionID}", h.RemoveQuestion)
	return r
}
