package attempt

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/config"
)

type Handler struct {
	service AttemptService
}

func NewHandler(s AttemptService) *Handler {
	return &Handler{service: s}
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Start(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err, "Failed to start attempt")
		return
	}

	status := http.StatusCreated
	if resp.Resumed {
		status = http.StatusOK
	}
	config.JSON(w, status, resp)
}

func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	var dto SaveAnswerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body for answer save")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.QuestionID == uuid.Nil {
		http.Error(w, "question_id required", http.StatusBadRequest)
		return
	}

	if err := h.service.SaveAnswer(r.Context(), attemptID, dto); err != nil {
		h.writeError(w, r, err, "Failed to save answer")
		return
	}

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "answer saved",
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	var dto SubmitAttemptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body for submission")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if dto.Answers == nil {
		dto.Answers = map[uuid.UUID]string{}
	}

	result, err := h.service.Submit(r.Context(), attemptID, dto.Answers)
	if err != nil {
		h.writeError(w, r, err, "Failed to submit attempt")
		return
	}

	config.JSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	attemptID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid attempt id", http.StatusBadRequest)
		return
	}

	a, err := h.service.Get(r.Context(), attemptID)
	if err != nil {
		h.writeError(w, r, err, "Failed to load attempt")
		return
	}

	config.JSON(w, http.StatusOK, a)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.service.ListMine(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to list attempts")
		return
	}

	config.JSON(w, http.StatusOK, attempts)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ErrAttemptNotFound):
		http.Error(w, "attempt not found or already completed", http.StatusNotFound)
	case errors.Is(err, ErrQuizNotFound):
		http.Error(w, "quiz not found", http.StatusNotFound)
	case errors.Is(err, ErrQuestionNotFound):
		http.Error(w, "question not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidAnswer):
		http.Error(w, "invalid answer value", http.StatusBadRequest)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		config.WithContext(r.Context()).WithError(err).Error(msg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
