package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/config"
)

type Handler struct {
	service QuizService
}

func NewHandler(s QuizService) *Handler {
	return &Handler{service: s}
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Quiz      Quiz        `json:"quiz"`
		Questions []*Question `json:"questions"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Error("Invalid request body for quiz creation")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ownerID, err := claims.SubjectID()
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	payload.Quiz.UserID = ownerID

	if payload.Quiz.ID == uuid.Nil {
		payload.Quiz.ID = uuid.New()
	}
	if payload.Quiz.CategoryID == uuid.Nil {
		http.Error(w, "invalid category_id", http.StatusBadRequest)
		return
	}

	for _, q := range payload.Questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.QuizID = payload.Quiz.ID
		for i := range q.Options {
			if q.Options[i].ID == uuid.Nil {
				q.Options[i].ID = uuid.New()
			}
			q.Options[i].QuestionID = q.ID
		}
	}

	if err := h.service.CreateQuizWithQuestions(r.Context(), &payload.Quiz, payload.Questions); err != nil {
		h.writeError(w, r, err, "Failed to create quiz")
		return
	}

	config.JSON(w, http.StatusCreated, map[string]interface{}{
		"quiz":      payload.Quiz,
		"questions": payload.Questions,
	})
}

func (h *Handler) GetQuizWithQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.service.GetQuizWithQuestions(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err, "Failed to load quiz")
		return
	}

	config.JSON(w, http.StatusOK, dto)
}

func (h *Handler) GetTakeView(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	view, err := h.service.GetTakeView(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err, "Failed to load quiz for taking")
		return
	}

	config.JSON(w, http.StatusOK, view)
}

func (h *Handler) ListPublished(w http.ResponseWriter, r *http.Request) {
	filter := CatalogFilter{Limit: 20}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		filter.CategoryID = &id
	}
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		d := Difficulty(raw)
		if !d.IsValid() {
			http.Error(w, "invalid difficulty", http.StatusBadRequest)
			return
		}
		filter.Difficulty = &d
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	quizzes, err := h.service.ListPublished(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err, "Failed to list published quizzes")
		return
	}

	config.JSON(w, http.StatusOK, quizzes)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListMine(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to list quizzes")
		return
	}

	config.JSON(w, http.StatusOK, quizzes)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to list all quizzes")
		return
	}

	config.JSON(w, http.StatusOK, quizzes)
}

func (h *Handler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateQuizDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body for quiz update")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), quizID, dto)
	if err != nil {
		h.writeError(w, r, err, "Failed to update quiz")
		return
	}

	config.JSON(w, http.StatusOK, quiz)
}

func (h *Handler) PublishQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	quiz, err := h.service.PublishQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, r, err, "Failed to publish quiz")
		return
	}

	config.JSON(w, http.StatusOK, quiz)
}

func (h *Handler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteQuiz(r.Context(), quizID); err != nil {
		h.writeError(w, r, err, "Failed to delete quiz")
		return
	}

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "quiz deleted successfully",
	})
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	quizID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var question Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		log.WithError(err).Error("Invalid request body for question")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	for i := range question.Options {
		if question.Options[i].ID == uuid.Nil {
			question.Options[i].ID = uuid.New()
		}
		question.Options[i].QuestionID = question.ID
	}

	if err := h.service.AddQuestionToQuiz(r.Context(), quizID, &question); err != nil {
		h.writeError(w, r, err, "Failed to add question")
		return
	}

	config.JSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "question added successfully",
		"question": question,
	})
}

func (h *Handler) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseIDParam(w, r, "questionID")
	if !ok {
		return
	}

	if err := h.service.RemoveQuestion(r.Context(), questionID); err != nil {
		h.writeError(w, r, err, "Failed to remove question")
		return
	}

	config.JSON(w, http.StatusOK, map[string]string{
		"message": "question removed successfully",
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ErrQuizNotFound):
		http.Error(w, "quiz not found", http.StatusNotFound)
	case errors.Is(err, ErrQuestionNotFound):
		http.Error(w, "question not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidQuiz), errors.Is(err, ErrInvalidQuestion):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		config.WithContext(r.Context()).WithError(err).Error(msg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		http.Error(w, name+" required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
