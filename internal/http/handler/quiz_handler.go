package handler

import (
	"net/http"

	"quizapi/internal/http/middleware"
	"quizapi/internal/http/response"
	"quizapi/internal/service"
)

type QuizHandler struct {
	quizzes *service.QuizService
}

func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.quizzes.List(pageRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]quizSummaryView, 0, len(result.Items))
	for i := range result.Items {
		views = append(views, newQuizSummaryView(&result.Items[i]))
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"quizzes":     views,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// Get returns the quiz with its questions. Admins see the correct
// flags; everyone else gets the play view with answers stripped.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	quiz, err := h.quizzes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user, ok := middleware.UserFromContext(r.Context()); ok && user.IsAdmin {
		response.JSON(w, r, http.StatusOK, newQuizAdminView(quiz))
		return
	}
	response.JSON(w, r, http.StatusOK, newQuizPlayerView(quiz))
}

func (h *QuizHandler) Questions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	quiz, err := h.quizzes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newQuizPlayerView(quiz).Questions)
}
