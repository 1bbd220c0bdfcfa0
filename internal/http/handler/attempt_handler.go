package handler

import (
	"net/http"

	"quizapi/internal/domain"
	"quizapi/internal/http/middleware"
	"quizapi/internal/http/response"
	"quizapi/internal/observability"
	"quizapi/internal/service"
)

type AttemptHandler struct {
	attempts *service.AttemptService
}

func NewAttemptHandler(attempts *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

type submitAnswer struct {
	QuestionIndex   int   `json:"question_index" validate:"min=0"`
	SelectedOptions []int `json:"selected_options" validate:"required"`
}

type submitAttemptRequest struct {
	QuizID           uint           `json:"quiz_id" validate:"required"`
	Answers          []submitAnswer `json:"answers" validate:"required,dive"`
	TimeTakenSeconds int            `json:"time_taken_seconds" validate:"min=0"`
}

func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	var req submitAttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{
			QuestionIndex:   a.QuestionIndex,
			SelectedOptions: a.SelectedOptions,
		})
	}

	attempt, err := h.attempts.Submit(r.Context(), user, req.QuizID, answers, req.TimeTakenSeconds)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "attempt.submitted", "user_id", user.ID, "quiz_id", req.QuizID, "attempt_id", attempt.ID)
	response.JSON(w, r, http.StatusCreated, newAttemptView(attempt))
}
