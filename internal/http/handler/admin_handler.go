package handler

import (
	"net/http"

	"quizapi/internal/domain"
	"quizapi/internal/http/response"
	"quizapi/internal/observability"
	"quizapi/internal/repository"
	"quizapi/internal/service"
)

type AdminHandler struct {
	quizzes *service.QuizService
	users   *service.UserService
}

func NewAdminHandler(quizzes *service.QuizService, users *service.UserService) *AdminHandler {
	return &AdminHandler{quizzes: quizzes, users: users}
}

type optionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type questionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Options []optionRequest `json:"options" validate:"required,min=2,dive"`
	Multi   bool            `json:"multi"`
}

type quizRequest struct {
	Title            string            `json:"title" validate:"required,min=1,max=200"`
	Description      string            `json:"description" validate:"max=2000"`
	Difficulty       string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimitSeconds int               `json:"time_limit_seconds" validate:"min=0"`
	Questions        []questionRequest `json:"questions" validate:"omitempty,dive"`
}

func (q questionRequest) toDomain() domain.Question {
	opts := make([]domain.Option, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, domain.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return domain.Question{Text: q.Text, Options: opts, Multi: q.Multi}
}

func (h *AdminHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	questions := make([]domain.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, q.toDomain())
	}
	quiz, err := h.quizzes.Create(r.Context(), service.QuizInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
	}, questions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "quiz.created", "quiz_id", quiz.ID)
	response.JSON(w, r, http.StatusCreated, newQuizAdminView(quiz))
}

func (h *AdminHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	var req quizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), id, service.QuizInput{
		Title:            req.Title,
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "quiz.updated", "quiz_id", quiz.ID)
	response.JSON(w, r, http.StatusOK, newQuizAdminView(quiz))
}

func (h *AdminHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	if err := h.quizzes.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "quiz.deleted", "quiz_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.AddQuestion(r.Context(), id, req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, newQuizAdminView(quiz))
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	index, ok := urlParamInt(r, "index")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUESTION_NOT_FOUND", "question index out of bounds", nil)
		return
	}
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.UpdateQuestion(r.Context(), id, index, req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newQuizAdminView(quiz))
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", "quiz not found", nil)
		return
	}
	index, ok := urlParamInt(r, "index")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "QUESTION_NOT_FOUND", "question index out of bounds", nil)
		return
	}
	quiz, err := h.quizzes.DeleteQuestion(r.Context(), id, index)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newQuizAdminView(quiz))
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := repository.UserListQuery{
		PageRequest: pageRequest(r),
		Email:       r.URL.Query().Get("email"),
		Status:      r.URL.Query().Get("status"),
	}
	result, err := h.users.ListUsers(query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"users":       newUserViews(result.Items),
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

func (h *AdminHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true, "user.activated")
}

func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false, "user.deactivated")
}

func (h *AdminHandler) setUserActive(w http.ResponseWriter, r *http.Request, active bool, event string) {
	id, ok := urlParamUint(r, "id")
	if !ok {
		response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		return
	}
	var err error
	if active {
		err = h.users.SetActive(id, true)
	} else {
		err = h.users.Deactivate(id)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, event, "user_id", id)
	response.JSON(w, r, http.StatusOK, map[string]any{"id": id, "is_active": active})
}
