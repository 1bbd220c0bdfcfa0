package handler

import (
	"net/http"

	"quizapi/internal/http/middleware"
	"quizapi/internal/http/response"
	"quizapi/internal/observability"
	"quizapi/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	attempts *service.AttemptService
}

func NewUserHandler(users *service.UserService, attempts *service.AttemptService) *UserHandler {
	return &UserHandler{users: users, attempts: attempts}
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	response.JSON(w, r, http.StatusOK, newUserView(user))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	updated, err := h.users.UpdateProfile(user.ID, service.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newUserView(updated))
}

// DeleteMe deactivates the account rather than removing it.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	if err := h.users.Deactivate(user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.deactivated", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) MyAttempts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	attempts, err := h.attempts.ListByUser(user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, newAttemptViews(attempts))
}

func (h *UserHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	stats, err := h.users.Stats(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}

func (h *UserHandler) MyDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	dashboard, err := h.users.Dashboard(user)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, dashboard)
}
