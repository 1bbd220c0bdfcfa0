package handler

import (
	"net/http"

	"quizapi/internal/http/middleware"
	"quizapi/internal/http/response"
	"quizapi/internal/observability"
	"quizapi/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type tokenPairView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

type loginView struct {
	tokenPairView
	User userView `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.registered", "user_id", user.ID)
	response.JSON(w, r, http.StatusCreated, newUserView(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password, req.Email+"|"+r.RemoteAddr)
	if err != nil {
		observability.RecordAuthLogin("failure")
		writeServiceError(w, r, err)
		return
	}
	observability.RecordAuthLogin("success")
	observability.Audit(r, "user.logged_in", "user_id", result.User.ID)
	response.JSON(w, r, http.StatusOK, loginView{
		tokenPairView: tokenPairView{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			TokenType:    "bearer",
		},
		User: newUserView(result.User),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	access, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		observability.RecordAuthRefresh("failure")
		writeServiceError(w, r, err)
		return
	}
	observability.RecordAuthRefresh("success")
	response.JSON(w, r, http.StatusOK, tokenPairView{AccessToken: access, TokenType: "bearer"})
}

// Logout revokes whatever tokens the client sends and reports success
// regardless; there is no failure mode worth telling the caller about.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	_ = decodeBestEffort(r, &req)
	h.auth.Logout(req.AccessToken, req.RefreshToken)
	observability.RecordAuthLogout("success")
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
		return
	}
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.password_changed", "user_id", user.ID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password changed"})
}
