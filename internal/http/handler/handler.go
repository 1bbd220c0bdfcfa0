package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"quizapi/internal/http/response"
	"quizapi/internal/repository"
	"quizapi/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads and validates a request body. On failure it writes
// the error response itself and reports false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", details)
		return false
	}
	return true
}

// decodeBestEffort reads an optional body, tolerating absent or
// malformed input.
func decodeBestEffort(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func urlParamUint(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

func urlParamInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}
	return v, true
}

func pageRequest(r *http.Request) repository.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return repository.PageRequest{Page: page, PageSize: size}
}

// writeServiceError maps the service and repository sentinel errors
// onto the wire error taxonomy. Anything unrecognized becomes a 500
// without leaking the underlying error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTokenKind):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidTokenKind.Error(), nil)
	case errors.Is(err, service.ErrInvalidToken):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", service.ErrInvalidToken.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", service.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, service.ErrTooManyLoginAttempts):
		response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", service.ErrTooManyLoginAttempts.Error(), nil)
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusBadRequest, "EMAIL_TAKEN", service.ErrEmailTaken.Error(), nil)
	case errors.Is(err, service.ErrAccountDisabled):
		response.Error(w, r, http.StatusUnauthorized, "ACCOUNT_DISABLED", service.ErrAccountDisabled.Error(), nil)
	case errors.Is(err, service.ErrPasswordMismatch):
		response.Error(w, r, http.StatusBadRequest, "PASSWORD_MISMATCH", service.ErrPasswordMismatch.Error(), nil)
	case errors.Is(err, service.ErrNoUpdates):
		response.Error(w, r, http.StatusBadRequest, "NO_UPDATES", service.ErrNoUpdates.Error(), nil)
	case errors.Is(err, service.ErrInvalidQuestion):
		response.Error(w, r, http.StatusBadRequest, "INVALID_QUESTION", err.Error(), nil)
	case errors.Is(err, service.ErrQuestionIndexOutOfRange):
		response.Error(w, r, http.StatusNotFound, "QUESTION_NOT_FOUND", service.ErrQuestionIndexOutOfRange.Error(), nil)
	case errors.Is(err, repository.ErrQuizNotFound):
		response.Error(w, r, http.StatusNotFound, "QUIZ_NOT_FOUND", repository.ErrQuizNotFound.Error(), nil)
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", repository.ErrUserNotFound.Error(), nil)
	case errors.Is(err, repository.ErrAttemptNotFound):
		response.Error(w, r, http.StatusNotFound, "ATTEMPT_NOT_FOUND", repository.ErrAttemptNotFound.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
