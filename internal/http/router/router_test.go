package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quizapi/internal/domain"
	"quizapi/internal/http/handler"
	"quizapi/internal/repository"
	"quizapi/internal/security"
	"quizapi/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Quiz{}, &domain.Attempt{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepository(db)
	quizzes := repository.NewQuizRepository(db)
	attempts := repository.NewAttemptRepository(db)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtMgr := security.NewJWTManager("quizapi-test", "0123456789abcdef0123456789abcdef")
	tokens := service.NewTokenService(jwtMgr, security.NewRevocationList(), time.Minute, time.Hour)
	authSvc := service.NewAuthService(users, tokens, nil, log)
	quizSvc := service.NewQuizService(quizzes, service.NewInMemoryMissCacheStore(), time.Minute, log)
	attemptSvc := service.NewAttemptService(attempts, quizSvc, users, log)
	userSvc := service.NewUserService(users, attempts, quizzes)

	h := NewRouter(Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		UserHandler:      handler.NewUserHandler(userSvc, attemptSvc),
		QuizHandler:      handler.NewQuizHandler(quizSvc),
		AttemptHandler:   handler.NewAttemptHandler(attemptSvc),
		AdminHandler:     handler.NewAdminHandler(quizSvc, userSvc),
		Tokens:           tokens,
		Users:            users,
		APIRateLimitRPM:  10000,
		AuthRateLimitRPM: 10000,
	})
	return &testAPI{t: t, handler: h, db: db}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:9999"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (a *testAPI) seedQuiz(title string, questions ...domain.Question) *domain.Quiz {
	a.t.Helper()
	quiz := &domain.Quiz{Title: title, Questions: datatypes.NewJSONType(questions)}
	if err := a.db.Create(quiz).Error; err != nil {
		a.t.Fatalf("seed quiz: %v", err)
	}
	return quiz
}

func (a *testAPI) promoteToAdmin(email string) {
	a.t.Helper()
	if err := a.db.Model(&domain.User{}).Where("email = ?", email).Update("is_admin", true).Error; err != nil {
		a.t.Fatalf("promote: %v", err)
	}
}

func (a *testAPI) register(email, password string) {
	a.t.Helper()
	rec, _ := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("register: status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func (a *testAPI) login(email, password string) (access, refresh string) {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		a.t.Fatalf("login: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		User         struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		a.t.Fatalf("decode login: %v", err)
	}
	if data.TokenType != "bearer" || data.User.Email != email {
		a.t.Fatalf("login payload = %+v", data)
	}
	return data.AccessToken, data.RefreshToken
}

func twoOptionQuestion(correct int) domain.Question {
	return domain.Question{
		Text: "pick one",
		Options: []domain.Option{
			{Text: "a", IsCorrect: correct == 0},
			{Text: "b", IsCorrect: correct == 1},
		},
	}
}

func TestFullQuizFlow(t *testing.T) {
	api := newTestAPI(t)
	quiz := api.seedQuiz("Flow Quiz", twoOptionQuestion(0), twoOptionQuestion(1))

	api.register("player@example.com", "password123")
	access, refresh := api.login("player@example.com", "password123")

	// Submit an all-correct attempt.
	rec, env := api.do(http.MethodPost, "/api/v1/attempts", access, map[string]any{
		"quiz_id": quiz.ID,
		"answers": []map[string]any{
			{"question_index": 0, "selected_options": []int{0}},
			{"question_index": 1, "selected_options": []int{1}},
		},
		"time_taken_seconds": 42,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var attempt struct {
		Score        float64 `json:"score"`
		CorrectCount int     `json:"correct_count"`
	}
	if err := json.Unmarshal(env.Data, &attempt); err != nil {
		t.Fatalf("decode attempt: %v", err)
	}
	if attempt.Score != 100.00 || attempt.CorrectCount != 2 {
		t.Fatalf("attempt = %+v", attempt)
	}

	// Aggregates show up on the profile.
	rec, env = api.do(http.MethodGet, "/api/v1/me/", access, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d", rec.Code)
	}
	var me struct {
		TotalAttempts int     `json:"total_attempts"`
		AverageScore  float64 `json:"average_score"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.TotalAttempts != 1 || me.AverageScore != 100.00 {
		t.Fatalf("me = %+v", me)
	}

	// Stats and dashboard respond for the active user.
	if rec, _ := api.do(http.MethodGet, "/api/v1/me/stats", access, nil); rec.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", rec.Code)
	}
	if rec, _ := api.do(http.MethodGet, "/api/v1/me/dashboard", access, nil); rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d", rec.Code)
	}

	// Logout, then the access token stops working.
	rec, _ = api.do(http.MethodPost, "/api/v1/auth/logout", "", map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}
	rec, _ = api.do(http.MethodGet, "/api/v1/me/", access, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: status = %d, want 401", rec.Code)
	}
}

func TestQuizListingHidesAnswers(t *testing.T) {
	api := newTestAPI(t)
	quiz := api.seedQuiz("Hidden Answers", twoOptionQuestion(0))

	rec, _ := api.do(http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d", quiz.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get quiz: status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "is_correct") {
		t.Fatal("player view must not expose correct answers")
	}

	api.register("admin@example.com", "password123")
	api.promoteToAdmin("admin@example.com")
	adminToken, _ := api.login("admin@example.com", "password123")

	rec, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d", quiz.ID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin get: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "is_correct") {
		t.Fatal("admin view must include correct answers")
	}
}

func TestAdminSurfaceRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	api.register("user@example.com", "password123")
	access, _ := api.login("user@example.com", "password123")

	quizBody := map[string]any{"title": "Created"}
	rec, _ := api.do(http.MethodPost, "/api/v1/admin/quizzes", access, quizBody)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: status = %d, want 403", rec.Code)
	}

	api.register("admin@example.com", "password123")
	api.promoteToAdmin("admin@example.com")
	adminToken, _ := api.login("admin@example.com", "password123")

	rec, env := api.do(http.MethodPost, "/api/v1/admin/quizzes", adminToken, quizBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Question ops against the new quiz; out-of-range index is a 404.
	questionBody := map[string]any{
		"text": "q",
		"options": []map[string]any{
			{"text": "a", "is_correct": true},
			{"text": "b"},
		},
	}
	rec, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/quizzes/%d/questions", created.ID), adminToken, questionBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add question: status = %d body = %s", rec.Code, rec.Body.String())
	}
	rec, _ = api.do(http.MethodPut, fmt.Sprintf("/api/v1/admin/quizzes/%d/questions/5", created.ID), adminToken, questionBody)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("out-of-range update: status = %d, want 404", rec.Code)
	}
	rec, _ = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/admin/quizzes/%d/questions/0", created.ID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete question: status = %d", rec.Code)
	}
}

func TestDeactivatedAccountFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("leaver@example.com", "password123")
	access, _ := api.login("leaver@example.com", "password123")

	rec, _ := api.do(http.MethodDelete, "/api/v1/me/", access, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete me: status = %d, want 204", rec.Code)
	}

	// The still-valid access token is refused at the gate.
	rec, env := api.do(http.MethodGet, "/api/v1/me/", access, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after deactivation: status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "ACCOUNT_DISABLED" {
		t.Fatalf("error = %+v", env.Error)
	}
	rec, _ = api.do(http.MethodGet, "/api/v1/me/stats", access, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stats after deactivation: status = %d, want 401", rec.Code)
	}

	// A fresh login is refused outright.
	rec, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "leaver@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login after deactivation: status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "ACCOUNT_DISABLED" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.register("fresh@example.com", "password123")
	access, refresh := api.login("fresh@example.com", "password123")

	rec, env := api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var pair struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected a new access token")
	}

	// An access token in the refresh slot is refused with the kind message.
	rec, env = api.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": access})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong kind: status = %d, want 401", rec.Code)
	}
	if env.Error == nil || !strings.Contains(env.Error.Message, "invalid token type") {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	if rec, _ := api.do(http.MethodGet, "/health/live", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("live: status = %d", rec.Code)
	}
	if rec, _ := api.do(http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: status = %d", rec.Code)
	}
}

func TestValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"name":     "X",
		"password": "short",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("error = %+v", env.Error)
	}
}
