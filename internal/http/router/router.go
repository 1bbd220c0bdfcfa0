package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"quizapi/internal/http/handler"
	"quizapi/internal/http/middleware"
	"quizapi/internal/http/response"
	"quizapi/internal/repository"
	"quizapi/internal/service"
)

// ReadyFunc reports whether downstream dependencies are reachable.
type ReadyFunc func(r *http.Request) (bool, map[string]string)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	QuizHandler    *handler.QuizHandler
	AttemptHandler *handler.AttemptHandler
	AdminHandler   *handler.AdminHandler

	Tokens *service.TokenService
	Users  repository.UserRepository

	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	Readiness        ReadyFunc
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	requireAuth := middleware.Auth(dep.Tokens, dep.Users)
	optionalAuth := middleware.OptionalAuth(dep.Tokens, dep.Users)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": map[string]string{}})
			return
		}
		ready, checks := dep.Readiness(r)
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": checks})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
			r.Post("/logout", dep.AuthHandler.Logout)
			r.With(requireAuth, middleware.RequireActive, authLimiter).Post("/change-password", dep.AuthHandler.ChangePassword)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", dep.UserHandler.Me)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActive)
				r.Put("/", dep.UserHandler.UpdateMe)
				r.Delete("/", dep.UserHandler.DeleteMe)
				r.Get("/attempts", dep.UserHandler.MyAttempts)
				r.Get("/stats", dep.UserHandler.MyStats)
				r.Get("/dashboard", dep.UserHandler.MyDashboard)
			})
		})

		r.Route("/quizzes", func(r chi.Router) {
			r.With(optionalAuth).Get("/", dep.QuizHandler.List)
			r.With(optionalAuth).Get("/{id}", dep.QuizHandler.Get)
			r.With(requireAuth, middleware.RequireActive).Get("/{id}/questions", dep.QuizHandler.Questions)
		})

		r.With(requireAuth, middleware.RequireActive).Post("/attempts", dep.AttemptHandler.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireAdmin)
			r.Post("/quizzes", dep.AdminHandler.CreateQuiz)
			r.Put("/quizzes/{id}", dep.AdminHandler.UpdateQuiz)
			r.Delete("/quizzes/{id}", dep.AdminHandler.DeleteQuiz)
			r.Post("/quizzes/{id}/questions", dep.AdminHandler.AddQuestion)
			r.Put("/quizzes/{id}/questions/{index}", dep.AdminHandler.UpdateQuestion)
			r.Delete("/quizzes/{id}/questions/{index}", dep.AdminHandler.DeleteQuestion)
			r.Get("/users", dep.AdminHandler.ListUsers)
			r.Post("/users/{id}/activate", dep.AdminHandler.ActivateUser)
			r.Post("/users/{id}/deactivate", dep.AdminHandler.DeactivateUser)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
