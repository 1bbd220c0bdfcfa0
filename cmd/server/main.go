package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quizapi/internal/app"
	"quizapi/internal/config"
	"quizapi/internal/domain"
	"quizapi/internal/http/handler"
	"quizapi/internal/http/router"
	"quizapi/internal/observability"
	"quizapi/internal/repository"
	"quizapi/internal/security"
	"quizapi/internal/service"
	"quizapi/internal/tools/seed"
)

func main() {
	root := &cobra.Command{
		Use:          "quizapi",
		Short:        "Quiz management backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCommand(), seedCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample quizzes and the default admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, _, err := observability.InitLogging(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(&domain.User{}, &domain.Quiz{}, &domain.Attempt{}); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return seed.Run(db, logger)
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.InitLogging(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Quiz{}, &domain.Attempt{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var redisClient redis.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	users := repository.NewUserRepository(db)
	quizzes := repository.NewQuizRepository(db)
	attempts := repository.NewAttemptRepository(db)

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTSecret)
	revoked := security.NewRevocationList()
	tokens := service.NewTokenService(jwtMgr, revoked, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var guard service.LoginGuard = service.NewNoopLoginGuard()
	var missCache service.MissCacheStore = service.NewInMemoryMissCacheStore()
	if redisClient != nil {
		guard = service.NewRedisLoginGuard(redisClient, cfg.LoginMaxFailures, cfg.LoginFailureWindow)
		missCache = service.NewRedisMissCacheStore(redisClient, "quizapi")
	}

	authSvc := service.NewAuthService(users, tokens, guard, logger)
	quizSvc := service.NewQuizService(quizzes, missCache, cfg.QuizMissCacheTTL, logger)
	attemptSvc := service.NewAttemptService(attempts, quizSvc, users, logger)
	userSvc := service.NewUserService(users, attempts, quizzes)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		UserHandler:      handler.NewUserHandler(userSvc, attemptSvc),
		QuizHandler:      handler.NewQuizHandler(quizSvc),
		AttemptHandler:   handler.NewAttemptHandler(attemptSvc),
		AdminHandler:     handler.NewAdminHandler(quizSvc, userSvc),
		Tokens:           tokens,
		Users:            users,
		CORSOrigins:      cfg.CORSOrigins,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		Readiness:        readiness(db, redisClient),
		EnableOTelHTTP:   cfg.OTELTracesEnabled,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	application := app.New(cfg, logger, srv, runtime)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := application.Server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return application.Observability.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DatabaseTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func readiness(db *gorm.DB, redisClient redis.UniversalClient) router.ReadyFunc {
	return func(r *http.Request) (bool, map[string]string) {
		checks := map[string]string{}
		ready := true

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				checks["redis"] = err.Error()
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
		return ready, checks
	}
}
