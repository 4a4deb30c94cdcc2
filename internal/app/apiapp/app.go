package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/infra/httpclient"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/jobs/resync"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/jobs/sweep"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/remote/accountapi"
	redrepo "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/repo/redis"
	achsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/achievements"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	entsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	ratesvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/rate"
	reconcilesvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/reconcile"
	tariffsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tariffs"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
)

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	server       *http.Server
	redis        *goredis.Client
	achievements *achsvc.Service
	httpRouter   http.Handler

	jobsCancel context.CancelFunc
	jobsDone   chan struct{}
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var redisClient *goredis.Client
	var rateLimiter *ratesvc.Limiter
	if client, err := redrepo.NewClient(cfg.Redis); err != nil {
		log.Warn("redis init failed, attempt rate limiting disabled", zap.Error(err))
	} else {
		redisClient = client
		rateLimiter = ratesvc.NewLimiter(
			redrepo.NewRateRepo(redisClient),
			cfg.Metering.RateLimits.AttemptsPerMinute,
			cfg.Metering.RateLimits.AttemptsPer10Sec,
		)
	}

	accountClient := accountapi.NewClient(
		cfg.AccountAPI.BaseURL,
		httpclient.NewWithAuth(cfg.AccountAPI.Timeout, cfg.AccountAPI.Token),
	)

	catalog := tariffsvc.New(cfg.Metering)
	engine := entsvc.NewEngine(catalog)

	retryPolicy := reconcilesvc.RetryPolicy{
		MaxAttempts:  cfg.Metering.Retry.MaxAttempts,
		InitialDelay: cfg.Metering.Retry.InitialDelay,
		MaxDelay:     cfg.Metering.Retry.MaxDelay,
	}
	sessions := session.NewManager(accountClient, retryPolicy, log)

	trackerService := tracker.NewService(engine, accountClient, log)
	achievementService := achsvc.NewService(achsvc.NewLogSink(log), log)
	trackerService.AttachAchievements(achievementService)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, cfg.Auth)

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		TrackerService: trackerService,
		Sessions:       sessions,
		RateLimiter:    rateLimiter,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	jobsCtx, jobsCancel := context.WithCancel(context.Background())
	jobsDone := make(chan struct{})
	sweepJob := sweep.New(sessions, cfg.Metering.SessionTTL, cfg.Metering.SessionSweep, log)
	resyncJob := resync.New(sessions, trackerService, cfg.Metering.ReconcileInterval, log)
	go func() {
		defer close(jobsDone)
		go sweepJob.Run(jobsCtx)
		resyncJob.Run(jobsCtx)
	}()

	return &App{
		cfg:          cfg,
		logger:       log,
		server:       server,
		redis:        redisClient,
		achievements: achievementService,
		httpRouter:   r,
		jobsCancel:   jobsCancel,
		jobsDone:     jobsDone,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}

	a.jobsCancel()
	select {
	case <-a.jobsDone:
	case <-ctx.Done():
	}

	if a.achievements != nil {
		a.achievements.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
