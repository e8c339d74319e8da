// Package server initializes and runs the credkeeper server: it opens the
// user store, wires the credential service and its collaborators, and runs
// the HTTP endpoint until shutdown.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"credkeeper/internal/logging"
	"credkeeper/internal/server/auth"
	"credkeeper/internal/server/config"
	"credkeeper/internal/server/credentials"
	"credkeeper/internal/server/httpapi"
	"credkeeper/internal/server/notification"
	"credkeeper/internal/server/ratelimit"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	httpServer  *httpapi.Server
	closeStore  func() error
	redisClient *redis.Client
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	hasher := auth.NewHasher(cfg.BcryptCost)
	if err := hasher.SelfTest(); err != nil {
		// a broken hashing backend must never accept registrations
		return nil, err
	}

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sink notification.Sink
	if cfg.SMTPAddr != "" {
		sink = notification.NewSMTPSink(cfg, logger)
	} else {
		logger.Warn(ctx, "no SMTP server configured, reset emails are logged only")
		sink = notification.NewLogSink(logger)
	}

	var redisClient *redis.Client
	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter = ratelimit.New(redisClient, cfg.RateLimitPerMinute, logger)
	}

	service := credentials.NewService(
		repo,
		hasher,
		auth.NewTokenIssuer(cfg),
		auth.NewResetTokenManager(cfg.ResetTokenTTL),
		sink,
		cfg,
		logger,
	)

	return &App{
		config:      cfg,
		logger:      logger,
		httpServer:  httpapi.NewServer(cfg, service, limiter, logger),
		closeStore:  closeStore,
		redisClient: redisClient,
	}, nil
}

// Run serves until the context is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	app.logger.Info(ctx, "starting app...")

	err := app.httpServer.Run(ctx)

	if closeErr := app.closeStore(); closeErr != nil {
		app.logger.Error(ctx, "closing store", "error", closeErr.Error())
	}
	if app.redisClient != nil {
		if closeErr := app.redisClient.Close(); closeErr != nil {
			app.logger.Error(ctx, "closing redis client", "error", closeErr.Error())
		}
	}

	return err
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
