package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tenant-portal/internal/advisor"
	"tenant-portal/internal/auth"
	"tenant-portal/internal/chat"
	"tenant-portal/internal/classifier"
	"tenant-portal/internal/config"
	"tenant-portal/internal/db"
	"tenant-portal/internal/handlers"
	"tenant-portal/internal/identity"
	"tenant-portal/internal/observability"
	"tenant-portal/internal/photos"
	"tenant-portal/internal/rabbitmq"
	"tenant-portal/internal/repositories"
	"tenant-portal/internal/telemetry"
	"tenant-portal/internal/ws"
)

const sessionSweepInterval = 10 * time.Minute

// ServeCmd migrates the database and runs the HTTP server.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment, logger)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DSN)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(database, logger); err != nil {
		return err
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	logger.Infow("event publisher ready", "mode", rabbitmq.PublisherMode(publisher), "noop_reason", rabbitmq.PublisherNoopReason(publisher))
	emitter := telemetry.NewEmitter(publisher, cfg.ServiceName, cfg.Environment, logger)

	gen, err := advisor.NewGenerator(ctx, cfg.Advisor)
	if err != nil {
		// issues are still recorded, with fallback advice
		logger.Warnw("text generator unavailable", "provider", cfg.Advisor.Provider, "error", err)
		gen = nil
	}
	adv := advisor.New(gen, cfg.Advisor.Timeout, logger)

	photoStore, err := photos.NewStore(ctx, cfg.Photos.Bucket, cfg.Photos.Credentials, logger)
	if err != nil {
		return err
	}
	defer photoStore.Close()

	users := repositories.NewUserRepo(database)
	requests := repositories.NewRequestRepo(database)
	issues := repositories.NewIssueRepo(database)
	messages := repositories.NewMessageRepo(database)
	sessions := repositories.NewSessionRepo(database)

	idClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, cfg.Identity.Timeout, logger)
	authService := auth.NewService(idClient, users, sessions, cfg.SessionTTL, logger)
	cls := classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.APIKey, cfg.Classifier.ModelID, cfg.Classifier.Timeout, logger)

	hub := ws.NewHub(logger)
	chatService := chat.NewService(users, messages, hub, cfg.ChatRetentionLimit, cfg.ChatHistoryLimit, logger)

	router := NewRouter(Routes{
		ServiceName: cfg.ServiceName,
		DebugRoutes: cfg.DebugRoutes,
		Sessions:    authService,
		Emitter:     emitter,
		Auth:        handlers.NewAuthHandler(authService, emitter, logger),
		Profile:     handlers.NewProfileHandler(users, authService, logger),
		Issues:      handlers.NewIssueHandler(issues, users, adv, cls, photoStore, emitter, logger),
		Requests:    handlers.NewRequestHandler(requests, emitter, logger),
		Dashboard:   handlers.NewDashboardHandler(users, requests, issues, logger),
		Chat:        handlers.NewChatHandler(chatService, users, logger),
		ChatWS:      ws.NewChatWebSocketHandler(hub, chatService, authService, logger),
	})

	go sweepSessions(ctx, authService, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepSessions(ctx context.Context, authService *auth.Service, logger *zap.SugaredLogger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := authService.PurgeExpired(ctx)
			if err != nil {
				logger.Warnw("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debugw("expired sessions removed", "count", n)
			}
		}
	}
}
