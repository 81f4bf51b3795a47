package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"notes-server/internal/config"
	"notes-server/internal/handler"
	"notes-server/internal/logger"
	"notes-server/internal/middleware"
	"notes-server/internal/repository"
	"notes-server/internal/repository/memory"
	"notes-server/internal/service"
	"notes-server/pkg/hash"
	"notes-server/pkg/jwt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Server.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, notes, closeStore, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	signer := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Expiration)
	authService := service.NewAuthService(users, hash.NewBcrypt(cfg.Security.BcryptCost), signer)
	noteService := service.NewNoteService(notes)
	resolver := service.NewIdentityResolver(users, signer)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	router := handler.NewRouter(
		handler.NewAuthHandler(authService, log),
		handler.NewNoteHandler(noteService, log),
		handler.RouterOptions{
			Log:            log,
			Resolver:       resolver,
			Limiter:        limiter,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting notes-server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.Env),
			zap.String("driver", cfg.Database.Driver),
			zap.String("version", Version),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// openRepositories returns the repositories for the configured driver and a
// func that releases the underlying store.
func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.UserRepository, repository.NoteRepository, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using the in-memory store; data is lost on exit")
		return memory.NewUserRepository(), memory.NewNoteRepository(), func() {}, nil
	}

	store, err := repository.OpenCouch(ctx, cfg.Database.URL(), cfg.Database.Name)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Setup(ctx); err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	log.Info("connected to CouchDB",
		zap.String("host", cfg.Database.Host),
		zap.String("port", cfg.Database.Port),
		zap.String("database", store.Name()),
	)

	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close CouchDB client", zap.Error(err))
		}
	}
	return repository.NewUserRepository(store), repository.NewNoteRepository(store), closeStore, nil
}
