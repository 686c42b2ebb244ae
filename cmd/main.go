package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"newsroom/auth"
	"newsroom/chat"
	"newsroom/httpapi"
	"newsroom/moderation"
	"newsroom/notify"
	"newsroom/repositories"
	"newsroom/search"
	"newsroom/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle so
// that every defer fires before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & full-text index
	postRepository, err := repositories.NewPostRepository(db, log)
	if err != nil {
		return fmt.Errorf("post repository: %w", err)
	}
	defer func() { _ = postRepository.Close() }()

	commentRepository, err := repositories.NewCommentRepository(db, log, config.LimitComments)
	if err != nil {
		return fmt.Errorf("comment repository: %w", err)
	}
	defer func() { _ = commentRepository.Close() }()

	userRepository, err := repositories.NewUserRepository(db, log)
	if err != nil {
		return fmt.Errorf("user repository: %w", err)
	}
	defer func() { _ = userRepository.Close() }()

	featureRepository, err := repositories.NewFeatureRequestRepository(db, log)
	if err != nil {
		return fmt.Errorf("feature request repository: %w", err)
	}
	defer func() { _ = featureRepository.Close() }()

	index, err := search.Open(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index: %w", err)
	}
	defer func() { _ = index.Close() }()

	// 4. Moderation
	wordlists, err := moderation.LoadWordlists()
	if err != nil {
		return fmt.Errorf("wordlists: %w", err)
	}
	censorChar := '*'
	if config.CensorReplacement != "" {
		censorChar = []rune(config.CensorReplacement)[0]
	}
	moderator, err := moderation.NewModerator(wordlists.Words, censorChar, log)
	if err != nil {
		return fmt.Errorf("moderator: %w", err)
	}

	// 5. Core services
	notifier := notify.NewNotifier(log, config.KeepAliveInterval)
	contentService := services.NewContentService(log, postRepository, notifier, index)
	hub := chat.NewHub(log, contentService, commentRepository, moderator)

	// 6. HTTP server
	secret := []byte(config.JWTSecret)
	verifier := auth.NewVerifier(userRepository, secret)
	handler := httpapi.NewHandler(log, contentService, commentRepository, userRepository,
		featureRepository, notifier, hub, verifier, secret, config.TokenDuration)
	router := httpapi.NewRouter(handler)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:        address,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
