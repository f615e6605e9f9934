package main

import (
	"chat-collect/archive"
	"chat-collect/auth"
	"chat-collect/domain"
	"chat-collect/httpapi"
	"chat-collect/internal"
	"chat-collect/moderation"
	"chat-collect/observability"
	"chat-collect/repositories"
	"chat-collect/runtime"
	"chat-collect/runtime/workers"
	"chat-collect/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Deferred closes run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return exitConfig, fmt.Errorf("invalid config: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	loc, err := config.Location()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Archive (dialog files & Bluge index)
	var index *archive.Index
	if config.BlugeFilepath != "" {
		index, err = archive.OpenIndex(config.BlugeFilepath, logger)
		if err != nil {
			return exitRuntime, fmt.Errorf("failed to open bluge index: %w", err)
		}
		defer func() {
			logger.Info("Closing Bluge...")
			_ = index.Close()
		}()
	}
	archiver := archive.NewArchiver(archive.NewDialogWriter(config.DialogsDir, loc), index, logger)

	// 4. Lobby
	repository := repositories.NewChatroomRepository(db, logger)
	monitor := observability.NewMonitoringManager(logger)
	dialogs := make(chan domain.Dialog, config.ArchiveBuffer)

	lobby := runtime.NewLobby(logger, runtime.Config{
		ExperimentID:    config.ExperimentID,
		MsgCountLow:     config.MsgCountLow,
		MsgCountHigh:    config.MsgCountHigh,
		PollInterval:    config.PollInterval,
		PollTimeout:     config.PollTimeout,
		DelayForPartner: config.DelayForPartner,
		UserTimeout:     config.UserTimeout,
		ReleasedLimit:   config.ReleasedLimit,
	}, repository, monitor).WithArchive(dialogs)

	if len(config.MatchAttributes) > 0 {
		lobby.WithMatcher(domain.AttributeMatcher{Keys: config.MatchAttributes})
	}
	if config.CensoredWordsFile != "" {
		moderator, err := loadModerator(config.CensoredWordsFile, charReplacement, logger)
		if err != nil {
			return exitConfig, err
		}
		lobby.WithCensor(moderator)
	}
	if err := lobby.LoadReleased(); err != nil {
		return exitRuntime, err
	}

	// 5. Background workers
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewReaperWorker(logger, lobby, config.ReapInterval),
		workers.NewArchiveWorker(logger, dialogs, archiver, config.ShutdownTimeout),
		workers.NewStatsWorker(logger, monitor, config.MetricInterval),
	)
	// Workers outlive the signal: they stop once the HTTP server is down
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	supervised := make(chan struct{})
	go func() {
		sup.Run(workersCtx)
		close(supervised)
	}()

	// 6. HTTP Server Setup
	var searcher services.Searcher
	if index != nil {
		searcher = index
	}
	service := services.NewChatService(lobby, repository, searcher, monitor)
	httpConfig := httpapi.Config{
		WebContext:        config.WebContext,
		AdminUser:         config.AdminUser,
		AdminPasswordHash: config.AdminPasswordHash,
		Location:          loc,
		Store:             internal.NewInspector(db, logger, EventMapper),
	}
	cookiePath := httpConfig.Prefix()
	if cookiePath == "" {
		cookiePath = "/"
	}
	sessions := auth.NewSessions(
		auth.NewSessionTokens(config.SessionSecret, config.SessionDuration),
		cookiePath, config.CookieSecure, logger)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := newHTTPServer(address, httpapi.NewRouter(logger, httpConfig, service, sessions), config.PollTimeout)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "context", httpConfig.Prefix(), "experiment", config.ExperimentID)
		if config.AdminPasswordHash == "" {
			logger.Warn("Admin pages are not protected, set ADMIN_PASSWORD_HASH")
		}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdown(logger, server, stopWorkers, supervised, config.ShutdownTimeout)
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

func loadModerator(path string, replacement rune, logger *slog.Logger) (*moderation.Moderator, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("censored words: %w", err)
	}
	defer file.Close()

	words, err := moderation.LoadWords(file)
	if err != nil {
		return nil, fmt.Errorf("censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(words, replacement, logger)
	if err != nil {
		return nil, fmt.Errorf("censored words %s: %w", path, err)
	}
	logger.Info("Censored words loaded", "file", path, "count", len(words))
	return moderator, nil
}
