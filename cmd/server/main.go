package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/docuflow/go-auth-service/auth"
	"github.com/docuflow/go-auth-service/cookies"
	"github.com/docuflow/go-auth-service/credentials"
	"github.com/docuflow/go-auth-service/email"
	"github.com/docuflow/go-auth-service/internal/config"
	"github.com/docuflow/go-auth-service/server"
	"github.com/docuflow/go-auth-service/sessions"
	"github.com/docuflow/go-auth-service/sessions/repofakes"
	"github.com/docuflow/go-auth-service/storage"
	"github.com/docuflow/go-auth-service/token"
	"github.com/docuflow/go-auth-service/users"
	"github.com/docuflow/go-auth-service/users/repofake"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running server: %s\n", err)
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	displayAppname(cfg.GetAppName())

	logger := newLogger(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo, sessionStore, err := newRepos(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("newRepos: %w", err)
	}

	codec := token.NewCodec(cfg)
	transport := cookies.NewTransport(cfg)
	provider := credentials.NewProvider(cfg)
	mailer := email.NewLogMailer(logger)

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Sessions: sessionStore},
		codec, provider, mailer, cfg, logger,
	)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	sweeper := sessions.NewSweeper(sessionStore, cfg.GetSweepInterval(), logger)
	go sweeper.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.GetPort(),
		Handler: server.New(cfg, authService, codec, transport, logger),
	}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newLogger(cfg config.EnvConfig) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
	if cfg.GetEnv() == "DEV" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

// newRepos picks the persistence layer: Postgres when DATABASE_URL is set,
// in-memory otherwise.
func newRepos(ctx context.Context, cfg config.EnvConfig, logger zerolog.Logger) (users.Repo, sessions.Store, error) {
	dsn := cfg.GetDatabaseURL()
	if dsn == "" {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory repositories")
		return repofake.NewFakeUserRepo(), repofakes.NewFakeSessionRepo(), nil
	}

	db, err := storage.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return users.NewPostgresRepo(db), sessions.NewPostgresRepo(db), nil
}

func listenAndServe(server *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
