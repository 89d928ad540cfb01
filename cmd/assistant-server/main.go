package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	cli "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"voice-assistant/internal/config"
	"voice-assistant/internal/db"
	"voice-assistant/internal/logger"
	"voice-assistant/internal/server"
	"voice-assistant/internal/services"
	"voice-assistant/internal/speech"
	"voice-assistant/internal/store"
)

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	port := cli.StringP("port", "p", "", "Listen port (overrides PORT)")
	cli.Parse()

	cfg := config.Load(*envFile)
	if *port != "" {
		cfg.Port = *port
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("assistant server stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient, err := services.NewHTTPClient(cfg.SOCKSProxy, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("building http client: %w", err)
	}

	prompt, err := services.LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		return fmt.Errorf("loading prompt: %w", err)
	}
	llm := services.NewLLMClient(httpClient, cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.Model, prompt, log)

	chats, err := openChatStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := chats.Close(closeCtx); err != nil {
			log.WithError(err).Warn("closing chat store")
		}
	}()

	s := server.NewServer(server.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		Store:         chats,
		Completer:     llm,
		TTS:           speech.NewElevenLabs(httpClient, cfg.ElevenAPIKey, cfg.ElevenVoiceID, cfg.ElevenModel),
		ChatTimeout:   cfg.HTTPTimeout,
		Log:           log,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", addr).Info("assistant server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openChatStore picks MongoDB, then PostgreSQL, then memory.
func openChatStore(ctx context.Context, cfg config.Config, log *logrus.Logger) (store.ChatStore, error) {
	switch {
	case cfg.MongoURI != "":
		ms, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("mongodb connected")
		return ms, nil
	case cfg.DatabaseURL != "":
		database, err := db.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("database connection established")
		if err := database.RunMigrations(db.Migrations()); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store.NewDatabaseStore(database), nil
	default:
		log.Warn("MONGODB_URI and DB_URL not provided, chat history is kept in memory only")
		return store.NewMemoryStore(cfg.HistoryLimit), nil
	}
}
