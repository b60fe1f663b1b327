package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	clientapi "github.com/avtomarket/avtomarket/internal/client/api"
	"github.com/avtomarket/avtomarket/internal/client/auth"
	"github.com/avtomarket/avtomarket/internal/client/cars"
	"github.com/avtomarket/avtomarket/internal/client/cli"
	"github.com/avtomarket/avtomarket/internal/client/feed"
	"github.com/avtomarket/avtomarket/internal/client/iocli"
	"github.com/avtomarket/avtomarket/internal/client/storage"
	"github.com/avtomarket/avtomarket/internal/client/storage/boltdb"
	"github.com/avtomarket/avtomarket/internal/client/viewgate"
	"github.com/avtomarket/avtomarket/internal/config"
	"github.com/avtomarket/avtomarket/internal/events"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg := config.Load()

	// Глобальные флаги; переопределяют значения из окружения
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", cfg.ServerURL, "Server URL")
	realtimeURL := flag.String("realtime", cfg.RealtimeURL, "Change feed websocket URL")
	dbPath := flag.String("db", cfg.DBPath, "Path to local database")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	io := iocli.NewStdio()

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(io)
		os.Exit(1)
	}

	command := args[0]

	// Ctrl+C корректно останавливает watch
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Создаем API клиент; Bearer токен подставляется из сохраненной сессии
	apiClient := clientapi.NewClient(*serverURL)
	accessToken := ""
	if authData, err := boltStorage.GetAuth(ctx); err == nil {
		apiClient.SetAccessToken(authData.AccessToken)
		accessToken = authData.AccessToken
	} else if err != storage.ErrAuthNotFound {
		logger.Warn("failed to read stored session", "error", err)
	}

	authService := auth.NewService(apiClient, boltStorage, logger)
	bus := events.NewBus(logger)
	gate := viewgate.New(boltStorage, cfg.ViewThreshold, logger)

	// Change feed подключаем только для watch: разовым командам
	// push-обновления не нужны
	var feedSource cars.FeedSource
	var feedClient *feed.Client
	if command == "watch" {
		feedClient = feed.New(*realtimeURL, accessToken, logger)
		if err := feedClient.Connect(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to change feed: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := feedClient.Close(); err != nil {
				logger.Warn("failed to close change feed", "error", err)
			}
		}()
		feedSource = &feedAdapter{client: feedClient}
	}

	store := cars.NewStore(apiClient, bus, feedSource, cli.NewPrompter(io), cars.NewLogReporter(logger), logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	c := cli.New(io, apiClient, authService, store, gate)
	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// feedAdapter сужает *feed.Client до интерфейса, который ждет store
type feedAdapter struct {
	client *feed.Client
}

func (a *feedAdapter) Subscribe(table, filter string, handler feed.Handler) (cars.FeedSub, error) {
	return a.client.Subscribe(table, filter, handler)
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}

func printVersion() {
	fmt.Printf("Avtomarket Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
