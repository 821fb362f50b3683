// Package main starts the feed server: it stores the chat and recipe feeds
// and pushes snapshots of them to websocket subscribers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/ourstory/internal/config"
	"github.com/atinyakov/ourstory/internal/db"
	"github.com/atinyakov/ourstory/internal/hub"
	"github.com/atinyakov/ourstory/internal/logger"
	"github.com/atinyakov/ourstory/internal/repository"
	"github.com/atinyakov/ourstory/internal/server"
	"github.com/atinyakov/ourstory/internal/server/handler/http"
	"github.com/atinyakov/ourstory/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	var (
		messages service.MessageRepository
		recipes  service.RecipeRepository
		pruner   db.MessagePruner
	)
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()
		msgRepo := repository.NewPostgresMessageRepository(postgresDB)
		messages, pruner = msgRepo, msgRepo
		recipes = repository.NewPostgresRecipeRepository(postgresDB)
	} else {
		zapLogger.Warn("no database configured, feeds are kept in memory")
		msgRepo := repository.NewMemoryMessageRepository()
		messages, pruner = msgRepo, msgRepo
		recipes = repository.NewMemoryRecipeRepository()
	}

	feeds := service.NewFeedService(messages, recipes, nil)
	snapshots := hub.New(feeds, zapLogger.Named("hub"))
	feeds.SetNotifier(snapshots)

	router := http.NewRouter(
		&http.MessageHandler{Service: feeds},
		&http.RecipeHandler{Service: feeds},
		http.NewSubscribeHandler(snapshots, options.AllowedOrigins, zapLogger),
		options.AllowedOrigins,
		zapLogger,
	)

	sup := server.NewSupervisor(zapLogger.Named("supervisor"))
	sup.Add(snapshots)
	sup.Add(&server.HTTPService{
		Server: &nethttp.Server{
			Addr:              options.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		CertFile: options.TLSCert,
		KeyFile:  options.TLSKey,
		Log:      zapLogger,
	})
	if options.RetentionInterval > 0 {
		sup.Add(db.NewRetentionSweeper(pruner, options.RetentionInterval, options.Retention, zapLogger.Named("retention")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sup.Serve(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("supervisor stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
