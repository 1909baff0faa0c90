package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ABBA-DALHATU/football-network-app/api/routes"
	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
	"github.com/ABBA-DALHATU/football-network-app/internal/feed"
	"github.com/ABBA-DALHATU/football-network-app/internal/messaging"
	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/config"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db"
	"github.com/ABBA-DALHATU/football-network-app/pkg/logger"
	"github.com/ABBA-DALHATU/football-network-app/pkg/migrate"
	"github.com/ABBA-DALHATU/football-network-app/pkg/pubsub"
	"github.com/ABBA-DALHATU/football-network-app/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var pubClient *pubsub.Client
	if cfg.FeatureFlags.NotificationBus {
		pubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer pubClient.Close()
	}

	gdb := dbClient.DB()
	usersRepo := users.NewRepository(gdb)
	connectionsRepo := connections.NewRepository(gdb)

	usersService, err := users.NewService(users.ServiceParams{Repo: usersRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	notifParams := notifications.ServiceParams{
		Repo:   notifications.NewRepository(gdb),
		Logger: logg,
	}
	if pubClient != nil {
		notifParams.Publisher = pubClient
	}
	notificationsService, err := notifications.NewService(notifParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	connectionsService, err := connections.NewService(connections.ServiceParams{
		Repo:     connectionsRepo,
		Users:    usersRepo,
		Notifier: notificationsService,
		Cache:    redisClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create connections service", err)
		os.Exit(1)
	}

	feedService, err := feed.NewService(feed.ServiceParams{
		Repo:        feed.NewRepository(gdb),
		Users:       usersRepo,
		Connections: connectionsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create feed service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.ServiceParams{
		Repo:     messaging.NewRepository(gdb),
		Users:    usersRepo,
		Notifier: notificationsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create messaging service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			dbClient,
			redisClient,
			usersService,
			connectionsService,
			feedService,
			messagingService,
			notificationsService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
