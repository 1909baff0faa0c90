package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ABBA-DALHATU/football-network-app/api/controllers"
	"github.com/ABBA-DALHATU/football-network-app/api/middleware"
	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
	"github.com/ABBA-DALHATU/football-network-app/internal/feed"
	"github.com/ABBA-DALHATU/football-network-app/internal/messaging"
	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/config"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db"
	"github.com/ABBA-DALHATU/football-network-app/pkg/logger"
	"github.com/ABBA-DALHATU/football-network-app/pkg/metrics"
	"github.com/ABBA-DALHATU/football-network-app/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	dbP db.Pinger,
	redisClient *redis.Client,
	usersService users.Service,
	connectionsService connections.Service,
	feedService feed.Service,
	messagingService messaging.Service,
	notificationsService notifications.Service,
) http.Handler {
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
		middleware.Logging(logg),
	)

	writePolicy := middleware.NewWriteRateLimitPolicy(
		"write",
		cfg.RateLimit.WriteWindow,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.WriteUserLimit,
	)
	writeLimited := middleware.WriteRateLimit(writePolicy, redisClient, logg)

	healthDeps := map[string]controllers.Pinger{}
	if dbP != nil {
		healthDeps["db"] = dbP
	}
	if redisClient != nil {
		healthDeps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, usersService, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Post("/session", controllers.Session(usersService, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.GetMe(usersService, logg))
			r.With(writeLimited).Patch("/me", controllers.UpdateMe(usersService, logg))
			r.With(writeLimited).Post("/me/role", controllers.SetRole(usersService, logg))
			r.Get("/search", controllers.SearchUsers(usersService, logg))
			r.Get("/{userID}", controllers.GetUser(usersService, logg))
		})

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", controllers.ListConnections(connectionsService, logg))
			r.Get("/mutual/{userID}", controllers.MutualConnectionCount(connectionsService, logg))
			r.With(writeLimited).Delete("/{connectionID}", controllers.RemoveConnection(connectionsService, logg))
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.ListConnectionRequests(connectionsService, logg))
				r.With(writeLimited).Post("/", controllers.SendConnectionRequest(connectionsService, logg))
				r.With(writeLimited).Post("/{requestID}/respond", controllers.RespondToConnectionRequest(connectionsService, logg))
				r.With(writeLimited).Delete("/{requestID}", controllers.CancelConnectionRequest(connectionsService, logg))
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", controllers.GetFeed(feedService, logg))
			r.With(writeLimited).Post("/", controllers.CreatePost(feedService, logg))
			r.With(writeLimited).Post("/{postID}/like", controllers.ToggleLike(feedService, logg))
			r.With(writeLimited).Post("/{postID}/comments", controllers.AddComment(feedService, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.ListConversations(messagingService, logg))
			r.With(writeLimited).Post("/", controllers.SendMessage(messagingService, logg))
			r.Get("/{userID}", controllers.GetThread(messagingService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.With(writeLimited).Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.With(writeLimited).Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
