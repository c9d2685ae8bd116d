package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expertbook-backend/internal/booking"
	"expertbook-backend/internal/cache"
	"expertbook-backend/internal/catalog"
	"expertbook-backend/internal/config"
	"expertbook-backend/internal/db"
	"expertbook-backend/internal/handlers"
	"expertbook-backend/internal/leads"
	"expertbook-backend/internal/metrics"
	"expertbook-backend/internal/middleware"
	"expertbook-backend/internal/mq"
	"expertbook-backend/internal/notifications"
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/tracker"
	"expertbook-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st := store.New()
	if st.EnsureSeeded(time.Now()) {
		logger.Info("store seeded", slog.Int("experts", st.CountExperts()))
	}

	var cacheStore cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		cacheStore = redisCache.WithNamespace("expertbook:")
	}

	var sinks []tracker.Sink
	if cfg.MongoURI != "" {
		client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())
		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
		sinks = append(sinks, db.NewEventArchive(cols.Events))
	}
	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("amqp connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
		logger.Info("amqp connected", slog.String("exchange", cfg.AMQPExchange))
		sinks = append(sinks, publisher)
	}

	mailer := notifications.NewBrevoClient(notifications.BrevoOptions{
		APIKey:      cfg.BrevoAPIKey,
		SenderEmail: cfg.BrevoSenderEmail,
		SenderName:  cfg.BrevoSenderName,
		OpsEmail:    cfg.OpsEmail,
		Sandbox:     cfg.BrevoSandbox,
		Location:    cfg.Timezone,
	})
	var bookingMailer booking.Notifier
	var leadMailer leads.Notifier
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		bookingMailer = mailer
		leadMailer = mailer
	}

	events := tracker.New(st, logger, sinks...)
	val := validation.New()
	profiles := profile.New(cacheStore, logger)

	catalogService := catalog.NewService(st)
	catalogHandler := catalog.NewHandler(catalogService, cacheStore, cfg.CacheTTL(), logger)
	catalogHandler.Purge(ctx)

	bookingService := booking.NewService(st, events, bookingMailer, cfg.MeetBaseURL)
	bookingHandler := booking.NewHandler(bookingService, profiles, catalogHandler, val, logger)

	leadService := leads.NewService(st, events, leadMailer)
	leadHandler := leads.NewHandler(leadService, val, logger)

	server := &handlers.Server{
		Store:    st,
		Catalog:  catalogService,
		Bookings: bookingService,
		Metrics:  metrics.NewService(st),
		Tracker:  events,
		Profiles: profiles,
		Val:      val,
		Log:      logger,
		Location: cfg.Timezone,
	}

	writeLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiterDone := make(chan struct{})
	go writeLimiter.Run(limiterDone)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins...))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.Get("/health", server.Health)

	registerRoutes := func(api chi.Router) {
		api.Get("/health", server.Health)
		api.Get("/qa", server.SelfTest)
		api.Get("/view", server.View)

		api.Get("/categories", catalogHandler.Categories)
		api.Get("/experts", catalogHandler.List)
		api.Get("/experts/{slug}", catalogHandler.Get)
		api.Get("/experts/{slug}/slots", catalogHandler.Slots)
		api.Get("/experts/{slug}/reviews", catalogHandler.Reviews)

		api.Post("/bookings/select", bookingHandler.Select)
		api.With(writeLimiter.Middleware).Post("/bookings", bookingHandler.Checkout)
		api.Get("/bookings/{id}", bookingHandler.Get)
		api.With(writeLimiter.Middleware).Post("/bookings/{id}/pay", bookingHandler.Pay)
		api.With(writeLimiter.Middleware).Post("/bookings/{id}/reviews", bookingHandler.Review)
		api.Get("/bookings/{id}/calendar.ics", bookingHandler.Calendar)

		api.With(writeLimiter.Middleware).Post("/leads", leadHandler.Create)
		api.Get("/leads", leadHandler.List)
		api.Get("/leads/{id}", leadHandler.Get)

		api.With(writeLimiter.Middleware).Post("/events", server.TrackEvent)
		api.Get("/events", server.ListEvents)
		api.Get("/events/export.csv", server.ExportEventsCSV)
		api.Get("/events/export.json", server.ExportEventsJSON)

		api.Get("/metrics/funnel", server.Funnel)
		api.Get("/dashboard/experts", server.ExpertDashboard)
		api.Get("/dashboard/client", server.ClientDashboard)

		api.Get("/guest-profile", server.GetGuestProfile)
		api.With(writeLimiter.Middleware).Put("/guest-profile", server.PutGuestProfile)
	}

	// /api is kept as an alias of /api/v1.
	r.Route("/api/v1", registerRoutes)
	r.Route("/api", registerRoutes)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	close(limiterDone)
	bookingHandler.Wait()
	leadHandler.Wait()
	events.Wait()
	logger.Info("server stopped")
}
