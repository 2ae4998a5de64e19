package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelapp/internal/api"
	"travelapp/internal/config"
	"travelapp/internal/db"
	"travelapp/internal/logger"
	"travelapp/internal/repository"
	"travelapp/internal/service"

	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// stores groups the repositories behind either backend.
type stores struct {
	listings service.ListingStore
	bookings service.BookingStore
	payments service.PaymentStore
	admins   repository.AdminAuthRepository
	jobs     service.JobStore
	pinger   api.Pinger
	close    func() error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		mem := repository.NewMemoryStore()
		return &stores{
			listings: mem.Listings,
			bookings: mem.Bookings,
			payments: mem.Payments,
			admins:   mem.Admins,
			jobs:     mem.Jobs,
			close:    func() error { return nil },
		}, nil
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, logger.New("migrate")); err != nil {
		conn.Close()
		return nil, err
	}
	return &stores{
		listings: repository.NewListingRepository(conn),
		bookings: repository.NewBookingRepository(conn),
		payments: repository.NewPaymentRepository(conn),
		admins:   repository.NewAdminAuthRepository(conn),
		jobs:     repository.NewJobRepository(conn),
		pinger:   conn,
		close:    conn.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer st.close()

	sender, err := service.NewSenderService(service.NewNotifyService(cfg.Notify))
	if err != nil {
		log.WithError(err).Fatal("failed to build notifications")
	}

	var gateway service.PaymentGateway
	if cfg.Stripe.Enabled() {
		gateway = service.NewStripeService(cfg.Stripe)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payments disabled")
	}

	adminAuth := service.NewAdminAuthService(st.admins, cfg.JWTSecret)
	if err := adminAuth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("failed to create bootstrap admin")
	}

	jobs := service.NewJobService(st.jobs, cfg.Jobs.PendingBookingTTL)
	scheduler := cron.New()
	if err := jobs.Schedule(ctx, scheduler, cfg.Jobs.Schedule); err != nil {
		log.WithError(err).Fatal("failed to schedule jobs")
	}
	scheduler.Start()

	routerCfg := api.RouterConfig{
		Listings:              service.NewListingService(st.listings),
		Bookings:              service.NewBookingService(st.bookings, st.listings, sender),
		Payments:              service.NewPaymentService(gateway, st.payments, st.bookings, st.listings, sender, cfg.Currency),
		AdminAuth:             adminAuth,
		Health:                api.NewHealthHandler(cfg.Store, st.pinger),
		WebhookSecret:         cfg.Stripe.WebhookSecret,
		JWTSecret:             cfg.JWTSecret,
		AuthRequiredForWrites: cfg.AuthRequiredForWrites,
	}
	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	r := api.NewRouter(routerCfg)

	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.ProxyHeaders(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CombinedLoggingHandler(logger.AccessWriter(), h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.Store}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	<-scheduler.Stop().Done()
	sender.Wait()
}
