package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicore/clinic-api/internal/config"
	"github.com/medicore/clinic-api/internal/email"
	advicehandler "github.com/medicore/clinic-api/internal/handler/advice"
	appointmenthandler "github.com/medicore/clinic-api/internal/handler/appointment"
	authhandler "github.com/medicore/clinic-api/internal/handler/auth"
	dashboardhandler "github.com/medicore/clinic-api/internal/handler/dashboard"
	healthhandler "github.com/medicore/clinic-api/internal/handler/health"
	notificationhandler "github.com/medicore/clinic-api/internal/handler/notification"
	reporthandler "github.com/medicore/clinic-api/internal/handler/report"
	userhandler "github.com/medicore/clinic-api/internal/handler/user"
	"github.com/medicore/clinic-api/internal/middleware"
	"github.com/medicore/clinic-api/internal/repository/postgres"
	"github.com/medicore/clinic-api/internal/router"
	adviceservice "github.com/medicore/clinic-api/internal/service/advice"
	appointmentservice "github.com/medicore/clinic-api/internal/service/appointment"
	authservice "github.com/medicore/clinic-api/internal/service/auth"
	dashboardservice "github.com/medicore/clinic-api/internal/service/dashboard"
	notificationservice "github.com/medicore/clinic-api/internal/service/notification"
	reportservice "github.com/medicore/clinic-api/internal/service/report"
	userservice "github.com/medicore/clinic-api/internal/service/user"
	"github.com/medicore/clinic-api/pkg/auth"
	"github.com/medicore/clinic-api/pkg/logger"
	"github.com/medicore/clinic-api/pkg/messaging"
	"github.com/medicore/clinic-api/pkg/messaging/redis"
	"github.com/medicore/clinic-api/pkg/metrics"
	"github.com/medicore/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db, cfg.Server.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	adviceRepo := postgres.NewAdviceRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redis.NewRedisBroker(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}

	emailSvc := email.NewNoopService()
	if cfg.Email.Enabled {
		emailSvc = email.NewSMTPService(cfg.Email)
	}

	authSvc := authservice.NewService(userRepo, jwtSvc, hasher)
	userSvc := userservice.NewService(userRepo, hasher)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, userRepo)
	notificationSvc := notificationservice.NewService(notificationRepo, userRepo, broker, emailSvc)
	adviceSvc := adviceservice.NewService(adviceRepo, userRepo, notificationSvc)
	reportSvc := reportservice.NewService(reportRepo, userRepo)
	dashboardSvc := dashboardservice.NewService(userRepo, appointmentRepo, adviceRepo, reportRepo)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	httpMetrics := metrics.NewHTTPMetrics("clinic_api")

	r := router.New(authMiddleware, router.Handlers{
		Auth:         authhandler.NewHandler(authSvc),
		User:         userhandler.NewHandler(userSvc),
		Appointment:  appointmenthandler.NewHandler(appointmentSvc),
		Advice:       advicehandler.NewHandler(adviceSvc),
		Report:       reporthandler.NewHandler(reportSvc),
		Notification: notificationhandler.NewHandler(notificationSvc),
		Dashboard:    dashboardhandler.NewHandler(dashboardSvc),
		Health:       healthhandler.NewHandler(db),
	}, cfg, httpMetrics)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
