package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/doctors-portal/api/internal/config"
	v1 "github.com/doctors-portal/api/internal/handler/v1"
	"github.com/doctors-portal/api/internal/repository"
	"github.com/doctors-portal/api/internal/service"
	"github.com/doctors-portal/api/pkg/auth"
	"github.com/doctors-portal/api/pkg/database"
	"github.com/doctors-portal/api/pkg/logger"
	"github.com/doctors-portal/api/pkg/metrics"
	"github.com/doctors-portal/api/pkg/payment"
	"github.com/doctors-portal/api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, zlog); err != nil {
		return err
	}

	m := metrics.NewCollector("doctors_portal")

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	go m.WatchDBPool(poolCtx, sqlDB.Stats, 15*time.Second)

	treatmentRepo := repository.NewTreatmentRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	if err := database.SeedTreatments(context.Background(), treatmentRepo, zlog); err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	stripeProvider := payment.NewStripeProvider(cfg.Stripe)

	auditSvc := service.NewAuditService(auditRepo, m, zlog)
	defer auditSvc.Shutdown()

	availabilitySvc := service.NewAvailabilityService(treatmentRepo, bookingRepo, m, zlog)
	bookingSvc := service.NewBookingService(bookingRepo, treatmentRepo, auditSvc, m, zlog)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, m, zlog)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, m, zlog)
	paymentSvc := service.NewPaymentService(stripeProvider, bookingRepo, treatmentRepo, auditSvc, m, zlog)

	router := v1.NewRouter(v1.RouterDeps{
		Config:    cfg,
		Verifier:  jwtManager,
		Metrics:   m,
		Log:       zlog,
		Treatment: v1.NewTreatmentHandler(availabilitySvc),
		Booking:   v1.NewBookingHandler(bookingSvc),
		User:      v1.NewUserHandler(authSvc),
		Doctor:    v1.NewDoctorHandler(doctorSvc),
		Payment:   v1.NewPaymentHandler(paymentSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	zlog.Info("server stopped")
	return nil
}
