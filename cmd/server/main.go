// @title Timetable Admin API
// @version 1.0
// @description Schedule conflict validation, merged sessions and bulk deletion for the university timetable.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"timetableadmin/config"
	_ "timetableadmin/docs"
	"timetableadmin/internal/adapters/auth"
	"timetableadmin/internal/adapters/email"
	"timetableadmin/internal/adapters/notify"
	httpdelivery "timetableadmin/internal/delivery/http"
	"timetableadmin/internal/delivery/http/controllers"
	"timetableadmin/internal/domain"
	"timetableadmin/internal/repository/postgres"
	"timetableadmin/internal/services"
)

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return err
	}

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	entryRepo := postgres.NewScheduleEntryRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	mergedRepo := postgres.NewMergedSessionRepository(db)

	validator := services.NewConflictValidator(services.ParseCapacityPolicy(cfg.CapacityPolicy))
	scheduleSvc := services.NewScheduleService(entryRepo, roomRepo, catalogRepo, notifier, validator, logger, cfg.ContextTimeout)
	deletionSvc := services.NewDeletionService(entryRepo, notifier, logger, cfg.DeleteStepDelay, cfg.ContextTimeout)
	mergedSvc := services.NewMergedSessionService(mergedRepo, entryRepo, roomRepo, catalogRepo, logger, cfg.ContextTimeout)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty; every authenticated request will be rejected")
	}
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is empty; login is disabled")
	}
	tokens := auth.NewJWT(cfg.JWTSecret)
	authSvc := services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, auth.NewBcrypt(auth.DefaultCost), tokens, cfg.JWTExpiry, logger)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Schedules:      controllers.NewScheduleController(logger, scheduleSvc, deletionSvc),
		MergedSessions: controllers.NewMergedSessionController(logger, mergedSvc),
		Health:         controllers.NewHealthController(logger, db),
		Auth:           controllers.NewAuthController(logger, authSvc),
	}, tokens, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.NewHandler(mux, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment, "capacity_policy", cfg.CapacityPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = srv.Shutdown(ctx)
	notifier.Wait()
	return err
}

// newNotifier logs every notification and, when ALERT_EMAIL is set, mails errors to the operator.
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Multi, error) {
	channels := notify.Multi{notify.NewLog(logger)}
	if cfg.Mail.AlertEmail == "" {
		return channels, nil
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	return append(channels, services.NewAlertNotifier(mailer, renderer, cfg.Mail.AlertEmail, domain.SeverityError, logger)), nil
}
