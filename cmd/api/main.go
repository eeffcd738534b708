package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/config"
	appHTTP "github.com/sefaz-ponto/ponto-backend-go/internal/handler/http"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/cron"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/holidayapi"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/jwt"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/sse"
	"github.com/sefaz-ponto/ponto-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/sefaz-ponto/ponto-backend-go/internal/service/auth"
	dashboardService "github.com/sefaz-ponto/ponto-backend-go/internal/service/dashboard"
	holidayService "github.com/sefaz-ponto/ponto-backend-go/internal/service/holiday"
	notificationService "github.com/sefaz-ponto/ponto-backend-go/internal/service/notification"
	periodService "github.com/sefaz-ponto/ponto-backend-go/internal/service/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/service/policy"
	scheduleService "github.com/sefaz-ponto/ponto-backend-go/internal/service/schedule"
	sectorService "github.com/sefaz-ponto/ponto-backend-go/internal/service/sector"
	timeRecordService "github.com/sefaz-ponto/ponto-backend-go/internal/service/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/service/workflow"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "ponto-sefaz"), slog.String("env", cfg.App.Env)))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc := cfg.Location()

	userRepo := postgresql.NewUserRepository(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	sectorRepo := postgresql.NewSectorRepository(db)
	ruleRepo := postgresql.NewRuleRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	recordRepo := postgresql.NewTimeRecordRepository(db)
	lockRepo := postgresql.NewLockRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	txManager := postgresql.NewTxManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.App.Env == "production")
	hub := sse.NewHub()
	notifService := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})

	resolver := sectorService.NewResolver(sectorRepo, userRepo)
	provider := policy.NewProvider(userRepo, ruleRepo, holidayRepo, resolver)
	aggregator := periodService.NewAggregator(provider, recordRepo, requestRepo, lockRepo, loc)

	authService := serviceAuth.NewAuthService(userRepo, tokenRepo, JWTService)
	sectorSvc := sectorService.NewSectorService(sectorRepo, userRepo, resolver)
	scheduleSvc := scheduleService.NewScheduleService(ruleRepo, userRepo, sectorRepo, aggregator)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, holidayapi.NewClient(cfg.HolidayAPI), txManager, aggregator, userRepo, notifService)
	timeRecordSvc := timeRecordService.NewTimeRecordService(recordRepo, lockRepo, requestRepo, provider, aggregator, txManager, loc)
	workflowSvc := workflow.NewWorkflowService(
		requestRepo,
		recordRepo,
		lockRepo,
		userRepo,
		resolver,
		timeRecordSvc,
		notifService,
		aggregator,
		txManager,
		loc,
	)
	dashboardSvc := dashboardService.NewDashboardService(sectorRepo, userRepo, requestRepo, aggregator)

	scheduler := cron.NewScheduler()
	cron.NewHolidayJobs(holidaySvc, aggregator, loc).RegisterJobs(scheduler, cfg.HolidayAPI.RefreshInterval)
	scheduler.Start()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authService),
		TimeRecord:   appHTTP.NewTimeRecordHandler(timeRecordSvc),
		Period:       appHTTP.NewPeriodHandler(aggregator),
		Request:      appHTTP.NewRequestHandler(workflowSvc),
		Sector:       appHTTP.NewSectorHandler(sectorSvc, resolver),
		Schedule:     appHTTP.NewScheduleHandler(scheduleSvc),
		Holiday:      appHTTP.NewHolidayHandler(holidaySvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Notification: appHTTP.NewNotificationHandler(notifService, JWTService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down")

	// SSE streams never finish on their own, so close them before draining.
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()
	notifService.Stop()
	slog.Info("Server stopped")
}
