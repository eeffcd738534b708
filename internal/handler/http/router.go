package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/handler/http/middleware"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/jwt"
)

// RouterConfig carries the settings the router reads from the app config.
type RouterConfig struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	TimeRecord   TimeRecordHandler
	Period       PeriodHandler
	Request      RequestHandler
	Sector       SectorHandler
	Schedule     ScheduleHandler
	Holiday      HolidayHandler
	Dashboard    DashboardHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ponto-sefaz"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// SSE authenticates with a short-lived query token
		r.Get("/events", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/time-records", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionTimeRecordViewOwn)).Get("/", h.TimeRecord.List)
				r.With(middleware.RequirePermission(user.PermissionTimeRecordCreate)).Post("/clock", h.TimeRecord.Clock)
				r.With(middleware.RequirePermission(user.PermissionTimeRecordManual)).Post("/manual", h.TimeRecord.ManualEntry)
			})

			r.With(middleware.RequirePermission(user.PermissionPeriodViewOwn)).Get("/periods/{userId}", h.Period.Get)

			r.Route("/requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionRequestCreate)).Post("/", h.Request.Submit)
				r.With(middleware.RequirePermission(user.PermissionRequestViewOwn)).Get("/", h.Request.ListMine)
				r.With(middleware.RequirePermission(user.PermissionRequestDecide)).Get("/pending", h.Request.ListPending)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Request.Get)
					r.With(middleware.RequirePermission(user.PermissionRequestDecide)).Post("/decision", h.Request.Decide)
					r.Post("/withdraw", h.Request.Withdraw)
				})
			})

			r.Route("/sectors", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSectorView))
				r.Get("/", h.Sector.List)
				r.Get("/{id}", h.Sector.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSectorManage))
					r.Post("/", h.Sector.Create)
					r.Put("/{id}", h.Sector.Update)
					r.Delete("/{id}", h.Sector.Delete)
				})
			})

			r.Get("/users/{userId}/approval-chain", h.Sector.ApprovalChain)

			r.Route("/schedules", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionScheduleView))
				r.Get("/", h.Schedule.List)
				r.Get("/{id}", h.Schedule.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionScheduleManage))
					r.Post("/", h.Schedule.Create)
					r.Put("/{id}", h.Schedule.Update)
					r.Delete("/{id}", h.Schedule.Delete)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionHolidayView))
				r.Get("/", h.Holiday.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
					r.Post("/", h.Holiday.Create)
					r.Post("/import", h.Holiday.Import)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionDashboardView)).
				Get("/dashboard/sectors/{sectorId}", h.Dashboard.GetSectorSummary)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Get("/sse-token", h.Notification.GetSSEToken)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
			})
		})
	})
	return r
}
