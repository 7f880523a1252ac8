package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RemyAthisayaa17/mceverse/api/controllers"
	"github.com/RemyAthisayaa17/mceverse/api/middleware"
	"github.com/RemyAthisayaa17/mceverse/internal/accounts"
	"github.com/RemyAthisayaa17/mceverse/internal/assignments"
	"github.com/RemyAthisayaa17/mceverse/internal/notifications"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/auth/session"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/db"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager sessionManager

	Provisioner     accounts.Provisioner
	RegisterService accounts.RegisterService
	LoginService    accounts.LoginService
	RepairService   accounts.RepairService
	ProfileRepo     *profiles.Repository

	AssignmentsService   assignments.Service
	NotificationsService notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// A nil *redis.Client must stay a nil interface inside the middleware.
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return middleware.AuthRateLimit(policy, nil, logg)
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		if deps.Redis == nil {
			r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, nil))
		} else {
			r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
		}
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimit(signupPolicy)).Post("/signup", controllers.AuthSignup(deps.Provisioner, logg))
		r.With(rateLimit(loginPolicy)).Post("/login", controllers.AuthLogin(deps.LoginService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))

		// Delegated registration is staff-only and rides the signup limiter.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.RoleStaff), logg))
			r.With(rateLimit(signupPolicy)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1", func(r chi.Router) {
			r.Get("/me", controllers.Me(deps.ProfileRepo, logg))
			r.Post("/profiles/repair", controllers.ProfileRepair(deps.RepairService, logg))

			r.Route("/staff", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleStaff), logg))
				r.Route("/assignments", func(r chi.Router) {
					r.Post("/", controllers.StaffCreateAssignment(deps.AssignmentsService, logg))
					r.Get("/", controllers.StaffListAssignments(deps.AssignmentsService, logg))
				})
			})

			r.Route("/student", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.RoleStudent), logg))
				r.Route("/assignments", func(r chi.Router) {
					r.Get("/", controllers.StudentListAssignments(deps.AssignmentsService, logg))
					r.Get("/{assignmentID}", controllers.StudentGetAssignment(deps.AssignmentsService, logg))
				})
				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", controllers.StudentListNotifications(deps.NotificationsService, logg))
					r.Post("/{notificationID}/read", controllers.StudentMarkNotificationRead(deps.NotificationsService, logg))
					r.Post("/read-all", controllers.StudentMarkAllNotificationsRead(deps.NotificationsService, logg))
				})
			})
		})
	})

	return r
}
