package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RemyAthisayaa17/mceverse/api/routes"
	"github.com/RemyAthisayaa17/mceverse/internal/accounts"
	"github.com/RemyAthisayaa17/mceverse/internal/assignments"
	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/notifications"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/auth/session"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/db"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/RemyAthisayaa17/mceverse/pkg/migrate"
	"github.com/RemyAthisayaa17/mceverse/pkg/redis"
)

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	provisioningMetrics := metrics.NewProvisioningMetrics(prometheus.DefaultRegisterer)

	identityRepo := identities.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())
	assignmentRepo := assignments.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	provisioner, err := accounts.NewProvisioner(accounts.ProvisionerParams{
		IdentityRepo:   identityRepo,
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Provisioning:   cfg.Provisioning,
		Metrics:        provisioningMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create provisioner", err)
		os.Exit(1)
	}

	registerService, err := accounts.NewRegisterService(accounts.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
		Metrics:        provisioningMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	loginService, err := accounts.NewLoginService(accounts.LoginServiceParams{
		IdentityRepo:   identityRepo,
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Provisioning:   cfg.Provisioning,
		Metrics:        provisioningMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create login service", err)
		os.Exit(1)
	}

	repairService, err := accounts.NewRepairService(accounts.RepairServiceParams{
		IdentityRepo: identityRepo,
		ProfileRepo:  profileRepo,
		Metrics:      provisioningMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create repair service", err)
		os.Exit(1)
	}

	assignmentsService, err := assignments.NewService(assignments.ServiceParams{
		Repo:          assignmentRepo,
		ProfileRepo:   profileRepo,
		Notifications: notificationRepo,
		Metrics:       provisioningMetrics,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignments service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionManager: sessionManager,

			Provisioner:     provisioner,
			RegisterService: registerService,
			LoginService:    loginService,
			RepairService:   repairService,
			ProfileRepo:     profileRepo,

			AssignmentsService:   assignmentsService,
			NotificationsService: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
