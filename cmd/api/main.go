package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evmotors/dealerhub-backend/api/routes"
	"github.com/evmotors/dealerhub-backend/internal/appointments"
	"github.com/evmotors/dealerhub-backend/internal/auth"
	"github.com/evmotors/dealerhub-backend/internal/dealers"
	"github.com/evmotors/dealerhub-backend/internal/orders"
	"github.com/evmotors/dealerhub-backend/internal/users"
	"github.com/evmotors/dealerhub-backend/internal/vehicles"
	"github.com/evmotors/dealerhub-backend/pkg/auth/session"
	"github.com/evmotors/dealerhub-backend/pkg/config"
	"github.com/evmotors/dealerhub-backend/pkg/db"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
	"github.com/evmotors/dealerhub-backend/pkg/metrics"
	"github.com/evmotors/dealerhub-backend/pkg/migrate"
	"github.com/evmotors/dealerhub-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	lifecycle := metrics.NewLifecycleMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	dealersRepo := dealers.NewRepository(dbClient.DB())
	vehiclesRepo := vehicles.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	appointmentsRepo := appointments.NewRepository(dbClient.DB())
	stockKeeper := vehicles.NewStockKeeper()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	vehiclesService, err := vehicles.NewService(vehiclesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicles service", err)
		os.Exit(1)
	}

	dealersService, err := dealers.NewService(dealersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create dealers service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:      ordersRepo,
		Tx:        dbClient,
		Vehicles:  vehiclesRepo,
		Dealers:   dealersRepo,
		Stock:     stockKeeper,
		Lifecycle: lifecycle,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	appointmentsService, err := appointments.NewService(appointments.ServiceParams{
		Repo:      appointmentsRepo,
		Tx:        dbClient,
		Vehicles:  vehiclesRepo,
		Dealers:   dealersRepo,
		Config:    cfg.Appointments,
		Lifecycle: lifecycle,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create appointments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:              cfg,
			Logger:              logg,
			DB:                  dbClient,
			Redis:               redisClient,
			SessionManager:      sessionManager,
			Registry:            registry,
			AuthService:         authService,
			RegisterService:     registerService,
			UsersRepo:           usersRepo,
			UsersService:        usersService,
			VehiclesService:     vehiclesService,
			DealersService:      dealersService,
			OrdersService:       ordersService,
			AppointmentsService: appointmentsService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
