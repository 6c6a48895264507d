package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/application/auth"
	"github.com/AndreFerreira5/starranja/internal/config"
	infraauth "github.com/AndreFerreira5/starranja/internal/infrastructure/auth"
	httprouter "github.com/AndreFerreira5/starranja/internal/infrastructure/http"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/handlers"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/http/middleware"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/persistence/postgres"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	workOrderRepo := postgres.NewWorkOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	appointmentRepo := postgres.NewAppointmentRepository(pool)

	hasher, err := security.NewPasswordService(security.Params{
		TimeCost:    uint32(cfg.Argon2.TimeCost),
		MemoryCost:  uint32(cfg.Argon2.MemoryCost),
		Parallelism: uint8(cfg.Argon2.Parallelism),
		HashLength:  uint32(cfg.Argon2.HashLength),
		SaltLength:  uint32(cfg.Argon2.SaltLength),
	}, security.Policy{
		MinLength: cfg.Auth.MinPasswordLength,
		MaxLength: cfg.Auth.MaxPasswordLength,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create password service")
	}

	issuer, err := infraauth.NewTokenService(cfg.Auth.PasetoSecretKey,
		time.Duration(cfg.Auth.AccessTokenExpireMinutes)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("create token service")
	}

	registerUC := auth.NewRegister(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, log)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.IsDevelopment()))
	requireAuth := middleware.NewAuthValidator(issuer).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:         handlers.NewAuthHandler(registerUC, loginUC, log),
		HealthHandler:       handlers.NewHealthHandler(pool, redisClient),
		UsersHandler:        handlers.NewUsersHandler(userRepo),
		ClientsHandler:      handlers.NewClientsHandler(clientRepo, log),
		VehiclesHandler:     handlers.NewVehiclesHandler(vehicleRepo, clientRepo, log),
		WorkOrdersHandler:   handlers.NewWorkOrdersHandler(workOrderRepo, vehicleRepo, log),
		InvoicesHandler:     handlers.NewInvoicesHandler(invoiceRepo, workOrderRepo, clientRepo, vehicleRepo, log),
		AppointmentsHandler: handlers.NewAppointmentsHandler(appointmentRepo, clientRepo, log),
		RequireAuth:         requireAuth,
		Log:                 log,
		Secure:              secureMiddleware,
		CORS:                middleware.CORS(cfg.Server.CORSAllowedOrigins, nil, nil),
		IPRateLimit:         ipLimit,
		Metrics:             true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
