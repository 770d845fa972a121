// Package main initializes and starts the payroll API server, setting up
// configuration, logging, database and Redis connections, repositories,
// services, handlers and, when configured, TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophPayroll/internal/config"
	"github.com/atinyakov/GophPayroll/internal/db"
	"github.com/atinyakov/GophPayroll/internal/events"
	"github.com/atinyakov/GophPayroll/internal/logger"
	"github.com/atinyakov/GophPayroll/internal/repository"
	"github.com/atinyakov/GophPayroll/internal/server/handler/http"
	"github.com/atinyakov/GophPayroll/internal/service"
	"github.com/atinyakov/GophPayroll/internal/session"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// A local .env is optional; real deployments use the environment.
	_ = godotenv.Load()

	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Money is written as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Remove payroll rows left behind by deleted employees.
	cleaner, err := db.StartOrphanPayrollCleaner(ctx, postgresDB, options.CleanupSchedule, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot start payroll cleaner", zap.Error(err))
	}
	defer cleaner.Stop()

	// Initialize the Redis session store.
	rdb := redis.NewClient(&redis.Options{
		Addr:     options.RedisAddr,
		Password: options.RedisPassword,
		DB:       options.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("cannot connect to redis", zap.Error(err))
	}
	sessions := session.NewRedisStore(rdb, options.SessionTTL)

	// Domain events go to RabbitMQ when a broker is configured.
	var publisher events.Publisher = &events.LogPublisher{Log: zapLogger}
	if options.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(options.AMQPURL)
		if err != nil {
			zapLogger.Fatal("cannot connect to rabbitmq", zap.Error(err))
		}
		publisher = rp
	}
	defer publisher.Close()

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	employeeRepo := repository.NewPostgresEmployeeRepository(postgresDB)
	payrollRepo := repository.NewPostgresPayrollRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, sessions,
		service.WithLockoutPolicy(options.LockoutThreshold, options.LockoutWindow),
		service.WithAuthPublisher(publisher),
		service.WithAuthLogger(zapLogger),
	)
	employeeService := service.NewEmployeeService(employeeRepo, payrollRepo, authService, publisher, zapLogger)
	payrollService := service.NewPayrollService(employeeRepo, payrollRepo, publisher, zapLogger)

	if _, err := authService.EnsureAdmin(ctx, options.AdminEmail, options.AdminPassword); err != nil {
		zapLogger.Fatal("cannot seed admin account", zap.Error(err))
	}

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{
		AuthService:  authService,
		SessionTTL:   options.SessionTTL,
		SecureCookie: options.TLSEnabled(),
		Log:          zapLogger,
	}
	employeeHandler := &http.EmployeeHandler{EmployeeService: employeeService, Log: zapLogger}
	payrollHandler := &http.PayrollHandler{PayrollService: payrollService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, employeeHandler, payrollHandler, authService, options.AllowedOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
