// File: app/app.go
package app

import (
	"context"
	"multibank-api/config"
	"multibank-api/db"
	"multibank-api/handler"
	"multibank-api/logger"
	"multibank-api/repository"
	"multibank-api/router"
	"multibank-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "multibank-api/docs"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---

	userRepo := repository.NewUserRepository(database)
	accountRepo := repository.NewAccountRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)

	limitPolicy := service.NewLimitPolicy()
	exchangeCfg := config.AppConfig.Exchange
	exchangeService := service.NewExchangeService(
		exchangeCfg.ProviderURL, exchangeCfg.RequestTimeout, exchangeCfg.CacheTTL, exchangeCfg.FallbackRates)
	auditRecorder := service.NewLogActivityRecorder()

	accountService := service.NewAccountService(database, accountRepo, redisClient, service.DefaultProvisioningConfig())
	transferService := service.NewTransferService(
		database, accountRepo, transactionRepo, limitPolicy, exchangeService, redisClient, auditRecorder)
	userService := service.NewUserService(userRepo, accountService)

	userHandler := handler.NewUserHandler(userService)
	accountHandler := handler.NewAccountHandler(accountService, transferService)
	transactionHandler := handler.NewTransactionHandler(transferService)

	r := router.NewRouter(userHandler, accountHandler, transactionHandler)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
