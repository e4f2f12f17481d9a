// File: concierge/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierge/config"
	"concierge/cron"
	"concierge/database"
	tenantRepoPkg "concierge/database/repository/tenant"
	"concierge/handlers"
	"concierge/middleware"
	"concierge/models"
	"concierge/routes"
	"concierge/services/dialog"
	"concierge/services/execution"
	"concierge/services/nlu"
	"concierge/services/notification"
	"concierge/services/session"
	"concierge/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()

	signalsCfg, executionCfg, err := dialog.SharedConfigs()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load dialog configs: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	tenantRepo := tenantRepoPkg.NewMongoTenantRepo()

	// services.
	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(), config.AppConfig.SessionKeyPrefix)
	nluProvider := nlu.NewHTTPProvider(config.AppConfig.NLUServiceURL)
	executionBackend := execution.NewHTTPBackend(config.AppConfig.ExecutionServiceURL)
	reminderScheduler := execution.NewReminderScheduler()

	dialogService := &dialog.DefaultDialogService{
		Sessions:  sessionStore,
		NLU:       nluProvider,
		Backend:   executionBackend,
		Reminders: reminderScheduler,
		Resolver:  dialog.NewIntentResolver(signalsCfg),
		Planner:   dialog.NewPlanBuilder(executionCfg),
		Policy: models.Policy{
			AllowTimeWindows:        config.AppConfig.AllowTimeWindows,
			AllowConstraintOnlyTime: config.AppConfig.AllowConstraintOnlyTime,
		},
		SessionTTL: time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute,
	}

	dialogHandler := handlers.NewDialogHandler(dialogService, sessionStore, tenantRepo)
	tenantHandler := handlers.NewTenantHandler(tenantRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		TenantRepo: tenantRepo,

		// Dialog endpoints.
		HandleTurnHandler:   dialogHandler.HandleTurn,
		GetSessionHandler:   dialogHandler.GetSession,
		ResetSessionHandler: dialogHandler.ResetSession,

		// Tenant catalog endpoints.
		GetTenantHandler:    tenantHandler.GetTenantHandler,
		UpsertTenantHandler: tenantHandler.UpsertTenantHandler,
		DeleteTenantHandler: tenantHandler.DeleteTenantHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background reminder worker and health monitor.
	notifier := notification.NewWebhookNotifier(config.AppConfig.ReminderWebhookURL)
	cron.InitReminderWorker(notifier)
	utils.StartHealthMonitor([]*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
