package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dootask/asset-hub-sub002/api/swagger" // swagger docs
	"github.com/dootask/asset-hub-sub002/internal/config"
	"github.com/dootask/asset-hub-sub002/internal/database"
	"github.com/dootask/asset-hub-sub002/internal/handler"
	"github.com/dootask/asset-hub-sub002/internal/logger"
	"github.com/dootask/asset-hub-sub002/internal/middleware"
	"github.com/dootask/asset-hub-sub002/internal/notify"
	"github.com/dootask/asset-hub-sub002/internal/repository"
	"github.com/dootask/asset-hub-sub002/internal/service"
	"github.com/dootask/asset-hub-sub002/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Asset Hub Approval API
// @version         1.0
// @description     Approval requests, action configuration and the asset/consumable operations they gate.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		ServiceName: "asset-hub",
	})

	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("database connection failed")
	}
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("database connected")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	approvalRepo := repository.NewApprovalRepository(db)
	configRepo := repository.NewActionConfigRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	consumableRepo := repository.NewConsumableRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	borrowRepo := repository.NewBorrowRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	todoClient := notify.NewTodoClient(notify.TodoConfig{
		BaseURL:    cfg.TodoBaseURL,
		Token:      cfg.TodoToken,
		Timeout:    cfg.TodoTimeout,
		AppBaseURL: cfg.AppBaseURL,
	})
	if !todoClient.Configured() {
		log.Warn().Msg("TODO_BASE_URL not set, todo propagation disabled")
	}
	dispatcher := notify.NewDispatcher(
		notify.Multi{todoClient, notify.NewWebsocketSink(wsHub)},
		approvalRepo,
		notify.DispatcherConfig{QueueSize: cfg.NotifyQueueSize, CallTimeout: cfg.TodoTimeout},
		log,
	)

	effects := service.NewEffectApplier(assetRepo, consumableRepo, operationRepo, borrowRepo, log)
	approvalService := service.NewApprovalService(txManager, approvalRepo, configRepo, roleRepo, assetRepo, consumableRepo, operationRepo,
		auditRepo, service.NewApproverResolver(roleRepo), effects, dispatcher, log)
	operationService := service.NewOperationService(txManager, assetRepo, consumableRepo, operationRepo, configRepo,
		auditRepo, approvalService, effects, log)
	actionConfigService := service.NewActionConfigService(txManager, configRepo, auditRepo, log)
	roleService := service.NewRoleService(txManager, roleRepo, auditRepo, log)
	assetService := service.NewAssetService(assetRepo, auditRepo, txManager)
	consumableService := service.NewConsumableService(consumableRepo, auditRepo, txManager)
	borrowService := service.NewBorrowService(borrowRepo, dispatcher, log)
	auditService := service.NewAuditService(auditRepo)

	seed, err := service.LoadActionConfigSeed(cfg.ActionConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load action config seed")
	}
	if err := actionConfigService.SeedDefaults(context.Background(), seed); err != nil {
		log.Fatal().Err(err).Msg("failed to seed action configs")
	}

	// Initialize Handlers
	handlers := handler.Handlers{
		Approvals:     handler.NewApprovalHandler(approvalService),
		ActionConfigs: handler.NewActionConfigHandler(actionConfigService),
		Roles:         handler.NewRoleHandler(roleService),
		Assets:        handler.NewAssetHandler(assetService, operationService),
		Consumables:   handler.NewConsumableHandler(consumableService, operationService),
		Borrows:       handler.NewBorrowHandler(borrowService),
		Audit:         handler.NewAuditHandler(auditService),
	}

	// Set up Gin Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(log), middleware.Recovery(log))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "ws_clients": wsHub.ClientCount()})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, cfg.JWTSecret)
	})

	// API Routing
	handlers.Mount(router.Group("/api", middleware.Authenticate(cfg.JWTSecret)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OverdueCheckInterval > 0 {
		go runOverdueChecks(ctx, borrowService, cfg.OverdueCheckInterval, log)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending notifications dropped at shutdown")
	}
	wsHub.Stop()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runOverdueChecks(ctx context.Context, borrows service.BorrowService, every time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := borrows.NotifyOverdue(ctx, now)
			if err != nil {
				log.Error().Err(err).Msg("overdue check failed")
				continue
			}
			if n > 0 {
				log.Info().Int("count", n).Msg("overdue reminders sent")
			}
		}
	}
}
