package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/glowline/backend/internal/config"
	"github.com/glowline/backend/internal/database"
	"github.com/glowline/backend/internal/handlers"
	"github.com/glowline/backend/internal/jobs"
	"github.com/glowline/backend/internal/middleware"
	"github.com/glowline/backend/internal/queue"
	"github.com/glowline/backend/internal/repository"
	"github.com/glowline/backend/internal/routes"
	"github.com/glowline/backend/internal/services/balance"
	"github.com/glowline/backend/internal/services/bonus"
	"github.com/glowline/backend/internal/services/hierarchy"
	"github.com/glowline/backend/internal/services/tiers"
	"github.com/glowline/backend/internal/services/turnover"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Repositories
	dealerRepo := repository.NewGormDealerRepository(db)
	tierRepo := repository.NewCachedTierRepository(repository.NewGormTierRepository(db), cfg.Bonus.TierCacheTTL)
	purchaseRepo := repository.NewGormPurchaseRepository(db)
	bonusRepo := repository.NewGormBonusRepository(db)
	ledgerRepo := repository.NewGormLedgerRepository(db)
	turnoverRepo := repository.NewGormTurnoverReader(db)

	// Services
	hierarchySvc := hierarchy.NewService(dealerRepo, cfg.Bonus.MaxHierarchyDepth)
	tierSvc := tiers.NewService(tierRepo)
	turnoverSvc := turnover.NewService(turnoverRepo, hierarchySvc)
	ledgerSvc := balance.NewService(bonusRepo, ledgerRepo)
	engine := bonus.NewService(
		dealerRepo, purchaseRepo, bonusRepo,
		hierarchySvc, tierSvc, turnoverSvc, ledgerSvc,
		bonus.Config{MinContribution: cfg.Bonus.MinContribution},
	)

	// Background queue and workers
	jobQueue := queue.NewRedisQueue(redisClient, db)
	previewJob, transferRetryJob := jobs.RegisterJobHandlers(jobQueue, db, engine)

	worker := queue.NewWorker(jobQueue, cfg.Queue.Workers)
	jobs.ScheduleRecurringJobs(worker, transferRetryJob)
	worker.Start()

	// HTTP layer
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	rateLimiter := middleware.NewRateLimiter(20, 60, 40, 10)

	bonusHandler := handlers.NewBonusHandler(engine)
	dealerHandler := handlers.NewDealerHandler(tierSvc, turnoverSvc)
	webhookHandler := handlers.NewWebhookHandler(previewJob)

	routes.RegisterHealthRoutes(router)
	routes.RegisterBonusRoutes(router, bonusHandler, rateLimiter)
	routes.RegisterDealerRoutes(router, dealerHandler, rateLimiter)
	routes.RegisterWebhookRoutes(router, webhookHandler, rateLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Glowline bonus service running on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal, then drain workers before exiting
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	worker.Stop()
	rateLimiter.Stop()
	if err := jobQueue.Close(); err != nil {
		log.Printf("Failed to close queue: %v", err)
	}
}
