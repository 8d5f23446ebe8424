package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"poker-ledger/config"
	"poker-ledger/database"
	"poker-ledger/handlers"
	"poker-ledger/services"
	"poker-ledger/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024, // screenshots
	})

	app.Use(recover.New())
	app.Use(logger.New())

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, Cache-Control, X-Gateway-Token, X-User-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	var images utils.ImageStore = utils.NewLocalStore(utils.UploadDir)
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Store(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		images = r2
		log.Printf("🪣 Screenshots go to R2 bucket %s", cfg.R2.Bucket)
	} else if err := os.MkdirAll(utils.UploadDir, os.ModePerm); err != nil {
		log.Fatal("failed to ensure upload dir: ", err)
	}

	var ocr services.TextExtractor
	if cfg.OCR.ServiceURL != "" {
		ocr = services.NewOCRClient(cfg.OCR.ServiceURL, cfg.OCR.Token, cfg.OCR.Timeout)
	} else {
		log.Println("⚠️  OCR_SERVICE_URL not set, /bulk-game/ocr will answer 503")
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	requireUser := handlers.NewRequireUser(tokens, cfg.GatewayToken)

	authService := services.NewAuthService(db, tokens)
	playerService := services.NewPlayerService(db)
	gameService := services.NewGameService(db)
	settlementService := services.NewSettlementService(db)
	statsService := services.NewStatsService(db)
	bulkService := services.NewBulkGameService(db, ocr, images)

	handlers.SetupAuthRoutes(app, authService, requireUser)
	handlers.SetupPlayerRoutes(app, playerService, requireUser)
	handlers.SetupGameRoutes(app, gameService, tokens, requireUser)
	handlers.SetupSettlementRoutes(app, settlementService, requireUser)
	handlers.SetupStatsRoutes(app, statsService, requireUser)
	handlers.SetupBulkGameRoutes(app, bulkService, requireUser)

	app.Static("/uploads", "./"+utils.UploadDir)

	sched, err := services.NewReconciler(db).Start(cfg.Reconcile)
	if err != nil {
		log.Fatal("failed to start reconciler: ", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := sched.Shutdown(); err != nil {
		log.Printf("reconciler shutdown: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
