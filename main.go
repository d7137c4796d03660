package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cleanup-event-system/handlers"
	"cleanup-event-system/middleware"
	"cleanup-event-system/models"
	"cleanup-event-system/services"
	"cleanup-event-system/utils"
	"cleanup-event-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // evidence photos only, keep it tight
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	origins := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Email, X-User-Name, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the services rely on for their
	// insert-or-conflict paths.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Registration{},
		&models.Participation{},
		&models.PointsHistory{},
		&models.UserXP{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Reward{},
		&models.Redemption{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	userService := services.NewUserService(db)
	progressionService := services.NewProgressionService(db)
	badgeService, err := services.NewBadgeService(db, progressionService)
	if err != nil {
		log.Fatal("failed to seed badge catalog:", err)
	}
	eventService := services.NewEventService(db)
	registrationService := services.NewRegistrationService(db, progressionService)
	participationService := services.NewParticipationService(db, progressionService, badgeService)
	leaderboardService := services.NewLeaderboardService(db)
	rewardService := services.NewRewardService(db, progressionService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Identity mirror sync is optional — without it, users are still
	// upserted on first authenticated request.
	if syncURL := os.Getenv("SYNC_SERVICE_URL"); syncURL != "" {
		token := os.Getenv("SERVICE_TOKEN")
		syncWorker := workers.NewUserSyncWorker(db, syncURL, "/api/v1/public/profiles", token)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL not set — user mirror sync disabled")
	}

	progressionService.StartReconciliationScheduler()

	handlers.SetupEventRoutes(app, userService, eventService, registrationService, participationService)
	handlers.SetupProgressionRoutes(app, userService, progressionService, badgeService, leaderboardService)
	handlers.SetupRewardRoutes(app, userService, rewardService)
	handlers.SetupUploadRoutes(app, userService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Ledger reconciliation audit scheduled (hourly)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
