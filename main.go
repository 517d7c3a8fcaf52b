package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quest-portal-system/handlers"
	"quest-portal-system/middleware"
	"quest-portal-system/models"
	"quest-portal-system/services"
	"quest-portal-system/utils"
	"quest-portal-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // headroom over the 50MB proof file cap
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Name, X-User-Email, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
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

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.PortalUser{},
		&models.Quest{},
		&models.Badge{},
		&models.Submission{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	} else {
		log.Println("⚠️  REDIS_ADDR not set — leaderboard served from Postgres only")
	}

	adminDomains := strings.Split(os.Getenv("ADMIN_EMAIL_DOMAINS"), ",")
	if os.Getenv("ADMIN_EMAIL_DOMAINS") == "" {
		adminDomains = []string{"admin.com"}
	}

	accountService := services.NewAccountService(db, adminDomains)
	progressionService := services.NewProgressionService(db)
	questService := services.NewQuestService(db)
	badgeService := services.NewBadgeService(db)
	submissionService := services.NewSubmissionService(db, progressionService)
	leaderboardService := services.NewLeaderboardService(db, rdb)

	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("PORTAL_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("PORTAL_SERVICE_TOKEN environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identityClient := services.NewIdentityClient(identityServiceURL, serviceToken)
	syncWorker := workers.NewAccountSyncWorker(db, identityClient, "/api/v1/public/profiles")
	syncWorker.Start(ctx)

	leaderboardService.StartRefreshScheduler()

	handlers.SetupCatalogRoutes(app, questService, badgeService, accountService)
	handlers.SetupSubmissionRoutes(app, submissionService, accountService, leaderboardService)
	handlers.SetupProfileRoutes(app, progressionService, accountService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Account Sync Worker running")
	log.Println("✅ Leaderboard refresh scheduled (every 5m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
