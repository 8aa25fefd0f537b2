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
	"github.com/shopspring/decimal"

	"votearena/internal/auth"
	"votearena/internal/blockchain"
	"votearena/internal/config"
	"votearena/internal/database"
	"votearena/internal/fixtures"
	"votearena/internal/handlers"
	"votearena/internal/jobs"
	"votearena/internal/repository"
	"votearena/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Fixture provider: live client behind a TTL cache
	fixtureClient := fixtures.NewClient(cfg.Football.BaseURL, cfg.Football.APIToken)
	fixtureCache := fixtures.NewCache(cfg.Football.FixtureCacheTTL)
	browseCache := fixtures.NewCache(cfg.Football.BrowseCacheTTL)
	fixtureProvider := fixtures.NewCachedProvider(fixtureClient, fixtureCache)

	// On-chain token mirror (no-op unless a server wallet is configured)
	tokenClient := blockchain.NewTokenClient(
		cfg.Solana.Network,
		cfg.Solana.TokenMint,
		cfg.Solana.ServerWalletPrivateKey,
	)
	if tokenClient.Enabled() {
		log.Println("On-chain token mirror enabled")
	}

	// Initialize services
	marketService := services.NewMarketService(repo)
	resolutionService := services.NewResolutionService(repo)
	notificationService := services.NewNotificationService(repo)
	userService := services.NewUserService(repo)
	voteService := services.NewVoteService(
		repo,
		fixtureProvider,
		decimal.NewFromInt(cfg.Voting.VoteFee),
	)
	fixtureResolutionService := services.NewFixtureResolutionService(
		repo,
		fixtureProvider,
		notificationService,
		tokenClient,
		decimal.NewFromInt(cfg.Voting.VoteReward),
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg.App.AdminAPIKey)
	userHandler := handlers.NewUserHandler(userService)
	marketHandler := handlers.NewMarketHandler(marketService, resolutionService)
	voteHandler := handlers.NewVoteHandler(voteService, fixtureResolutionService)
	fixtureHandler := handlers.NewFixtureHandler(fixtureClient, browseCache)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Background expiry sweep; the list endpoint runs the same sweep lazily
	expiryJob := jobs.NewMarketExpiryJob(marketService, 5*time.Minute)
	go expiryJob.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Admin token issuance (public, key-gated)
	router.POST("/auth/admin", authHandler.AdminLogin)

	api := router.Group("/api")
	{
		// User endpoints
		api.POST("/users", userHandler.Register)
		api.GET("/users/:id", userHandler.GetUser)

		// Market endpoints
		api.POST("/markets", marketHandler.CreateMarket)
		api.GET("/markets", marketHandler.GetMarkets)
		api.GET("/markets/:id", marketHandler.GetMarketByID)
		api.PUT("/markets/:id/vote", marketHandler.Vote)

		// Fixture voting endpoints
		api.POST("/votes/cast", voteHandler.CastVote)
		api.GET("/votes/user/:userId", voteHandler.GetUserVotes)
		api.POST("/fixtures/:fixtureId/process", voteHandler.ProcessFixtureResult)
		api.GET("/fixtures", fixtureHandler.GetFixturesByDateRange)

		// Notification endpoints
		api.POST("/notifications", notificationHandler.Create)
		api.GET("/notifications/:userId", notificationHandler.List)
		api.PUT("/notifications/:userId/read", notificationHandler.MarkAllRead)
	}

	// Admin routes (JWT with is_admin claim)
	admin := router.Group("/api")
	admin.Use(auth.AdminRequired())
	{
		admin.PUT("/markets/:id/status", marketHandler.UpdateStatus)
		admin.PUT("/markets/:id/outcome", marketHandler.MarkOutcome)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	expiryJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
