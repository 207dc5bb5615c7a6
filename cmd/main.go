package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	firestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/cache"
	"storefront-service/internal/catalog"
	"storefront-service/internal/clients/cj"
	"storefront-service/internal/config"
	"storefront-service/internal/gateway"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
	"storefront-service/internal/secrets"
	"storefront-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Overlay credentials from GCP Secret Manager when available
	if cfg.GCPProjectID != "" {
		secretManager, err := secrets.NewGCPSecretManager(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Printf("Warning: Failed to initialize GCP Secret Manager: %v", err)
		} else {
			cfg.ApplySecrets(ctx, secretManager)
			defer secretManager.Close()
		}
	}

	// Hosted identity provider + document database (fail-soft: catalog
	// routes stay up without them)
	var authClient *firebaseauth.Client
	var firestoreClient *firestore.Client
	if cfg.GCPProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GCPProjectID})
		if err != nil {
			log.Printf("Warning: Failed to initialize identity provider: %v (accounts disabled)", err)
		} else {
			if authClient, err = app.Auth(ctx); err != nil {
				log.Printf("Warning: Failed to initialize auth client: %v (accounts disabled)", err)
			}
			if firestoreClient, err = app.Firestore(ctx); err != nil {
				log.Printf("Warning: Failed to initialize document store: %v (profiles disabled)", err)
			}
		}
	}
	if firestoreClient != nil {
		defer firestoreClient.Close()
	}

	// Product-list cache: Redis when configured and reachable, in-memory
	// otherwise
	var productCache cache.ProductCache = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to parse Redis URL: %v (using in-memory cache)", err)
		} else {
			redisClient := redis.NewClient(redisOpts)
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				log.Printf("Warning: Failed to connect to Redis: %v (using in-memory cache)", err)
			} else {
				productCache = cache.NewRedis(redisClient, logger)
				log.Println("Redis product cache enabled")
			}
			cancel()
		}
	}

	// Supplier catalog
	supplierClient := cj.NewClient(cj.Config{
		BaseURL: cfg.SupplierBaseURL,
		APIKey:  cfg.SupplierAPIKey,
	}, logger)
	catalogService := catalog.NewService(supplierClient, productCache, logger, cfg.ExchangeRate, cfg.ProductCacheTTL, time.Now().UnixNano())

	// Profiles and sessions
	var profileRepo repository.ProfileRepository
	if firestoreClient != nil {
		profileRepo = repository.NewFirestoreProfileRepository(firestoreClient)
	}
	sessionService := services.NewSessionService(profileRepo, logger)

	// Payment gateway
	var checkoutGateway gateway.CheckoutGateway
	if cfg.PaystackSecretKey != "" {
		gatewayFactory := gateway.NewFactory(gateway.PaystackConfig{
			SecretKey:   cfg.PaystackSecretKey,
			PublicKey:   cfg.PaystackPublicKey,
			BaseURL:     cfg.PaystackBaseURL,
			FallbackURL: cfg.PaystackFallbackURL,
		})
		gw, err := gatewayFactory.CreateGateway(gateway.GatewayPaystack)
		if err != nil {
			log.Printf("Warning: Failed to create payment gateway: %v (checkout disabled)", err)
		} else {
			checkoutGateway = gw
		}
	}
	checkoutService := services.NewCheckoutService(checkoutGateway, profileRepo, logger, cfg.SellerOnboardingFee)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(catalogService, cfg.DisplayCurrency)
	profileHandler := handlers.NewProfileHandler(sessionService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(checkoutGateway, checkoutService, logger)
	authMiddleware := middleware.NewAuthMiddleware(authClient, sessionService, logger)

	router := setupRouter(cfg, authMiddleware, healthHandler, catalogHandler, profileHandler, checkoutHandler, webhookHandler)

	log.Printf("Storefront service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	profileHandler *handlers.ProfileHandler,
	checkoutHandler *handlers.CheckoutHandler,
	webhookHandler *handlers.WebhookHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.SecurityHeaders())

	corsConfig := cors.DefaultConfig()
	if allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", catalogHandler.ListProducts)
		v1.GET("/products/:id", catalogHandler.GetProduct)
		v1.GET("/categories", catalogHandler.ListCategories)
		v1.GET("/deals", catalogHandler.ListDeals)

		me := v1.Group("/me", authMiddleware.RequireUser())
		{
			me.GET("", profileHandler.Me)
			me.PUT("/role", profileHandler.SetRole)
			me.POST("/refresh", profileHandler.RefreshProfile)
			me.POST("/seller/verification", profileHandler.SubmitSellerVerification)
		}

		v1.POST("/checkout", authMiddleware.RequireUser(), checkoutHandler.StartCheckout)
	}

	router.POST("/webhooks/paystack", webhookHandler.HandlePaystack)

	return router
}
