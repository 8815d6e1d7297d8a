package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/controllers"
	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/repositories"
	"github.com/agensilive/agensi_backend/routes"
	"github.com/agensilive/agensi_backend/services"
	"github.com/agensilive/agensi_backend/utils"
	"github.com/agensilive/agensi_backend/websocket"
)

// CustomValidator plugs validator/v10 into Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// tokenRevoker force-signs-out a session by blacklisting its token.
type tokenRevoker struct{}

func (tokenRevoker) RevokeSession(ctx context.Context, raw services.RawSession) error {
	middleware.BlacklistToken(raw.Token, raw.ExpiresAt)
	return nil
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Ensure upload directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Periodically drop expired tokens from the in-memory blacklist fallback
	go middleware.CleanupBlacklist()

	// Session resolver: profile lookups with retry, pending accounts revoked
	resolver := services.NewResolver(repositories.NewProfileRepository(client), tokenRevoker{})

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())
	e.Use(httpsRedirect())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Agensi Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize controllers
	authController := controllers.NewAuthController(client, resolver)

	// Register routes
	routes.RegisterAuthRoutes(e, client, authController)
	routes.RegisterAPIRoutes(e, client, wsHub)
	routes.RegisterAdminRoutes(e, client, wsHub)

	// Serve uploaded files
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
