package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/controllers"
	"github.com/agensilive/agensi_backend/middleware"
)

// RegisterAuthRoutes sets up authentication and session routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, authController *controllers.AuthController) {
	// Public authentication routes
	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/remember-login", authController.RememberLogin)
	e.POST("/api/auth/refresh", authController.Refresh)

	// Routes that need a (possibly stale) token
	authenticated := e.Group("/api/auth", middleware.JWTMiddleware())
	authenticated.GET("/session", authController.Session)
	authenticated.POST("/logout", authController.Logout)
	authenticated.PUT("/fcm-token", authController.UpdateFCMToken)
}
