package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/controllers"
	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/models"
	ws "github.com/agensilive/agensi_backend/websocket"
)

// RegisterAPIRoutes sets up the creator- and investor-facing routes
func RegisterAPIRoutes(e *echo.Echo, db *mongo.Client, hub *ws.Hub) {
	sessionController := controllers.NewSessionController(db, hub)
	salesController := controllers.NewSalesController(db)
	payrollController := controllers.NewPayrollController(db, hub)
	ledgerController := controllers.NewLedgerController(db)
	contentController := controllers.NewContentController(db)
	notificationController := controllers.NewNotificationController(db)
	dashboardController := controllers.NewDashboardController(db)

	api := e.Group("/api", middleware.JWTMiddleware())

	// Live sessions (creators)
	sessions := api.Group("/sessions", middleware.RequireRole(models.RoleCreator))
	sessions.POST("/clock-in", sessionController.ClockIn)
	sessions.POST("/clock-out", sessionController.ClockOut)
	sessions.GET("/open", sessionController.OpenSession)
	sessions.GET("", sessionController.ListSessions)

	// Sales records
	sales := api.Group("/sales", middleware.RequireRole(models.RoleCreator, models.RoleAdmin))
	sales.POST("/daily", salesController.CreateDaily)
	sales.GET("/daily", salesController.ListDaily)
	sales.POST("/monthly", salesController.CreateMonthly, middleware.RequireAdmin())
	sales.GET("/monthly", salesController.ListMonthly)

	// Payroll, creator-visible parts
	api.GET("/payroll/estimate", payrollController.Estimate, middleware.RequireRole(models.RoleCreator))
	api.GET("/payroll/history", payrollController.History, middleware.RequireRole(models.RoleCreator, models.RoleAdmin))

	// Dashboard figures: creators see their own, admins and investors the
	// agency totals
	api.GET("/dashboard/me", dashboardController.MyStats, middleware.RequireRole(models.RoleCreator))
	api.GET("/dashboard/stats", dashboardController.Stats, middleware.RequireRole(models.RoleInvestor, models.RoleAdmin))

	// Investor ledger: investors read, admins write (see admin routes)
	ledger := api.Group("/ledger", middleware.RequireRole(models.RoleInvestor, models.RoleAdmin))
	ledger.GET("/entries", ledgerController.ListEntries)
	ledger.GET("/summary", ledgerController.Summary)

	// Content library
	content := api.Group("/content", middleware.RequireRole(models.RoleCreator, models.RoleAdmin))
	content.POST("", contentController.Upload)
	content.GET("", contentController.List)
	content.DELETE("/:id", contentController.Delete)

	// Notifications
	notifications := api.Group("/notifications")
	notifications.GET("", notificationController.List)
	notifications.PUT("/:id/read", notificationController.MarkRead)
	notifications.PUT("/read-all", notificationController.MarkAllRead)

	// Live event stream
	api.GET("/ws", sessionController.Watch)
}
