package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/controllers"
	"github.com/agensilive/agensi_backend/middleware"
	ws "github.com/agensilive/agensi_backend/websocket"
)

// RegisterAdminRoutes sets up the admin-only management routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, hub *ws.Hub) {
	creatorController := controllers.NewCreatorController(db)
	sessionController := controllers.NewSessionController(db, hub)
	payrollController := controllers.NewPayrollController(db, hub)
	ledgerController := controllers.NewLedgerController(db)
	inventoryController := controllers.NewInventoryController(db)

	admin := e.Group("/api/admin", middleware.JWTMiddleware(), middleware.RequireAdmin())

	// Creator management
	admin.GET("/creators", creatorController.ListCreators)
	admin.GET("/creators/:id", creatorController.GetCreator)
	admin.POST("/creators/:id/approve", creatorController.Approve)
	admin.POST("/creators/:id/reject", creatorController.Reject)
	admin.PUT("/creators/:id/status", creatorController.SetStatus)
	admin.PUT("/creators/:id", creatorController.UpdateCreator)

	// Live feed and per-creator session history
	admin.GET("/sessions/live", sessionController.LiveFeed)
	admin.GET("/sessions", sessionController.AdminListSessions)

	// Payroll configuration and runs
	admin.GET("/config/payroll-rules", payrollController.GetRules)
	admin.PUT("/config/payroll-rules", payrollController.PutRules)
	admin.GET("/config/commission-rules", payrollController.GetCommissionRules)
	admin.PUT("/config/commission-rules", payrollController.PutCommissionRules)
	admin.POST("/payroll/run", payrollController.Run)
	admin.POST("/payroll/:batchId/publish", payrollController.Publish)

	// Investor ledger writes
	admin.POST("/ledger/entries", ledgerController.CreateEntry)

	// Inventory
	admin.POST("/inventory", inventoryController.CreateItem)
	admin.GET("/inventory", inventoryController.ListItems)
	admin.PUT("/inventory/:id", inventoryController.UpdateItem)
	admin.GET("/inventory/:id/barcode", inventoryController.Barcode)
}
