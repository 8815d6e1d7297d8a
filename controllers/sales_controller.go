package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/utils"
)

// SalesController records and lists daily and monthly sales. Sales records
// are append-only: corrections happen by adding compensating entries, never
// by editing history.
type SalesController struct {
	DB       *mongo.Client
	validate *validator.Validate
	logger   *log.Logger
}

func NewSalesController(db *mongo.Client) *SalesController {
	return &SalesController{
		DB:       db,
		validate: validator.New(),
		logger:   log.New(os.Stdout, "[SALES] ", log.LstdFlags),
	}
}

// CreateDaily records one day's sales for a creator on one platform.
// Creators record for themselves; admins may record for anyone.
func (sc *SalesController) CreateDaily(c echo.Context) error {
	var req models.CreateDailySalesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := sc.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	if req.GMV < 0 || req.CommissionGross < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "GMV and commission must not be negative",
		})
	}

	userID, err := sc.targetUser(c, req.UserID)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: err.Error(),
		})
	}

	record := models.DailySales{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Date:            req.Date,
		Source:          req.Source,
		GMV:             req.GMV,
		CommissionGross: req.CommissionGross,
		CreatedAt:       time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(sc.DB, "daily_sales").InsertOne(ctx, record); err != nil {
		sc.logger.Printf("daily sales insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record sales",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Sales recorded",
		Data:    record,
	})
}

// ListDaily returns daily sales for a period (YYYY-MM). Creators see their
// own records; admins can pass userId to see anyone's.
func (sc *SalesController) ListDaily(c echo.Context) error {
	userID, err := sc.targetUser(c, c.QueryParam("userId"))
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: err.Error(),
		})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID, "date": bson.M{"$regex": "^" + period}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := config.GetCollection(sc.DB, "daily_sales").Find(ctx, filter, opts)
	if err != nil {
		sc.logger.Printf("daily sales query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch sales",
		})
	}
	defer cursor.Close(ctx)

	var records []models.DailySales
	if err := cursor.All(ctx, &records); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode sales",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sales fetched",
		Data:    records,
	})
}

// CreateMonthly records a monthly aggregate for a creator (admin only).
func (sc *SalesController) CreateMonthly(c echo.Context) error {
	var req models.CreateMonthlySalesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := sc.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}
	if req.GMV < 0 || req.CommissionGross < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "GMV and commission must not be negative",
		})
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	record := models.MonthlySales{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Month:           req.Month,
		Source:          req.Source,
		GMV:             req.GMV,
		CommissionGross: req.CommissionGross,
		Orders:          req.Orders,
		CreatedAt:       time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(sc.DB, "monthly_sales").InsertOne(ctx, record); err != nil {
		sc.logger.Printf("monthly sales insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record monthly sales",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Monthly sales recorded",
		Data:    record,
	})
}

// ListMonthly returns monthly aggregates for a period.
func (sc *SalesController) ListMonthly(c echo.Context) error {
	userID, err := sc.targetUser(c, c.QueryParam("userId"))
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: err.Error(),
		})
	}

	filter := bson.M{"userId": userID}
	if month := c.QueryParam("month"); month != "" {
		filter["month"] = month
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(sc.DB, "monthly_sales").Find(ctx, filter)
	if err != nil {
		sc.logger.Printf("monthly sales query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch monthly sales",
		})
	}
	defer cursor.Close(ctx)

	var records []models.MonthlySales
	if err := cursor.All(ctx, &records); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode monthly sales",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Monthly sales fetched",
		Data:    records,
	})
}

// targetUser resolves whose records an operation touches. An empty requested
// id means "the caller"; a non-empty one requires the admin role.
func (sc *SalesController) targetUser(c echo.Context, requested string) (primitive.ObjectID, error) {
	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if requested == "" || requested == callerID.Hex() {
		return callerID, nil
	}
	if middleware.ExtractRole(c) != models.RoleAdmin {
		return primitive.NilObjectID, errAdminOnly
	}
	return primitive.ObjectIDFromHex(requested)
}
