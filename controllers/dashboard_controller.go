package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/payroll"
	"github.com/agensilive/agensi_backend/utils"
)

// DashboardController serves the admin overview numbers.
type DashboardController struct {
	DB     *mongo.Client
	logger *log.Logger
}

func NewDashboardController(db *mongo.Client) *DashboardController {
	return &DashboardController{
		DB:     db,
		logger: log.New(os.Stdout, "[DASHBOARD] ", log.LstdFlags),
	}
}

// Stats returns headline figures for the current month: creators by status,
// live-now count, total live minutes and GMV.
func (dc *DashboardController) Stats(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	stats := map[string]interface{}{"period": period}

	profileColl := config.GetCollection(dc.DB, "profiles")
	for _, status := range []string{models.StatusPendingApproval, models.StatusActive, models.StatusPaused} {
		count, err := profileColl.CountDocuments(ctx, bson.M{"role": models.RoleCreator, "status": status})
		if err != nil {
			return dc.fail(c, "creator counts", err)
		}
		stats["creators_"+status] = count
	}

	liveNow, err := config.GetCollection(dc.DB, "live_sessions").CountDocuments(ctx, bson.M{"checkOut": nil})
	if err != nil {
		return dc.fail(c, "live count", err)
	}
	stats["liveNow"] = liveNow

	minutes, err := dc.sumField(ctx, "live_sessions", bson.M{
		"date":     bson.M{"$regex": "^" + period},
		"checkOut": bson.M{"$ne": nil},
	}, "$durationMinutes")
	if err != nil {
		return dc.fail(c, "live minutes", err)
	}
	stats["liveMinutes"] = minutes

	dailyGMV, err := dc.sumField(ctx, "daily_sales", bson.M{"date": bson.M{"$regex": "^" + period}}, "$gmv")
	if err != nil {
		return dc.fail(c, "daily GMV", err)
	}
	monthlyGMV, err := dc.sumField(ctx, "monthly_sales", bson.M{"month": period}, "$gmv")
	if err != nil {
		return dc.fail(c, "monthly GMV", err)
	}
	stats["totalGmv"] = dailyGMV + monthlyGMV

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard stats computed",
		Data:    stats,
	})
}

// MyStats returns the caller's own figures for a period: GMV, gross
// commission, live minutes, published payouts and the running bonus estimate.
func (dc *DashboardController) MyStats(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	dailyMatch := bson.M{"userId": userID, "date": bson.M{"$regex": "^" + period}}
	monthlyMatch := bson.M{"userId": userID, "month": period}

	dailyGMV, err := dc.sumField(ctx, "daily_sales", dailyMatch, "$gmv")
	if err != nil {
		return dc.fail(c, "daily GMV", err)
	}
	monthlyGMV, err := dc.sumField(ctx, "monthly_sales", monthlyMatch, "$gmv")
	if err != nil {
		return dc.fail(c, "monthly GMV", err)
	}
	totalGMV := dailyGMV + monthlyGMV

	dailyCommission, err := dc.sumField(ctx, "daily_sales", dailyMatch, "$commissionGross")
	if err != nil {
		return dc.fail(c, "daily commission", err)
	}
	monthlyCommission, err := dc.sumField(ctx, "monthly_sales", monthlyMatch, "$commissionGross")
	if err != nil {
		return dc.fail(c, "monthly commission", err)
	}

	liveMinutes, err := dc.sumField(ctx, "live_sessions", bson.M{
		"userId":   userID,
		"date":     bson.M{"$regex": "^" + period},
		"checkOut": bson.M{"$ne": nil},
	}, "$durationMinutes")
	if err != nil {
		return dc.fail(c, "live minutes", err)
	}

	paidPayouts, err := dc.sumField(ctx, "payouts", bson.M{
		"result.userId": userID,
		"state":         models.PayoutPublished,
	}, "$result.totalPayout")
	if err != nil {
		return dc.fail(c, "paid payouts", err)
	}

	estimatedBonus, err := dc.estimateBonus(ctx, userID, totalGMV)
	if err != nil {
		// No configured slabs yet is a setup gap, not a creator error
		dc.logger.Printf("bonus estimate unavailable for %s: %v", userID.Hex(), err)
		estimatedBonus = 0
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Creator stats computed",
		Data: map[string]interface{}{
			"period":          period,
			"totalGmv":        totalGMV,
			"commissionGross": dailyCommission + monthlyCommission,
			"liveMinutes":     liveMinutes,
			"paidPayouts":     paidPayouts,
			"estimatedBonus":  estimatedBonus,
		},
	})
}

func (dc *DashboardController) estimateBonus(ctx context.Context, userID primitive.ObjectID, runningGMV float64) (float64, error) {
	var profile models.CreatorProfile
	err := config.GetCollection(dc.DB, "profiles").FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		return 0, err
	}

	filter := bson.M{"default": true}
	if profile.CommissionRuleID != nil {
		filter = bson.M{"_id": *profile.CommissionRuleID}
	}
	var rules models.CommissionRules
	if err := config.GetCollection(dc.DB, "commission_rules").FindOne(ctx, filter).Decode(&rules); err != nil {
		return 0, err
	}

	return payroll.EstimateBonus(rules.Slabs, runningGMV)
}

func (dc *DashboardController) sumField(ctx context.Context, collection string, match bson.M, field string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: field}}},
		}}},
	}
	cursor, err := config.GetCollection(dc.DB, collection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (dc *DashboardController) fail(c echo.Context, what string, err error) error {
	dc.logger.Printf("dashboard %s query failed: %v", what, err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Failed to compute dashboard stats",
	})
}
