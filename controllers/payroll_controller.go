package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/payroll"
	"github.com/agensilive/agensi_backend/repositories"
	"github.com/agensilive/agensi_backend/utils"
	ws "github.com/agensilive/agensi_backend/websocket"
)

// PayrollController owns the payroll rules, commission slabs, batch runs and
// payout history.
type PayrollController struct {
	DB       *mongo.Client
	profiles *repositories.ProfileRepository
	sessions *repositories.SessionRepository
	hub      *ws.Hub
	logger   *log.Logger
}

func NewPayrollController(db *mongo.Client, hub *ws.Hub) *PayrollController {
	return &PayrollController{
		DB:       db,
		profiles: repositories.NewProfileRepository(db),
		sessions: repositories.NewSessionRepository(db),
		hub:      hub,
		logger:   log.New(os.Stdout, "[PAYROLL] ", log.LstdFlags),
	}
}

// GetRules returns the agency-wide payroll rules.
func (pc *PayrollController) GetRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rules, err := pc.loadRules(ctx)
	if err != nil {
		var nerr *models.NotFoundError
		if errors.As(err, &nerr) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Payroll rules not configured yet",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payroll rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payroll rules fetched",
		Data:    rules,
	})
}

// PutRules replaces the agency-wide payroll rules. Invalid rules are refused
// outright so the stored configuration is always runnable.
func (pc *PayrollController) PutRules(c echo.Context) error {
	var rules models.PayrollRules
	if err := c.Bind(&rules); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := rules.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	adminID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	rules.UpdatedAt = time.Now()
	rules.UpdatedBy = adminID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Singleton document: replace whatever is there
	opts := options.Replace().SetUpsert(true)
	rules.ID = primitive.NilObjectID
	_, err = config.GetCollection(pc.DB, "payroll_rules").ReplaceOne(ctx, bson.M{}, rules, opts)
	if err != nil {
		pc.logger.Printf("payroll rules update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save payroll rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payroll rules saved",
		Data:    rules,
	})
}

// GetCommissionRules returns the default commission slab set.
func (pc *PayrollController) GetCommissionRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rules, err := pc.loadCommissionRules(ctx, nil)
	if err != nil {
		var nerr *models.NotFoundError
		if errors.As(err, &nerr) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Commission rules not configured yet",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commission rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rules fetched",
		Data:    rules,
	})
}

// PutCommissionRules replaces the default commission slab set after checking
// the slabs form a contiguous progressive ladder.
func (pc *PayrollController) PutCommissionRules(c echo.Context) error {
	var rules models.CommissionRules
	if err := c.Bind(&rules); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if _, err := payroll.NormalizeSlabs(rules.Slabs); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	adminID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	rules.Default = true
	rules.UpdatedAt = time.Now()
	rules.UpdatedBy = adminID
	rules.ID = primitive.NilObjectID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err = config.GetCollection(pc.DB, "commission_rules").ReplaceOne(ctx, bson.M{"default": true}, rules, opts)
	if err != nil {
		pc.logger.Printf("commission rules update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save commission rules",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rules saved",
		Data:    rules,
	})
}

// Run computes payouts for every active creator for a period and stores them
// as one draft batch. Any single failure aborts the whole run.
func (pc *PayrollController) Run(c echo.Context) error {
	var req models.RunPayrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if _, err := time.Parse("2006-01", req.Period); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Period must be YYYY-MM",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	rules, err := pc.loadRules(ctx)
	if err != nil {
		return c.JSON(http.StatusPreconditionFailed, models.Response{
			Status:  http.StatusPreconditionFailed,
			Message: "Payroll rules are not configured",
		})
	}

	creators, err := pc.profiles.List(ctx, bson.M{"role": models.RoleCreator, "status": models.StatusActive})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch creators",
		})
	}

	inputs := make([]payroll.Input, 0, len(creators))
	for _, creator := range creators {
		in, err := pc.buildInput(ctx, creator, req.Period, *rules)
		if err != nil {
			pc.logger.Printf("payroll input for %s failed: %v", creator.ID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to gather payroll inputs",
			})
		}
		inputs = append(inputs, *in)
	}

	results, err := payroll.ComputeAll(inputs)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, models.Response{
				Status:  http.StatusUnprocessableEntity,
				Message: "Payroll run aborted: " + verr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payroll run failed",
		})
	}

	batchID := uuid.New().String()
	now := time.Now()
	records := make([]interface{}, 0, len(results))
	for _, result := range results {
		records = append(records, models.PayoutRecord{
			ID:        primitive.NewObjectID(),
			BatchID:   batchID,
			Result:    result,
			State:     models.PayoutDraft,
			CreatedAt: now,
		})
	}
	if len(records) > 0 {
		if _, err := config.GetCollection(pc.DB, "payouts").InsertMany(ctx, records); err != nil {
			pc.logger.Printf("payout batch insert failed: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to store payout batch",
			})
		}
	}

	pc.hub.BroadcastToAdmins(ws.Notification{
		Type:    ws.EventPayrollRun,
		Message: "Payroll draft computed for " + req.Period,
		Data:    map[string]interface{}{"batchId": batchID, "count": len(results)},
	})

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payroll draft computed",
		Data: map[string]interface{}{
			"batchId": batchID,
			"period":  req.Period,
			"results": results,
		},
	})
}

// Publish finalizes a draft batch and pushes a payslip notification to each
// creator in it.
func (pc *PayrollController) Publish(c echo.Context) error {
	batchID := c.Param("batchId")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Batch id is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	coll := config.GetCollection(pc.DB, "payouts")
	result, err := coll.UpdateMany(ctx,
		bson.M{"batchId": batchID, "state": models.PayoutDraft},
		bson.M{"$set": bson.M{"state": models.PayoutPublished}},
	)
	if err != nil {
		pc.logger.Printf("payout publish failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to publish batch",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No draft payouts found for batch",
		})
	}

	go pc.notifyBatch(batchID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout batch published",
		Data:    map[string]interface{}{"batchId": batchID, "published": result.ModifiedCount},
	})
}

func (pc *PayrollController) notifyBatch(batchID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(pc.DB, "payouts").Find(ctx, bson.M{"batchId": batchID})
	if err != nil {
		pc.logger.Printf("batch notification query failed: %v", err)
		return
	}
	defer cursor.Close(ctx)

	var records []models.PayoutRecord
	if err := cursor.All(ctx, &records); err != nil {
		return
	}
	for _, record := range records {
		_ = utils.SaveNotification(pc.DB, record.Result.UserID,
			"Payslip available",
			"Your payout for "+record.Result.Period+" has been published.",
			models.NotificationPayroll,
			map[string]interface{}{"batchId": batchID, "period": record.Result.Period},
		)
		_ = utils.SendFCMNotification(pc.DB, record.Result.UserID,
			"Payslip available",
			"Your payout for "+record.Result.Period+" has been published.",
			map[string]interface{}{"type": models.NotificationPayroll},
		)
	}
}

// Estimate returns the caller's running commission bonus for the current
// month, computed from the same slabs a real run would use.
func (pc *PayrollController) Estimate(c echo.Context) error {
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := pc.profiles.GetProfile(ctx, userID.Hex())
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Profile not found",
		})
	}

	commission, err := pc.loadCommissionRules(ctx, profile.CommissionRuleID)
	if err != nil {
		return c.JSON(http.StatusPreconditionFailed, models.Response{
			Status:  http.StatusPreconditionFailed,
			Message: "Commission rules are not configured",
		})
	}

	gmv, err := pc.runningGMV(ctx, userID, period)
	if err != nil {
		pc.logger.Printf("running GMV query failed for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute estimate",
		})
	}

	bonus, err := payroll.EstimateBonus(commission.Slabs, gmv)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Estimate computed",
		Data: map[string]interface{}{
			"period":         period,
			"runningGmv":     gmv,
			"estimatedBonus": bonus,
		},
	})
}

// History lists payout records. Creators see their own; admins may filter by
// userId, period or batchId.
func (pc *PayrollController) History(c echo.Context) error {
	callerID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	filter := bson.M{}
	if middleware.ExtractRole(c) == models.RoleAdmin {
		if requested := c.QueryParam("userId"); requested != "" {
			objID, err := primitive.ObjectIDFromHex(requested)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid user id",
				})
			}
			filter["result.userId"] = objID
		}
		if batchID := c.QueryParam("batchId"); batchID != "" {
			filter["batchId"] = batchID
		}
	} else {
		filter["result.userId"] = callerID
		// Unpublished drafts stay internal to the admin team
		filter["state"] = models.PayoutPublished
	}
	if period := c.QueryParam("period"); period != "" {
		filter["result.period"] = period
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(pc.DB, "payouts").Find(ctx, filter, opts)
	if err != nil {
		pc.logger.Printf("payout history query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payout history",
		})
	}
	defer cursor.Close(ctx)

	var records []models.PayoutRecord
	if err := cursor.All(ctx, &records); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode payout history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout history fetched",
		Data:    records,
	})
}

func (pc *PayrollController) loadRules(ctx context.Context) (*models.PayrollRules, error) {
	var rules models.PayrollRules
	err := config.GetCollection(pc.DB, "payroll_rules").FindOne(ctx, bson.M{}).Decode(&rules)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Message: "payroll rules not found"}
		}
		return nil, err
	}
	return &rules, nil
}

// loadCommissionRules returns the creator's override slab set when ruleID is
// set, the agency default otherwise.
func (pc *PayrollController) loadCommissionRules(ctx context.Context, ruleID *primitive.ObjectID) (*models.CommissionRules, error) {
	filter := bson.M{"default": true}
	if ruleID != nil {
		filter = bson.M{"_id": *ruleID}
	}

	var rules models.CommissionRules
	err := config.GetCollection(pc.DB, "commission_rules").FindOne(ctx, filter).Decode(&rules)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.NotFoundError{Message: "commission rules not found"}
		}
		return nil, err
	}
	return &rules, nil
}

func (pc *PayrollController) buildInput(ctx context.Context, creator models.CreatorProfile, period string, rules models.PayrollRules) (*payroll.Input, error) {
	commission, err := pc.loadCommissionRules(ctx, creator.CommissionRuleID)
	if err != nil {
		return nil, err
	}

	sessions, err := pc.sessions.ListByUserAndPeriod(ctx, creator.ID, period)
	if err != nil {
		return nil, err
	}

	daily, monthly, err := pc.salesForPeriod(ctx, creator.ID, period)
	if err != nil {
		return nil, err
	}

	return &payroll.Input{
		Profile:  creator,
		Period:   period,
		Rules:    rules,
		Slabs:    commission.Slabs,
		Sessions: sessions,
		Daily:    daily,
		Monthly:  monthly,
	}, nil
}

func (pc *PayrollController) salesForPeriod(ctx context.Context, userID primitive.ObjectID, period string) ([]models.DailySales, []models.MonthlySales, error) {
	dailyCursor, err := config.GetCollection(pc.DB, "daily_sales").Find(ctx, bson.M{
		"userId": userID,
		"date":   bson.M{"$regex": "^" + period},
	})
	if err != nil {
		return nil, nil, err
	}
	var daily []models.DailySales
	if err := dailyCursor.All(ctx, &daily); err != nil {
		return nil, nil, err
	}

	monthlyCursor, err := config.GetCollection(pc.DB, "monthly_sales").Find(ctx, bson.M{
		"userId": userID,
		"month":  period,
	})
	if err != nil {
		return nil, nil, err
	}
	var monthly []models.MonthlySales
	if err := monthlyCursor.All(ctx, &monthly); err != nil {
		return nil, nil, err
	}

	return daily, monthly, nil
}

func (pc *PayrollController) runningGMV(ctx context.Context, userID primitive.ObjectID, period string) (float64, error) {
	daily, monthly, err := pc.salesForPeriod(ctx, userID, period)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, d := range daily {
		total += d.GMV
	}
	for _, m := range monthly {
		total += m.GMV
	}
	return total, nil
}
