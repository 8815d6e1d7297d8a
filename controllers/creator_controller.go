package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/repositories"
	"github.com/agensilive/agensi_backend/utils"
)

// CreatorController handles the admin-side management of creator accounts:
// approval, pausing, archiving and compensation updates.
type CreatorController struct {
	DB       *mongo.Client
	profiles *repositories.ProfileRepository
	logger   *log.Logger
}

func NewCreatorController(db *mongo.Client) *CreatorController {
	return &CreatorController{
		DB:       db,
		profiles: repositories.NewProfileRepository(db),
		logger:   log.New(os.Stdout, "[CREATOR] ", log.LstdFlags),
	}
}

// ListCreators returns creator profiles, optionally filtered by status.
func (cc *CreatorController) ListCreators(c echo.Context) error {
	filter := bson.M{"role": models.RoleCreator}
	if status := c.QueryParam("status"); status != "" {
		if !models.ValidStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown status filter",
			})
		}
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profiles, err := cc.profiles.List(ctx, filter)
	if err != nil {
		cc.logger.Printf("failed to list creators: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch creators",
		})
	}

	for i := range profiles {
		profiles[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Creators fetched successfully",
		Data:    profiles,
	})
}

// GetCreator returns a single creator profile.
func (cc *CreatorController) GetCreator(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := cc.profiles.GetProfile(ctx, c.Param("id"))
	if err != nil {
		return cc.profileError(c, err)
	}
	profile.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Creator fetched successfully",
		Data:    profile,
	})
}

// Approve activates a pending creator account and notifies them.
func (cc *CreatorController) Approve(c echo.Context) error {
	return cc.decide(c, true)
}

// Reject archives a pending creator account and notifies them.
func (cc *CreatorController) Reject(c echo.Context) error {
	return cc.decide(c, false)
}

func (cc *CreatorController) decide(c echo.Context, approved bool) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := cc.profiles.GetProfile(ctx, c.Param("id"))
	if err != nil {
		return cc.profileError(c, err)
	}

	if profile.Status != models.StatusPendingApproval {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Account is not awaiting approval",
		})
	}

	newStatus := models.StatusActive
	if !approved {
		newStatus = models.StatusArchived
	}
	if err := cc.profiles.UpdateStatus(ctx, profile.ID, newStatus); err != nil {
		cc.logger.Printf("failed to update status for %s: %v", profile.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update account",
		})
	}

	// Email, in-app and push notifications happen off the request path
	go func() {
		if err := utils.NotifyApprovalDecision(cc.DB, profile, approved); err != nil {
			cc.logger.Printf("approval notification failed for %s: %v", profile.ID.Hex(), err)
		}
		if profile.FCMToken != "" {
			title := "Account approved"
			body := "Welcome aboard! You can now sign in."
			if !approved {
				title = "Account application"
				body = "Your application was not approved."
			}
			_ = utils.SendFCMNotification(cc.DB, profile.ID, title, body, map[string]interface{}{
				"type": models.NotificationApproval,
			})
		}
	}()

	message := "Creator approved"
	if !approved {
		message = "Creator rejected"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data: map[string]string{
			"id":     profile.ID.Hex(),
			"status": newStatus,
		},
	})
}

// SetStatus pauses, reactivates or archives an active creator.
func (cc *CreatorController) SetStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || !models.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid status is required",
		})
	}
	if req.Status == models.StatusPendingApproval {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Accounts cannot be moved back to pending approval",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := cc.profiles.GetProfile(ctx, c.Param("id"))
	if err != nil {
		return cc.profileError(c, err)
	}

	if err := cc.profiles.UpdateStatus(ctx, profile.ID, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Status updated",
		Data: map[string]string{
			"id":     profile.ID.Hex(),
			"status": req.Status,
		},
	})
}

// UpdateCreator edits a creator's name and compensation settings.
func (cc *CreatorController) UpdateCreator(c echo.Context) error {
	var req models.UpdateCreatorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	fields := bson.M{}
	if req.Name != nil {
		name := utils.SanitizeInput(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Name must not be empty",
			})
		}
		fields["name"] = name
	}
	if req.BaseSalary != nil {
		if *req.BaseSalary < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Base salary must not be negative",
			})
		}
		fields["baseSalary"] = *req.BaseSalary
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Hourly rate must not be negative",
			})
		}
		fields["hourlyRate"] = *req.HourlyRate
	}
	if req.CommissionRuleID != nil {
		ruleID, err := primitive.ObjectIDFromHex(*req.CommissionRuleID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid commission rule id",
			})
		}
		fields["commissionRuleId"] = ruleID
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No fields to update",
		})
	}

	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid creator id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := cc.profiles.Update(ctx, objID, fields); err != nil {
		return cc.profileError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Creator updated",
	})
}

func (cc *CreatorController) profileError(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: verr.Error(),
		})
	}
	var nerr *models.NotFoundError
	if errors.As(err, &nerr) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Creator not found",
		})
	}
	cc.logger.Printf("profile operation failed: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal error",
	})
}
