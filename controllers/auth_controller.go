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
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/repositories"
	"github.com/agensilive/agensi_backend/services"
	"github.com/agensilive/agensi_backend/utils"
)

// AuthController contains authentication logic
type AuthController struct {
	DB       *mongo.Client
	profiles *repositories.ProfileRepository
	resolver *services.Resolver
	logger   *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, resolver *services.Resolver) *AuthController {
	return &AuthController{
		DB:       db,
		profiles: repositories.NewProfileRepository(db),
		resolver: resolver,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Signup registers a new creator account. Accounts start as pending approval
// and cannot sign in until an admin approves them.
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}
	req.Name = utils.SanitizeInput(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Name is required",
		})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Password must be at least 8 characters",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	profile := &models.CreatorProfile{
		Email:     email,
		Password:  string(hashedPassword),
		Name:      req.Name,
		Role:      models.RoleCreator,
		Status:    models.StatusPendingApproval,
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, err := ac.profiles.Insert(ctx, profile)
	if err != nil {
		var cerr *models.ConflictError
		if errors.As(err, &cerr) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Email already registered",
			})
		}
		ac.logger.Printf("signup insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}
	profile.ID = id

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created. An admin will review your application.",
		Data: map[string]interface{}{
			"id":     id.Hex(),
			"status": profile.Status,
		},
	})
}

// Login authenticates a creator, admin or investor. The credential check
// only succeeds for approved accounts: pending ones are told to wait, and
// their session is never issued.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, err := ac.profiles.GetByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(profile.ID.Hex(), profile.Email, profile.Role)
	if err != nil {
		ac.logger.Printf("token generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// Resolve through the session resolver so pending accounts are forced
	// out the same way they would be on a page reload.
	resolution, err := ac.resolver.Resolve(ctx, &services.RawSession{
		SubjectID: profile.ID.Hex(),
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		ac.logger.Printf("session resolution failed for %s: %v", profile.ID.Hex(), err)
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Could not resolve session, please try again",
		})
	}
	if resolution.State == services.StateUnauthenticated {
		if resolution.Reason == services.ReasonPendingApproval {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Your account is awaiting approval",
			})
		}
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Could not sign you in",
		})
	}

	data := map[string]interface{}{
		"token":        token,
		"refreshToken": refreshToken,
		"user":         resolution.Identity,
	}

	// Remember Me stores encrypted credentials in Redis for 30 days
	if req.RememberMe {
		if rdb := config.GetRedisClient(); rdb != nil {
			rememberToken, err := utils.GenerateRememberMeToken()
			if err == nil {
				creds := utils.RememberedCredentials{
					Email:      profile.Email,
					Role:       profile.Role,
					UserID:     profile.ID.Hex(),
					ExpiresAt:  time.Now().Add(30 * 24 * time.Hour),
					DeviceInfo: c.Request().UserAgent(),
				}
				if err := utils.StoreRememberedCredentials(rdb, rememberToken, creds, 30*24*time.Hour); err == nil {
					data["rememberMeToken"] = rememberToken
				}
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    data,
	})
}

// RememberLogin signs a returning user in with a remember-me token instead
// of a password. The token is single-use: redemption consumes it and issues
// a fresh one alongside the JWT pair.
func (ac *AuthController) RememberLogin(c echo.Context) error {
	var req struct {
		RememberMeToken string `json:"rememberMeToken"`
	}
	if err := c.Bind(&req); err != nil || req.RememberMeToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Remember me token is required",
		})
	}

	rdb := config.GetRedisClient()
	if rdb == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Remember me service unavailable",
		})
	}

	creds, err := utils.RetrieveRememberedCredentials(rdb, req.RememberMeToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired remember me token",
		})
	}
	if err := utils.RemoveRememberedCredentials(rdb, req.RememberMeToken); err != nil {
		ac.logger.Printf("failed to consume remember me token: %v", err)
	}

	token, refreshToken, err := middleware.GenerateJWT(creds.UserID, creds.Email, creds.Role)
	if err != nil {
		ac.logger.Printf("token generation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Same resolution path as a password login, so a profile that went back
	// to pending or was archived since the token was issued cannot slip in.
	resolution, err := ac.resolver.Resolve(ctx, &services.RawSession{
		SubjectID: creds.UserID,
		Token:     token,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		ac.logger.Printf("session resolution failed for %s: %v", creds.UserID, err)
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Could not resolve session, please try again",
		})
	}
	if resolution.State == services.StateUnauthenticated {
		if resolution.Reason == services.ReasonPendingApproval {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Your account is awaiting approval",
			})
		}
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Could not sign you in",
		})
	}

	data := map[string]interface{}{
		"token":        token,
		"refreshToken": refreshToken,
		"user":         resolution.Identity,
	}

	if newToken, err := utils.GenerateRememberMeToken(); err == nil {
		creds.DeviceInfo = c.Request().UserAgent()
		if err := utils.StoreRememberedCredentials(rdb, newToken, *creds, time.Until(creds.ExpiresAt)); err == nil {
			data["rememberMeToken"] = newToken
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    data,
	})
}

// Session resolves the caller's current session and returns the derived
// identity. The frontend calls this on page load to restore state.
func (ac *AuthController) Session(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No active session",
			Data:    services.Resolution{State: services.StateUnauthenticated},
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	resolution, err := ac.resolver.Resolve(ctx, &services.RawSession{
		SubjectID: claims.UserID,
		Token:     utils.BearerToken(c),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	})
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Could not resolve session, please try again",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Session resolved",
		Data:    resolution,
	})
}

// Logout blacklists the caller's token until it would have expired.
func (ac *AuthController) Logout(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	token := utils.BearerToken(c)
	if claims != nil && token != "" {
		middleware.BlacklistToken(token, time.Unix(claims.ExpiresAt, 0))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out",
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (ac *AuthController) Refresh(c echo.Context) error {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	if middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Token has been invalidated",
		})
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired refresh token",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// The old refresh token is single-use
	middleware.BlacklistToken(req.RefreshToken, time.Unix(claims.ExpiresAt, 0))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: map[string]string{
			"token":        token,
			"refreshToken": refreshToken,
		},
	})
}

// UpdateFCMToken stores the device push token on the caller's profile.
func (ac *AuthController) UpdateFCMToken(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req struct {
		FCMToken string `json:"fcmToken"`
	}
	if err := c.Bind(&req); err != nil || req.FCMToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "FCM token is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := ac.profiles.Update(ctx, userID, bson.M{"fcmToken": req.FCMToken}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated",
	})
}
