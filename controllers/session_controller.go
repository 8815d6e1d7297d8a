package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/middleware"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/repositories"
	"github.com/agensilive/agensi_backend/services"
	"github.com/agensilive/agensi_backend/utils"
	ws "github.com/agensilive/agensi_backend/websocket"
)

// SessionController exposes the clock-in/clock-out surface for creators and
// the live feed for admin dashboards.
type SessionController struct {
	DB       *mongo.Client
	tracker  *services.LiveTracker
	sessions *repositories.SessionRepository
	hub      *ws.Hub
	logger   *log.Logger
}

func NewSessionController(db *mongo.Client, hub *ws.Hub) *SessionController {
	sessions := repositories.NewSessionRepository(db)
	return &SessionController{
		DB:       db,
		tracker:  services.NewLiveTracker(sessions),
		sessions: sessions,
		hub:      hub,
		logger:   log.New(os.Stdout, "[SESSION] ", log.LstdFlags),
	}
}

// ClockIn opens a live session for the caller.
func (sc *SessionController) ClockIn(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ClockInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	session, err := sc.tracker.ClockIn(ctx, userID, req.Shift)
	if err != nil {
		return sc.trackerError(c, err)
	}

	sc.hub.NotifySessionStarted(session)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "You are live",
		Data:    session,
	})
}

// ClockOut closes the caller's open session and reports its duration in
// whole minutes.
func (sc *SessionController) ClockOut(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ClockOutRequest
	if err := c.Bind(&req); err != nil || req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Session id is required",
		})
	}
	sessionID, err := parseObjectID(req.SessionID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid session id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	minutes, err := sc.tracker.ClockOut(ctx, sessionID, userID)
	if err != nil {
		return sc.trackerError(c, err)
	}

	sc.hub.NotifySessionEnded(map[string]interface{}{
		"sessionId":       req.SessionID,
		"userId":          userID.Hex(),
		"durationMinutes": minutes,
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Session closed",
		Data: map[string]interface{}{
			"sessionId":       req.SessionID,
			"durationMinutes": minutes,
		},
	})
}

// OpenSession returns the caller's open session, if any. The frontend uses
// it to restore the live timer after a reload.
func (sc *SessionController) OpenSession(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	session, err := sc.tracker.FindOpenSession(ctx, userID)
	if err != nil {
		sc.logger.Printf("open session lookup failed for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch open session",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Open session fetched",
		Data:    session,
	})
}

// ListSessions returns the caller's sessions for a period (YYYY-MM).
func (sc *SessionController) ListSessions(c echo.Context) error {
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

	sessions, err := sc.sessions.ListByUserAndPeriod(ctx, userID, period)
	if err != nil {
		sc.logger.Printf("session list failed for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch sessions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sessions fetched",
		Data:    sessions,
	})
}

// AdminListSessions returns one creator's sessions for a period (admin).
func (sc *SessionController) AdminListSessions(c echo.Context) error {
	userID, err := parseObjectID(c.QueryParam("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid userId query parameter is required",
		})
	}

	period := c.QueryParam("period")
	if period == "" {
		period = time.Now().Format("2006-01")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sessions, err := sc.sessions.ListByUserAndPeriod(ctx, userID, period)
	if err != nil {
		sc.logger.Printf("admin session list failed for %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch sessions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sessions fetched",
		Data:    sessions,
	})
}

// LiveFeed returns every currently open session (admin dashboard).
func (sc *SessionController) LiveFeed(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sessions, err := sc.sessions.ListOpen(ctx)
	if err != nil {
		sc.logger.Printf("live feed query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch live sessions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Live sessions fetched",
		Data:    sessions,
	})
}

// Watch upgrades the connection so dashboards receive live-session events.
func (sc *SessionController) Watch(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	return ws.HandleWebSocket(c, sc.hub, userID, middleware.ExtractRole(c))
}

func (sc *SessionController) trackerError(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: verr.Error(),
		})
	}
	var cerr *models.ConflictError
	if errors.As(err, &cerr) {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: cerr.Error(),
		})
	}
	var nerr *models.NotFoundError
	if errors.As(err, &nerr) {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: nerr.Error(),
		})
	}
	var serr *models.InvalidStateError
	if errors.As(err, &serr) {
		return c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  http.StatusUnprocessableEntity,
			Message: serr.Error(),
		})
	}
	sc.logger.Printf("session operation failed: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Internal error",
	})
}
