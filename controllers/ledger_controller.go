package controllers

import (
	"context"
	"io"
	"log"
	"mime/multipart"
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
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/utils"
)

// LedgerController manages the investor capital ledger. Entries are
// append-only; the summary is recomputed from the full history on read.
type LedgerController struct {
	DB       *mongo.Client
	validate *validator.Validate
	logger   *log.Logger
}

func NewLedgerController(db *mongo.Client) *LedgerController {
	return &LedgerController{
		DB:       db,
		validate: validator.New(),
		logger:   log.New(os.Stdout, "[LEDGER] ", log.LstdFlags),
	}
}

// CreateEntry appends a ledger line, optionally with an uploaded transfer
// proof. Accepts multipart (entry fields + proof file) or plain JSON.
func (lc *LedgerController) CreateEntry(c echo.Context) error {
	adminID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateLedgerEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := lc.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	entry := models.LedgerEntry{
		ID:        primitive.NewObjectID(),
		Date:      req.Date,
		Type:      req.Type,
		Amount:    req.Amount,
		Notes:     utils.SanitizeInput(req.Notes),
		CreatedBy: adminID,
		CreatedAt: time.Now(),
	}

	if file, err := c.FormFile("proof"); err == nil {
		proofURL, err := lc.saveProof(file)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		entry.ProofLink = proofURL
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(lc.DB, "investor_ledger").InsertOne(ctx, entry); err != nil {
		lc.logger.Printf("ledger insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record ledger entry",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Ledger entry recorded",
		Data:    entry,
	})
}

func (lc *LedgerController) saveProof(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	if err := utils.ValidateFile(file.Filename, int64(len(data))); err != nil {
		return "", err
	}

	mediaType := "document"
	if utils.IsValidImageFile(file) {
		mediaType = "image"
	}

	filename := utils.UniqueFilename(file.Filename)
	proofURL, err := utils.UploadFileToPath(data, filename, mediaType, "proofs")
	if err != nil {
		return "", err
	}

	// Image proofs get a thumbnail for the ledger table view
	if mediaType == "image" {
		if _, err := utils.GenerateImageThumbnail(data, filename); err != nil {
			lc.logger.Printf("proof thumbnail generation failed: %v", err)
		}
	}

	return proofURL, nil
}

// ListEntries returns ledger lines, newest first, optionally filtered by
// type or month.
func (lc *LedgerController) ListEntries(c echo.Context) error {
	filter := bson.M{}
	if t := c.QueryParam("type"); t != "" {
		if !models.ValidLedgerType(t) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown ledger entry type",
			})
		}
		filter["type"] = t
	}
	if month := c.QueryParam("month"); month != "" {
		filter["date"] = bson.M{"$regex": "^" + month}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(lc.DB, "investor_ledger").Find(ctx, filter, opts)
	if err != nil {
		lc.logger.Printf("ledger query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch ledger",
		})
	}
	defer cursor.Close(ctx)

	var entries []models.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode ledger",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ledger fetched",
		Data:    entries,
	})
}

// Summary aggregates the whole ledger: net = in - out - profit share.
func (lc *LedgerController) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$type"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
	}
	cursor, err := config.GetCollection(lc.DB, "investor_ledger").Aggregate(ctx, pipeline)
	if err != nil {
		lc.logger.Printf("ledger aggregation failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to compute summary",
		})
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  string  `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode summary",
		})
	}

	var summary models.LedgerSummary
	for _, row := range rows {
		switch row.Type {
		case models.LedgerCapitalIn:
			summary.CapitalIn = row.Total
		case models.LedgerCapitalOut:
			summary.CapitalOut = row.Total
		case models.LedgerProfitShare:
			summary.ProfitShare = row.Total
		}
	}
	summary.Net = summary.CapitalIn - summary.CapitalOut - summary.ProfitShare

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ledger summary computed",
		Data:    summary,
	})
}
