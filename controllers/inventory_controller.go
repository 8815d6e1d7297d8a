package controllers

import (
	"bytes"
	"context"
	"image/png"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agensilive/agensi_backend/config"
	"github.com/agensilive/agensi_backend/models"
	"github.com/agensilive/agensi_backend/utils"
)

// InventoryController tracks product samples handed to creators for live
// sessions, including printable QR labels per SKU.
type InventoryController struct {
	DB       *mongo.Client
	validate *validator.Validate
	logger   *log.Logger
}

func NewInventoryController(db *mongo.Client) *InventoryController {
	return &InventoryController{
		DB:       db,
		validate: validator.New(),
		logger:   log.New(os.Stdout, "[INVENTORY] ", log.LstdFlags),
	}
}

// CreateItem registers a new sample item.
func (ic *InventoryController) CreateItem(c echo.Context) error {
	var req models.CreateInventoryItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := ic.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	now := time.Now()
	item := models.InventoryItem{
		ID:        primitive.NewObjectID(),
		SKU:       utils.SanitizeInput(req.SKU),
		Name:      utils.SanitizeInput(req.Name),
		Quantity:  req.Quantity,
		Location:  utils.SanitizeInput(req.Location),
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(ic.DB, "inventory").InsertOne(ctx, item); err != nil {
		ic.logger.Printf("inventory insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create inventory item",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Inventory item created",
		Data:    item,
	})
}

// ListItems returns all items, optionally only those assigned to a creator.
func (ic *InventoryController) ListItems(c echo.Context) error {
	filter := bson.M{}
	if assigned := c.QueryParam("assignedTo"); assigned != "" {
		objID, err := primitive.ObjectIDFromHex(assigned)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid profile id",
			})
		}
		filter["assignedTo"] = objID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(ic.DB, "inventory").Find(ctx, filter)
	if err != nil {
		ic.logger.Printf("inventory query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch inventory",
		})
	}
	defer cursor.Close(ctx)

	var items []models.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode inventory",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Inventory fetched",
		Data:    items,
	})
}

// UpdateItem adjusts quantity, location or assignment.
func (ic *InventoryController) UpdateItem(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid item id",
		})
	}

	var req models.UpdateInventoryItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	fields := bson.M{"updatedAt": time.Now()}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Quantity must not be negative",
			})
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Location != nil {
		fields["location"] = utils.SanitizeInput(*req.Location)
	}
	unset := bson.M{}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			unset["assignedTo"] = ""
		} else {
			assignee, err := primitive.ObjectIDFromHex(*req.AssignedTo)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid profile id",
				})
			}
			fields["assignedTo"] = assignee
		}
	}

	update := bson.M{"$set": fields}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(ic.DB, "inventory").UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		ic.logger.Printf("inventory update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update item",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Item not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Item updated",
	})
}

// Barcode renders a printable QR label encoding the item's SKU.
func (ic *InventoryController) Barcode(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid item id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var item models.InventoryItem
	err = config.GetCollection(ic.DB, "inventory").FindOne(ctx, bson.M{"_id": objID}).Decode(&item)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Item not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch item",
		})
	}

	code, err := qr.Encode(item.SKU, qr.M, qr.Auto)
	if err != nil {
		ic.logger.Printf("QR encode failed for %s: %v", item.SKU, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate barcode",
		})
	}
	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale barcode",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode barcode",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
