package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

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

// ContentController manages the shared clip/promo library. Video uploads get
// an extracted-frame thumbnail, images a resized one.
type ContentController struct {
	DB     *mongo.Client
	logger *log.Logger
}

func NewContentController(db *mongo.Client) *ContentController {
	return &ContentController{
		DB:     db,
		logger: log.New(os.Stdout, "[CONTENT] ", log.LstdFlags),
	}
}

// Upload stores a media file and records it in the library.
func (cc *ContentController) Upload(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	title := utils.SanitizeInput(c.FormValue("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title is required",
		})
	}

	file, err := c.FormFile("media")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Media file is required",
		})
	}

	var mediaType string
	switch {
	case utils.IsValidImageFile(file):
		mediaType = models.MediaImage
	case utils.IsValidVideoFile(file):
		mediaType = models.MediaVideo
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unsupported media format",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read upload",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read upload",
		})
	}

	filename := utils.UniqueFilename(file.Filename)
	mediaURL, err := utils.UploadFileToPath(data, filename, mediaType, "content")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	var thumbnailURL string
	if mediaType == models.MediaImage {
		thumbnailURL, err = utils.GenerateImageThumbnail(data, filename)
	} else {
		thumbnailURL, err = utils.GenerateVideoThumbnail(mediaURL)
	}
	if err != nil {
		// Thumbnails are a nicety; the upload still stands
		cc.logger.Printf("thumbnail generation failed for %s: %v", filename, err)
		thumbnailURL = ""
	}

	item := models.ContentItem{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Title:        title,
		MediaType:    mediaType,
		MediaURL:     mediaURL,
		ThumbnailURL: thumbnailURL,
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(cc.DB, "content").InsertOne(ctx, item); err != nil {
		cc.logger.Printf("content insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save content",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Content uploaded",
		Data:    item,
	})
}

// List returns library items, newest first. Creators see their own uploads;
// admins see everything and may filter by creator.
func (cc *ContentController) List(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	filter := bson.M{"userId": userID}
	if middleware.ExtractRole(c) == models.RoleAdmin {
		delete(filter, "userId")
		if userParam := c.QueryParam("userId"); userParam != "" {
			objID, err := primitive.ObjectIDFromHex(userParam)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid user id",
				})
			}
			filter["userId"] = objID
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(cc.DB, "content").Find(ctx, filter, opts)
	if err != nil {
		cc.logger.Printf("content query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch content",
		})
	}
	defer cursor.Close(ctx)

	var items []models.ContentItem
	if err := cursor.All(ctx, &items); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode content",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Content fetched",
		Data:    items,
	})
}

// Delete removes an item the caller owns (admins can remove any).
func (cc *ContentController) Delete(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content id",
		})
	}

	filter := bson.M{"_id": objID}
	if role, _ := c.Get("role").(string); role != models.RoleAdmin {
		filter["userId"] = userID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(cc.DB, "content").DeleteOne(ctx, filter)
	if err != nil {
		cc.logger.Printf("content delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete content",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Content not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Content deleted",
	})
}
