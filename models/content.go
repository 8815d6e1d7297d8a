// models/content.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media types for content uploads
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// ContentItem is a clip or promo asset a creator uploaded to the shared
// library.
type ContentItem struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	Title        string             `json:"title" bson:"title"`
	MediaType    string             `json:"mediaType" bson:"mediaType"`
	MediaURL     string             `json:"mediaUrl" bson:"mediaUrl"`
	ThumbnailURL string             `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
