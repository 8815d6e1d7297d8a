// models/inventory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryItem tracks product samples handed to creators for live sessions.
type InventoryItem struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	SKU        string              `json:"sku" bson:"sku"`
	Name       string              `json:"name" bson:"name"`
	Quantity   int                 `json:"quantity" bson:"quantity"`
	Location   string              `json:"location,omitempty" bson:"location,omitempty"`
	AssignedTo *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type CreateInventoryItemRequest struct {
	SKU      string `json:"sku" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Location string `json:"location,omitempty"`
}

type UpdateInventoryItemRequest struct {
	Quantity   *int    `json:"quantity,omitempty"`
	Location   *string `json:"location,omitempty"`
	AssignedTo *string `json:"assignedTo,omitempty"` // profile id, empty string unassigns
}
