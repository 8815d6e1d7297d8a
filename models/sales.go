// models/sales.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source platforms for sales records
const (
	SourceTikTok = "TIKTOK"
	SourceShopee = "SHOPEE"
)

// DailySales is one day's sales for a creator on one platform. Records are
// append-only; there are no update or delete flows.
type DailySales struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Date            string             `json:"date" bson:"date"` // YYYY-MM-DD
	Source          string             `json:"source" bson:"source"`
	GMV             float64            `json:"gmv" bson:"gmv"`
	CommissionGross float64            `json:"commissionGross" bson:"commissionGross"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// MonthlySales is a platform-level monthly aggregate entered by admins for
// platforms that only report monthly figures.
type MonthlySales struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Month           string             `json:"month" bson:"month"` // YYYY-MM
	Source          string             `json:"source" bson:"source"`
	GMV             float64            `json:"gmv" bson:"gmv"`
	CommissionGross float64            `json:"commissionGross" bson:"commissionGross"`
	Orders          *int               `json:"orders,omitempty" bson:"orders,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// ValidSource reports whether source is a known platform tag.
func ValidSource(source string) bool {
	return source == SourceTikTok || source == SourceShopee
}

type CreateDailySalesRequest struct {
	UserID          string  `json:"userId,omitempty"` // admin only; creators record for themselves
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Source          string  `json:"source" validate:"required,oneof=TIKTOK SHOPEE"`
	GMV             float64 `json:"gmv"`
	CommissionGross float64 `json:"commissionGross"`
}

type CreateMonthlySalesRequest struct {
	UserID          string  `json:"userId" validate:"required"`
	Month           string  `json:"month" validate:"required,datetime=2006-01"`
	Source          string  `json:"source" validate:"required,oneof=TIKTOK SHOPEE"`
	GMV             float64 `json:"gmv"`
	CommissionGross float64 `json:"commissionGross"`
	Orders          *int    `json:"orders,omitempty"`
}
