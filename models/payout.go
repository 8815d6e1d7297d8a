// models/payout.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout batch states
const (
	PayoutDraft     = "DRAFT"
	PayoutPublished = "PUBLISHED"
)

// PayoutResult is the engine's output for one creator and one month. Every
// intermediate figure is carried so a payout can always be explained.
type PayoutResult struct {
	UserID           primitive.ObjectID `json:"userId" bson:"userId"`
	Period           string             `json:"period" bson:"period"` // YYYY-MM
	ExpectedWorkdays int                `json:"expectedWorkdays" bson:"expectedWorkdays"`
	ExpectedMinutes  int                `json:"expectedMinutes" bson:"expectedMinutes"`
	ActualMinutes    int                `json:"actualMinutes" bson:"actualMinutes"`
	RawRatio         float64            `json:"rawRatio" bson:"rawRatio"`
	Ratio            float64            `json:"ratio" bson:"ratio"` // clamped to [floor,cap]
	BaseComponent    float64            `json:"baseComponent" bson:"baseComponent"`
	TotalGMV         float64            `json:"totalGmv" bson:"totalGmv"`
	CommissionBonus  float64            `json:"commissionBonus" bson:"commissionBonus"`
	TotalPayout      float64            `json:"totalPayout" bson:"totalPayout"`
	BelowMinimum     bool               `json:"belowMinimum" bson:"belowMinimum"`
}

// PayoutRecord is a persisted PayoutResult inside a payroll batch.
type PayoutRecord struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BatchID   string             `json:"batchId" bson:"batchId"`
	Result    PayoutResult       `json:"result" bson:"result"`
	State     string             `json:"state" bson:"state"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type RunPayrollRequest struct {
	Period string `json:"period" validate:"required,datetime=2006-01"`
}
