// models/rules.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Minimum-minutes policies. Only PolicyProrataWithFlag has defined behavior;
// any other stored value fails closed with a ValidationError instead of
// guessing.
const (
	PolicyProrataWithFlag = "prorata_with_flag"
)

// PayrollRules is the agency-wide singleton controlling base-salary
// pro-ration. Floor and cap bound the payable fraction of base salary no
// matter how far actual live minutes deviate from target.
type PayrollRules struct {
	ID                     primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DailyLiveTargetMinutes int                `json:"dailyLiveTargetMinutes" bson:"dailyLiveTargetMinutes" validate:"required,gt=0"`
	FloorPct               float64            `json:"floorPct" bson:"floorPct" validate:"gte=0,lte=1"`
	CapPct                 float64            `json:"capPct" bson:"capPct" validate:"gte=0,lte=1"`
	MinimumMinutes         int                `json:"minimumMinutes" bson:"minimumMinutes" validate:"gte=0"`
	Workdays               []int              `json:"workdays" bson:"workdays"` // weekday indices, 0=Sunday
	Holidays               []string           `json:"holidays" bson:"holidays"` // YYYY-MM-DD
	MinimumPolicy          string             `json:"minimumPolicy" bson:"minimumPolicy"`
	UpdatedAt              time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy              primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}

// Validate enforces the rule invariants before a row is written or used.
func (r *PayrollRules) Validate() error {
	if r.DailyLiveTargetMinutes <= 0 {
		return &ValidationError{Field: "dailyLiveTargetMinutes", Message: "must be a positive number of minutes"}
	}
	if r.FloorPct < 0 || r.FloorPct > 1 {
		return &ValidationError{Field: "floorPct", Message: "must be within [0,1]"}
	}
	if r.CapPct < 0 || r.CapPct > 1 {
		return &ValidationError{Field: "capPct", Message: "must be within [0,1]"}
	}
	if r.FloorPct > r.CapPct {
		return &ValidationError{Field: "floorPct", Message: "floor percentage exceeds cap percentage"}
	}
	if r.MinimumMinutes < 0 {
		return &ValidationError{Field: "minimumMinutes", Message: "must not be negative"}
	}
	seen := make(map[int]bool)
	for _, d := range r.Workdays {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "workdays", Message: "weekday index out of range 0..6"}
		}
		if seen[d] {
			return &ValidationError{Field: "workdays", Message: "duplicate weekday index"}
		}
		seen[d] = true
	}
	for _, h := range r.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return &ValidationError{Field: "holidays", Message: "invalid date: " + h}
		}
	}
	if r.MinimumPolicy != PolicyProrataWithFlag {
		return &ValidationError{Field: "minimumPolicy", Message: "unsupported minimum policy: " + r.MinimumPolicy}
	}
	return nil
}

// CommissionSlab is one contiguous GMV bracket with its commission rate.
// Brackets apply progressively, tax-style.
type CommissionSlab struct {
	Min  float64 `json:"min" bson:"min"`
	Max  float64 `json:"max" bson:"max"`
	Rate float64 `json:"rate" bson:"rate"`
}

// CommissionRules is the slab set used for bonus computation; the agency
// holds one default set, and a creator profile may reference an override.
type CommissionRules struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Default   bool               `json:"default" bson:"default"`
	Slabs     []CommissionSlab   `json:"slabs" bson:"slabs"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
}
