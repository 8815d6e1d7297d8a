// models/ledger.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ledger entry types
const (
	LedgerCapitalIn   = "CAPITAL_IN"
	LedgerCapitalOut  = "CAPITAL_OUT"
	LedgerProfitShare = "PROFIT_SHARE"
)

// LedgerEntry is one line in the investor capital ledger.
type LedgerEntry struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Date      string             `json:"date" bson:"date"` // YYYY-MM-DD
	Type      string             `json:"type" bson:"type"`
	Amount    float64            `json:"amount" bson:"amount"`
	Notes     string             `json:"notes,omitempty" bson:"notes,omitempty"`
	ProofLink string             `json:"proofLink,omitempty" bson:"proofLink,omitempty"`
	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ValidLedgerType reports whether t is a known ledger entry type.
func ValidLedgerType(t string) bool {
	switch t {
	case LedgerCapitalIn, LedgerCapitalOut, LedgerProfitShare:
		return true
	}
	return false
}

// LedgerSummary aggregates the ledger: net = in - out - profit share.
type LedgerSummary struct {
	CapitalIn   float64 `json:"capitalIn"`
	CapitalOut  float64 `json:"capitalOut"`
	ProfitShare float64 `json:"profitShare"`
	Net         float64 `json:"net"`
}

type CreateLedgerEntryRequest struct {
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Type   string  `json:"type" validate:"required,oneof=CAPITAL_IN CAPITAL_OUT PROFIT_SHARE"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Notes  string  `json:"notes,omitempty"`
}
