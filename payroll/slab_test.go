package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agensilive/agensi_backend/models"
)

// The standard agency ladder: no commission up to 5M IDR, 20% to 20M, 30%
// above.
func standardSlabs() []models.CommissionSlab {
	return []models.CommissionSlab{
		{Min: 0, Max: 5_000_000, Rate: 0},
		{Min: 5_000_000, Max: 20_000_000, Rate: 0.20},
		{Min: 20_000_000, Max: 1_000_000_000_000, Rate: 0.30},
	}
}

func TestNormalizeSlabsSortsDefensively(t *testing.T) {
	shuffled := []models.CommissionSlab{
		{Min: 20_000_000, Max: 1_000_000_000_000, Rate: 0.30},
		{Min: 0, Max: 5_000_000, Rate: 0},
		{Min: 5_000_000, Max: 20_000_000, Rate: 0.20},
	}

	sorted, err := NormalizeSlabs(shuffled)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sorted[0].Min)
	assert.Equal(t, 5_000_000.0, sorted[1].Min)
	assert.Equal(t, 20_000_000.0, sorted[2].Min)
}

func TestNormalizeSlabsRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name  string
		slabs []models.CommissionSlab
	}{
		{"empty", nil},
		{"gap between slabs", []models.CommissionSlab{
			{Min: 0, Max: 5_000_000, Rate: 0},
			{Min: 6_000_000, Max: 20_000_000, Rate: 0.20},
		}},
		{"overlapping slabs", []models.CommissionSlab{
			{Min: 0, Max: 5_000_000, Rate: 0},
			{Min: 4_000_000, Max: 20_000_000, Rate: 0.20},
		}},
		{"does not start at zero", []models.CommissionSlab{
			{Min: 1_000_000, Max: 20_000_000, Rate: 0.20},
		}},
		{"inverted bounds", []models.CommissionSlab{
			{Min: 0, Max: 0, Rate: 0.20},
		}},
		{"rate above one", []models.CommissionSlab{
			{Min: 0, Max: 5_000_000, Rate: 1.5},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSlabs(tt.slabs)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestNormalizeSlabsToleratesDecreasingRates(t *testing.T) {
	// Non-decreasing rates are a convention, not an invariant.
	slabs := []models.CommissionSlab{
		{Min: 0, Max: 5_000_000, Rate: 0.30},
		{Min: 5_000_000, Max: 20_000_000, Rate: 0.10},
	}
	_, err := NormalizeSlabs(slabs)
	assert.NoError(t, err)
}

func TestProgressiveBonusBracketByBracket(t *testing.T) {
	slabs, err := NormalizeSlabs(standardSlabs())
	require.NoError(t, err)

	tests := []struct {
		name string
		gmv  float64
		want float64
	}{
		{"zero GMV", 0, 0},
		{"inside free slab", 3_000_000, 0},
		{"exactly on boundary stays in lower slab", 5_000_000, 0},
		{"middle slab applies only above its floor", 10_000_000, 1_000_000},
		{"top of middle slab", 20_000_000, 3_000_000},
		{"spans all slabs", 25_000_000, 4_500_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProgressiveBonus(slabs, tt.gmv)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestProgressiveBonusRejectsNegativeGMV(t *testing.T) {
	slabs, err := NormalizeSlabs(standardSlabs())
	require.NoError(t, err)

	_, err = ProgressiveBonus(slabs, -1)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEstimateBonusMatchesClosedPeriodComputation(t *testing.T) {
	// The live estimate runs the same math as the final payout.
	est, err := EstimateBonus(standardSlabs(), 10_000_000)
	require.NoError(t, err)
	assert.InDelta(t, 1_000_000.0, est, 0.001)
}
