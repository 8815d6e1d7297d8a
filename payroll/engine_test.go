package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agensilive/agensi_backend/models"
)

func baseRules() models.PayrollRules {
	return models.PayrollRules{
		DailyLiveTargetMinutes: 120,
		FloorPct:               0.5,
		CapPct:                 1.0,
		MinimumMinutes:         600,
		Workdays:               []int{1, 2, 3, 4, 5},
		MinimumPolicy:          models.PolicyProrataWithFlag,
	}
}

func baseInput() Input {
	return Input{
		Profile: models.CreatorProfile{
			ID:         primitive.NewObjectID(),
			Role:       models.RoleCreator,
			Status:     models.StatusActive,
			BaseSalary: 3_000_000,
		},
		Period: "2025-01",
		Rules:  baseRules(),
		Slabs:  standardSlabs(),
	}
}

func closedSession(minutes int) models.LiveSession {
	checkIn := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(time.Duration(minutes) * time.Minute)
	return models.LiveSession{
		UserID:          primitive.NewObjectID(),
		Date:            checkIn.Format("2006-01-02"),
		Shift:           models.ShiftMorning,
		CheckIn:         checkIn,
		CheckOut:        &checkOut,
		DurationMinutes: &minutes,
	}
}

func TestExpectedWorkdays(t *testing.T) {
	// January 2025 has 31 days and 23 Mon-Fri weekdays; New Year's Day
	// falls on a Wednesday.
	tests := []struct {
		name     string
		workdays []int
		holidays []string
		want     int
	}{
		{"weekdays only", []int{1, 2, 3, 4, 5}, nil, 23},
		{"holiday on a workday reduces count by one", []int{1, 2, 3, 4, 5}, []string{"2025-01-01"}, 22},
		{"holiday on a non-workday changes nothing", []int{1, 2, 3, 4, 5}, []string{"2025-01-05"}, 23},
		{"no workdays configured", nil, nil, 0},
		{"every day", []int{0, 1, 2, 3, 4, 5, 6}, nil, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpectedWorkdays("2025-01", tt.workdays, tt.holidays)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeFullAttendanceHitsRatioOne(t *testing.T) {
	in := baseInput()
	// 23 workdays x 120 target minutes = 2760 expected.
	in.Sessions = []models.LiveSession{closedSession(2760)}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 23, res.ExpectedWorkdays)
	assert.Equal(t, 2760, res.ExpectedMinutes)
	assert.Equal(t, 2760, res.ActualMinutes)
	assert.InDelta(t, 1.0, res.Ratio, 0.0001)
	assert.InDelta(t, 3_000_000.0, res.BaseComponent, 0.001)
	assert.False(t, res.BelowMinimum)
}

func TestComputeCapClampsFullAttendance(t *testing.T) {
	in := baseInput()
	in.Rules.CapPct = 0.9
	in.Sessions = []models.LiveSession{closedSession(2760)}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.RawRatio, 0.0001)
	assert.InDelta(t, 0.9, res.Ratio, 0.0001)
	assert.InDelta(t, 2_700_000.0, res.BaseComponent, 0.001)
}

func TestComputeFloorBoundsShortfall(t *testing.T) {
	in := baseInput()
	in.Sessions = []models.LiveSession{closedSession(100)}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.Less(t, res.RawRatio, 0.5)
	assert.InDelta(t, 0.5, res.Ratio, 0.0001)
	assert.InDelta(t, 1_500_000.0, res.BaseComponent, 0.001)
	assert.True(t, res.BelowMinimum)
}

func TestComputeOpenSessionsContributeNothing(t *testing.T) {
	in := baseInput()
	open := closedSession(2760)
	open.CheckOut = nil
	open.DurationMinutes = nil
	in.Sessions = []models.LiveSession{open, closedSession(300)}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 300, res.ActualMinutes)
}

func TestComputeZeroExpectedWorkdaysPaysInFull(t *testing.T) {
	in := baseInput()
	in.Rules.Workdays = nil
	in.Rules.MinimumMinutes = 0

	res, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExpectedMinutes)
	assert.InDelta(t, 1.0, res.RawRatio, 0.0001)
	assert.InDelta(t, 3_000_000.0, res.BaseComponent, 0.001)
}

func TestComputeBelowMinimumOnlyFlags(t *testing.T) {
	in := baseInput()
	in.Sessions = []models.LiveSession{closedSession(500)}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.True(t, res.BelowMinimum)
	// prorata_with_flag does not cut pay beyond the pro-ration itself.
	expected := 3_000_000 * res.Ratio
	assert.InDelta(t, expected, res.BaseComponent, 0.001)
}

func TestComputeCommissionIsProgressive(t *testing.T) {
	in := baseInput()
	in.Sessions = []models.LiveSession{closedSession(2760)}
	in.Daily = []models.DailySales{
		{GMV: 4_000_000, Source: models.SourceTikTok},
		{GMV: 6_000_000, Source: models.SourceShopee},
	}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.InDelta(t, 10_000_000.0, res.TotalGMV, 0.001)
	assert.InDelta(t, 1_000_000.0, res.CommissionBonus, 0.001)
	assert.InDelta(t, res.BaseComponent+res.CommissionBonus, res.TotalPayout, 0.001)
}

func TestComputeSumsDailyAndMonthlySales(t *testing.T) {
	in := baseInput()
	in.Daily = []models.DailySales{{GMV: 2_000_000}}
	in.Monthly = []models.MonthlySales{{GMV: 3_000_000}}

	res, err := Compute(in)
	require.NoError(t, err)
	assert.InDelta(t, 5_000_000.0, res.TotalGMV, 0.001)
}

func TestComputeRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"negative base salary", func(in *Input) { in.Profile.BaseSalary = -1 }},
		{"negative GMV", func(in *Input) { in.Daily = []models.DailySales{{GMV: -100}} }},
		{"unsupported minimum policy", func(in *Input) { in.Rules.MinimumPolicy = "hard_cutoff" }},
		{"floor above cap", func(in *Input) { in.Rules.FloorPct = 0.9; in.Rules.CapPct = 0.5 }},
		{"zero target minutes", func(in *Input) { in.Rules.DailyLiveTargetMinutes = 0 }},
		{"workday index out of range", func(in *Input) { in.Rules.Workdays = []int{7} }},
		{"non-contiguous slabs", func(in *Input) {
			in.Slabs = []models.CommissionSlab{
				{Min: 0, Max: 5_000_000, Rate: 0},
				{Min: 7_000_000, Max: 20_000_000, Rate: 0.2},
			}
		}},
		{"bad period", func(in *Input) { in.Period = "January 2025" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			res, err := Compute(in)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Nil(t, res)
		})
	}
}

func TestComputeAllFailsWholeBatch(t *testing.T) {
	good := baseInput()
	bad := baseInput()
	bad.Profile.BaseSalary = -1

	results, err := ComputeAll([]Input{good, bad})
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestComputeIsDeterministic(t *testing.T) {
	in := baseInput()
	in.Sessions = []models.LiveSession{closedSession(1500)}
	in.Daily = []models.DailySales{{GMV: 8_000_000}}

	first, err := Compute(in)
	require.NoError(t, err)
	second, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
