// payroll/engine.go
package payroll

import (
	"time"

	"github.com/agensilive/agensi_backend/models"
)

// Input bundles everything one payout computation needs. The engine does no
// I/O; the caller fetches sessions, sales and rules up front.
type Input struct {
	Profile models.CreatorProfile
	Period  string // YYYY-MM
	Rules   models.PayrollRules
	Slabs   []models.CommissionSlab

	Sessions []models.LiveSession
	Daily    []models.DailySales
	Monthly  []models.MonthlySales
}

// Compute derives the full payout for one creator and one month. It fails
// with a ValidationError on malformed configuration or negative financial
// inputs; there is never a partial result.
func Compute(in Input) (*models.PayoutResult, error) {
	if _, err := time.Parse("2006-01", in.Period); err != nil {
		return nil, &models.ValidationError{Field: "period", Message: "expected YYYY-MM"}
	}
	if in.Profile.BaseSalary < 0 {
		return nil, &models.ValidationError{Field: "baseSalary", Message: "base salary must not be negative"}
	}
	if err := in.Rules.Validate(); err != nil {
		return nil, err
	}
	slabs, err := NormalizeSlabs(in.Slabs)
	if err != nil {
		return nil, err
	}

	gmv, err := totalGMV(in.Daily, in.Monthly)
	if err != nil {
		return nil, err
	}

	expectedWorkdays, err := ExpectedWorkdays(in.Period, in.Rules.Workdays, in.Rules.Holidays)
	if err != nil {
		return nil, err
	}
	expectedMinutes := expectedWorkdays * in.Rules.DailyLiveTargetMinutes
	actualMinutes := closedMinutes(in.Sessions)

	// No expected work means nothing to pro-rate against: full base pay.
	rawRatio := 1.0
	if expectedMinutes > 0 {
		rawRatio = float64(actualMinutes) / float64(expectedMinutes)
	}
	ratio := clamp(rawRatio, in.Rules.FloorPct, in.Rules.CapPct)
	base := in.Profile.BaseSalary * ratio

	// Under prorata_with_flag the shortfall is already reflected by the
	// pro-ration; the flag just marks the payout for manual review.
	belowMinimum := actualMinutes < in.Rules.MinimumMinutes

	bonus, err := ProgressiveBonus(slabs, gmv)
	if err != nil {
		return nil, err
	}

	return &models.PayoutResult{
		UserID:           in.Profile.ID,
		Period:           in.Period,
		ExpectedWorkdays: expectedWorkdays,
		ExpectedMinutes:  expectedMinutes,
		ActualMinutes:    actualMinutes,
		RawRatio:         rawRatio,
		Ratio:            ratio,
		BaseComponent:    base,
		TotalGMV:         gmv,
		CommissionBonus:  bonus,
		TotalPayout:      base + bonus,
		BelowMinimum:     belowMinimum,
	}, nil
}

// EstimateBonus is the live, not-yet-final bonus figure shown on dashboards.
// It runs the same progressive computation against the running GMV and makes
// no assumption that the period has ended.
func EstimateBonus(slabs []models.CommissionSlab, runningGMV float64) (float64, error) {
	normalized, err := NormalizeSlabs(slabs)
	if err != nil {
		return 0, err
	}
	return ProgressiveBonus(normalized, runningGMV)
}

// ExpectedWorkdays counts calendar days of the month whose weekday is in
// workdays (0=Sunday) and that are not listed as holidays.
func ExpectedWorkdays(period string, workdays []int, holidays []string) (int, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return 0, &models.ValidationError{Field: "period", Message: "expected YYYY-MM"}
	}

	workdaySet := make(map[time.Weekday]bool, len(workdays))
	for _, d := range workdays {
		if d < 0 || d > 6 {
			return 0, &models.ValidationError{Field: "workdays", Message: "weekday index out of range 0..6"}
		}
		workdaySet[time.Weekday(d)] = true
	}
	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			return 0, &models.ValidationError{Field: "holidays", Message: "invalid date: " + h}
		}
		holidaySet[h] = true
	}

	count := 0
	end := start.AddDate(0, 1, 0)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if workdaySet[d.Weekday()] && !holidaySet[d.Format("2006-01-02")] {
			count++
		}
	}
	return count, nil
}

// closedMinutes sums the durations of closed sessions; an open session
// contributes nothing until it is clocked out.
func closedMinutes(sessions []models.LiveSession) int {
	total := 0
	for _, s := range sessions {
		if s.CheckOut == nil || s.DurationMinutes == nil {
			continue
		}
		total += *s.DurationMinutes
	}
	return total
}

func totalGMV(daily []models.DailySales, monthly []models.MonthlySales) (float64, error) {
	total := 0.0
	for _, d := range daily {
		if d.GMV < 0 {
			return 0, &models.ValidationError{Field: "gmv", Message: "negative GMV in daily sales record"}
		}
		total += d.GMV
	}
	for _, m := range monthly {
		if m.GMV < 0 {
			return 0, &models.ValidationError{Field: "gmv", Message: "negative GMV in monthly sales record"}
		}
		total += m.GMV
	}
	return total, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// batch helpers

// ComputeAll runs the engine for a set of creators and fails the whole batch
// on the first error: a payroll run never publishes partial figures.
func ComputeAll(inputs []Input) ([]models.PayoutResult, error) {
	results := make([]models.PayoutResult, 0, len(inputs))
	for _, in := range inputs {
		r, err := Compute(in)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}
