// payroll/slab.go
package payroll

import (
	"fmt"
	"sort"

	"github.com/agensilive/agensi_backend/models"
)

// NormalizeSlabs sorts slabs by lower bound and verifies they form a
// contiguous, non-overlapping ladder starting at zero. Input order is not
// trusted. A gap or overlap is a configuration error: silently skipping or
// double-counting GMV in the gap is worse than refusing to compute.
func NormalizeSlabs(slabs []models.CommissionSlab) ([]models.CommissionSlab, error) {
	if len(slabs) == 0 {
		return nil, &models.ValidationError{Field: "slabs", Message: "at least one commission slab is required"}
	}

	sorted := make([]models.CommissionSlab, len(slabs))
	copy(sorted, slabs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if sorted[0].Min != 0 {
		return nil, &models.ValidationError{Field: "slabs", Message: "first slab must start at 0"}
	}
	for i, s := range sorted {
		if s.Max <= s.Min {
			return nil, &models.ValidationError{
				Field:   "slabs",
				Message: fmt.Sprintf("slab %d has max %.0f <= min %.0f", i, s.Max, s.Min),
			}
		}
		if s.Rate < 0 || s.Rate > 1 {
			return nil, &models.ValidationError{
				Field:   "slabs",
				Message: fmt.Sprintf("slab %d rate %.4f outside [0,1]", i, s.Rate),
			}
		}
		if i > 0 && sorted[i-1].Max != s.Min {
			return nil, &models.ValidationError{
				Field:   "slabs",
				Message: fmt.Sprintf("slabs %d and %d are not contiguous (%.0f vs %.0f)", i-1, i, sorted[i-1].Max, s.Min),
			}
		}
	}
	return sorted, nil
}

// ProgressiveBonus computes the commission bracket by bracket, like a tax
// table: each slab contributes rate * (min(slab.max, gmv) - slab.min) for
// the portion of GMV it covers. GMV exactly on a boundary belongs to the
// lower slab and takes nothing from the next one. Slabs must already be
// normalized.
func ProgressiveBonus(slabs []models.CommissionSlab, gmv float64) (float64, error) {
	if gmv < 0 {
		return 0, &models.ValidationError{Field: "gmv", Message: "GMV must not be negative"}
	}
	bonus := 0.0
	for _, s := range slabs {
		if gmv <= s.Min {
			break
		}
		upper := s.Max
		if gmv < upper {
			upper = gmv
		}
		bonus += s.Rate * (upper - s.Min)
	}
	return bonus, nil
}
