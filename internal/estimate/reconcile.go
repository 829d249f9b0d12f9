package estimate

import (
	"github.com/shopspring/decimal"

	"github.com/joelkehle/claimestimate/internal/claims"
)

var reconcileTolerance = decimal.RequireFromString("0.01")

// Reconciliation compares the reported total with the sum of the items that
// pay (APPLICABLE and POTENTIAL). It is informational; the total is never
// rewritten.
type Reconciliation struct {
	ItemSum    decimal.Decimal `json:"itemSum"`
	Reported   decimal.Decimal `json:"reported"`
	Difference decimal.Decimal `json:"difference"`
	Consistent bool            `json:"consistent"`
}

func Reconcile(r claims.EstimationResult) Reconciliation {
	sum := decimal.Zero
	for _, it := range r.Items {
		if it.Status == claims.StatusNotApplicable {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(it.EstimatedAmount))
	}
	reported := decimal.NewFromFloat(r.TotalEstimatedAmount)
	diff := reported.Sub(sum)
	return Reconciliation{
		ItemSum:    sum,
		Reported:   reported,
		Difference: diff,
		Consistent: diff.Abs().LessThanOrEqual(reconcileTolerance),
	}
}
