package reporting

import (
	"fmt"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// Compare classifies calculated sales against the sales actually rung up.
// A positive difference means goods are unaccounted for.
func Compare(calculatedSales, actualSales int) models.TheftCheck {
	diff := calculatedSales - actualSales
	check := models.TheftCheck{
		CalculatedSales: calculatedSales,
		ActualSales:     actualSales,
		Difference:      diff,
	}

	switch {
	case diff == 0:
		check.Status = models.TheftMatch
		check.Message = "No discrepancy detected. Sales match."
	case diff > 0:
		check.Status = models.TheftShortage
		check.Message = fmt.Sprintf("Potential theft: %d items missing. Calculated sales exceed actual receipts.", diff)
	default:
		check.Status = models.TheftSurplus
		check.Message = fmt.Sprintf("Actual sales exceed calculated sales by %d items. Check for unrecorded restocks or counting errors.", -diff)
	}

	return check
}
