package counting

import "github.com/mamadbah2/stocktake/internal/domain/models"

// Derivation is the outcome of applying a day's count to the previous day's snapshot.
type Derivation struct {
	StartingCount  int
	SoldCalculated int
	FirstDay       bool
}

// Derive computes the starting count and sold quantity for a new count.
// Without a prior snapshot the count initializes stock and nothing is sold.
// Otherwise sold = starting + restocks - current, floored at zero so that
// miscounts and returns never produce negative sales.
func Derive(prior *models.CountRecord, currentCount, restocksReceived int) Derivation {
	if prior == nil {
		return Derivation{StartingCount: currentCount, SoldCalculated: 0, FirstDay: true}
	}

	starting := prior.CurrentCount
	sold := starting + restocksReceived - currentCount
	if sold < 0 {
		sold = 0
	}

	return Derivation{StartingCount: starting, SoldCalculated: sold}
}
