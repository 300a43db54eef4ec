// Package ledger keeps a disposable, local prediction of gift stock used while planning an
// allocation. It never writes through to the backend.
package ledger

import "workshop-dispatch/internal/models"

type StockLedger struct {
	stock map[int]int
}

func New(gifts []models.Gift) *StockLedger {
	l := &StockLedger{}
	l.Initialize(gifts)
	return l
}

// Initialize replaces the tracked quantities with a point-in-time snapshot.
func (l *StockLedger) Initialize(gifts []models.Gift) {
	l.stock = make(map[int]int, len(gifts))
	for _, g := range gifts {
		l.stock[g.GiftID] = g.StockQuantity
	}
}

// Remaining returns the tracked quantity, 0 for unknown gifts.
func (l *StockLedger) Remaining(giftID int) int {
	return l.stock[giftID]
}

// Reserve takes one unit. Callers check Remaining first; empty or unknown gifts are left untouched.
func (l *StockLedger) Reserve(giftID int) {
	if q, ok := l.stock[giftID]; ok && q > 0 {
		l.stock[giftID] = q - 1
	}
}
