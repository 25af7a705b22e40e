// Package cashflow manages the income/expense ledger and its normalized
// views: totals, monthly series, and the investment-transfer split.
package cashflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlmoreno/cartera/internal/domain"
)

// EntryInput is the raw user-submitted form of a cash-flow entry.
type EntryInput struct {
	Date        string  `json:"date"`
	Direction   string  `json:"direction"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
}

// NewEntry validates and normalizes an entry input into a persistable record.
func NewEntry(in EntryInput, defaultCurrency string, ownerID int64) (*domain.CashFlowEntry, error) {
	direction := strings.ToLower(strings.TrimSpace(in.Direction))
	if direction != domain.DirectionIncome && direction != domain.DirectionExpense {
		return nil, fmt.Errorf("%w: direction must be %q or %q",
			domain.ErrInvalid, domain.DirectionIncome, domain.DirectionExpense)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalid)
	}

	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalid)
	}

	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalid)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return &domain.CashFlowEntry{
		ID:          uuid.NewString(),
		Date:        in.Date,
		Direction:   direction,
		Category:    category,
		Amount:      in.Amount,
		Currency:    currency,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
