package cashflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/domain"
)

// EntryLister is the slice of the entry repository the normalizer needs.
type EntryLister interface {
	ListByOwner(ownerID int64) ([]domain.CashFlowEntry, error)
}

// Summary holds normalized cash-flow totals in the primary currency.
// Expenses in the Investments category are transfers into the brokerage
// ledger, not spending, and are reported separately.
type Summary struct {
	TotalIncome            float64 `json:"total_income"`
	TotalExpenseGross      float64 `json:"total_expense_gross"`
	TransfersToInvestments float64 `json:"transfers_to_investments"`
	TotalExpenseNet        float64 `json:"total_expense_net"`
	NetSavings             float64 `json:"net_savings"`
	ExchangeRate           float64 `json:"exchange_rate"`
}

// MonthBucket is one month of the series. Both directions are always
// present; a month with no income reports 0, never a missing key.
type MonthBucket struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// CurrentMonth is the calendar-month view with investment transfers split
// out from gross spending.
type CurrentMonth struct {
	Month                 string  `json:"month"` // YYYY-MM
	Income                float64 `json:"income"`
	GrossExpense          float64 `json:"gross_expense"`
	InvestmentTransfers   float64 `json:"investment_transfers"`
	ExpenseNetOfTransfers float64 `json:"expense_net_of_transfers"`
}

// Service normalizes cash-flow entries to the primary currency and builds
// the aggregate views.
type Service struct {
	entries   EntryLister
	rates     domain.RateSource
	primary   string
	secondary string
	log       zerolog.Logger

	// now is swappable for tests of the current-month view.
	now func() time.Time
}

// NewService creates a new cash-flow service.
func NewService(entries EntryLister, rates domain.RateSource, primaryCurrency, secondaryCurrency string, log zerolog.Logger) *Service {
	return &Service{
		entries:   entries,
		rates:     rates,
		primary:   primaryCurrency,
		secondary: secondaryCurrency,
		log:       log.With().Str("service", "cashflow").Logger(),
		now:       time.Now,
	}
}

// Summarize returns normalized all-time totals for the owner.
func (s *Service) Summarize(ctx context.Context, ownerID int64) (*Summary, error) {
	entries, rate, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ExchangeRate: rate}
	for _, e := range entries {
		amount := s.normalize(e.Amount, e.Currency, rate)
		switch e.Direction {
		case domain.DirectionIncome:
			summary.TotalIncome += amount
		case domain.DirectionExpense:
			summary.TotalExpenseGross += amount
			if e.Category == domain.CategoryInvestments {
				summary.TransfersToInvestments += amount
			}
		}
	}

	summary.TotalExpenseNet = summary.TotalExpenseGross - summary.TransfersToInvestments
	summary.NetSavings = summary.TotalIncome - summary.TotalExpenseNet

	return summary, nil
}

// MonthlySeries buckets entries by calendar month, oldest first.
func (s *Service) MonthlySeries(ctx context.Context, ownerID int64) ([]MonthBucket, error) {
	entries, rate, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*MonthBucket)
	for _, e := range entries {
		if len(e.Date) < 7 {
			continue
		}
		month := e.Date[:7]

		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthBucket{Month: month}
			buckets[month] = bucket
		}

		amount := s.normalize(e.Amount, e.Currency, rate)
		switch e.Direction {
		case domain.DirectionIncome:
			bucket.Income += amount
		case domain.DirectionExpense:
			bucket.Expense += amount
		}
	}

	series := make([]MonthBucket, 0, len(buckets))
	for _, bucket := range buckets {
		series = append(series, *bucket)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })

	return series, nil
}

// ThisMonth returns the current calendar month with investment transfers
// split out from gross spending.
func (s *Service) ThisMonth(ctx context.Context, ownerID int64) (*CurrentMonth, error) {
	entries, rate, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	month := s.now().UTC().Format("2006-01")
	view := &CurrentMonth{Month: month}

	for _, e := range entries {
		if len(e.Date) < 7 || e.Date[:7] != month {
			continue
		}

		amount := s.normalize(e.Amount, e.Currency, rate)
		switch e.Direction {
		case domain.DirectionIncome:
			view.Income += amount
		case domain.DirectionExpense:
			view.GrossExpense += amount
			if e.Category == domain.CategoryInvestments {
				view.InvestmentTransfers += amount
			}
		}
	}

	view.ExpenseNetOfTransfers = view.GrossExpense - view.InvestmentTransfers
	return view, nil
}

// NetContributions returns the capital moved into the brokerage ledger:
// Investments-category expenses minus Investments-category income
// (withdrawals), normalized to the primary currency.
func (s *Service) NetContributions(ctx context.Context, ownerID int64) (float64, error) {
	entries, rate, err := s.load(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	var net float64
	for _, e := range entries {
		if e.Category != domain.CategoryInvestments {
			continue
		}
		amount := s.normalize(e.Amount, e.Currency, rate)
		switch e.Direction {
		case domain.DirectionExpense:
			net += amount
		case domain.DirectionIncome:
			net -= amount
		}
	}

	return net, nil
}

func (s *Service) load(ctx context.Context, ownerID int64) ([]domain.CashFlowEntry, float64, error) {
	entries, err := s.entries.ListByOwner(ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	rate, err := s.rates.GetRate(ctx, s.primary, s.secondary)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	return entries, rate, nil
}

// normalize converts an amount to the primary currency. The reference rate
// is secondary units per one primary unit, so non-primary amounts divide.
func (s *Service) normalize(amount float64, currency string, rate float64) float64 {
	if currency == s.primary || rate == 0 {
		return amount
	}
	return amount / rate
}
