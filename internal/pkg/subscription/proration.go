package subscription

import (
	"math"
	"time"

	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

const millisPerDay = 86400000

// ProrationParams carries everything CalculateProration needs. Prices are the
// per-period prices from the plan configuration; Now is injected so the
// calculation stays a pure function.
type ProrationParams struct {
	CurrentMonthlyPrice decimal.Decimal
	CurrentYearlyPrice  decimal.Decimal
	NewMonthlyPrice     decimal.Decimal
	NewYearlyPrice      decimal.Decimal
	BillingCycle        string
	SubscriptionStart   time.Time
	SubscriptionEnd     time.Time
	Now                 time.Time
}

// ProrationResult is the outcome of a straight-line day-based proration.
// All monetary amounts are rounded to 2 decimal places.
type ProrationResult struct {
	CurrentPrice  decimal.Decimal `json:"current_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
	TotalDays     int             `json:"total_days"`
	DaysRemaining int             `json:"days_remaining"`
	UnusedAmount  decimal.Decimal `json:"unused_amount"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
}

// ceilDays counts calendar days between two instants, rounding any partial
// day up. Matches the millisecond-based day ceiling of the billing rules.
func ceilDays(from, to time.Time) int {
	ms := to.Sub(from).Milliseconds()
	return int(math.Ceil(float64(ms) / float64(millisPerDay)))
}

// CalculateProration computes the unused value of the current plan and the
// prorated cost of the new plan over the remaining days of the billing
// period. This is deliberately a day-based approximation: both day counts use
// a calendar-day ceiling, so results across 28-31 day months differ slightly
// from a strict second-based fraction. Changing that would change billing
// amounts, so the approximation is preserved.
func CalculateProration(p ProrationParams) (*ProrationResult, error) {
	totalDays := ceilDays(p.SubscriptionStart, p.SubscriptionEnd)
	if totalDays <= 0 {
		return nil, apperr.Validation("invalid billing period: %s to %s",
			p.SubscriptionStart.Format(time.RFC3339), p.SubscriptionEnd.Format(time.RFC3339))
	}

	daysRemaining := ceilDays(p.Now, p.SubscriptionEnd)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	currentPrice := p.CurrentMonthlyPrice
	newPrice := p.NewMonthlyPrice
	if normalizeCycle(p.BillingCycle) == models.BillingCycleYearly {
		twelve := decimal.NewFromInt(12)
		currentPrice = p.CurrentYearlyPrice.Div(twelve)
		newPrice = p.NewYearlyPrice.Div(twelve)
	}

	days := decimal.NewFromInt(int64(totalDays))
	remaining := decimal.NewFromInt(int64(daysRemaining))

	unused := currentPrice.Div(days).Mul(remaining)
	newAmount := newPrice.Div(days).Mul(remaining)
	credit := unused.Sub(newAmount)
	if credit.IsNegative() {
		credit = decimal.Zero
	}

	return &ProrationResult{
		CurrentPrice:  currentPrice.Round(2),
		NewPrice:      newPrice.Round(2),
		TotalDays:     totalDays,
		DaysRemaining: daysRemaining,
		UnusedAmount:  unused.Round(2),
		NewAmount:     newAmount.Round(2),
		CreditAmount:  credit.Round(2),
	}, nil
}
