package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the derived view over the expense list for a reference month.
type Stats struct {
	TotalSpent        decimal.Decimal              `json:"totalSpent"`
	MonthlySpent      decimal.Decimal              `json:"monthlySpent"`
	CategorySpendings map[Category]decimal.Decimal `json:"categorySpendings"`
	SavingsGoal       decimal.Decimal              `json:"savingsGoal"`
	CurrentSavings    decimal.Decimal              `json:"currentSavings"`
}

// CategoryAmount pairs a category with the amount spent on it.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ComputeStats folds expenses into Stats for the calendar month containing
// now. TotalSpent covers every expense; everything else is month-scoped.
// Categories with no spending in the month are absent from the map.
func ComputeStats(expenses []Expense, savingsGoal decimal.Decimal, now time.Time) Stats {
	s := Stats{
		TotalSpent:        decimal.Zero,
		MonthlySpent:      decimal.Zero,
		CategorySpendings: make(map[Category]decimal.Decimal),
		SavingsGoal:       savingsGoal,
	}
	for _, e := range expenses {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		if !e.Date.InMonthOf(now) {
			continue
		}
		s.MonthlySpent = s.MonthlySpent.Add(e.Amount)
		s.CategorySpendings[e.Category] = s.CategorySpendings[e.Category].Add(e.Amount)
	}
	s.CurrentSavings = decimal.Max(decimal.Zero, savingsGoal.Sub(s.MonthlySpent))
	return s
}

// Spent returns the month's spending in c, zero when there is none.
func (s Stats) Spent(c Category) decimal.Decimal {
	return s.CategorySpendings[c]
}

// OnTrack reports whether monthly spending stays strictly below the goal.
func (s Stats) OnTrack() bool {
	return s.CurrentSavings.IsPositive()
}

// Overage is how far monthly spending exceeds the goal, never negative.
func (s Stats) Overage() decimal.Decimal {
	return decimal.Max(decimal.Zero, s.MonthlySpent.Sub(s.SavingsGoal))
}

// RemainingPercent is the share of the goal not yet spent this month.
// A non-positive goal yields zero.
func (s Stats) RemainingPercent() decimal.Decimal {
	if !s.SavingsGoal.IsPositive() {
		return decimal.Zero
	}
	return s.SavingsGoal.Sub(s.MonthlySpent).Div(s.SavingsGoal).Mul(decimal.NewFromInt(100))
}

// SavingsProgress is CurrentSavings as a percentage of the goal, clamped to
// [0, 100].
func (s Stats) SavingsProgress() decimal.Decimal {
	if !s.SavingsGoal.IsPositive() {
		return decimal.Zero
	}
	p := s.CurrentSavings.Div(s.SavingsGoal).Mul(decimal.NewFromInt(100))
	return decimal.Min(decimal.NewFromInt(100), decimal.Max(decimal.Zero, p))
}

// TopCategory returns the category with the largest month spending. Equal
// amounts resolve to the category listed first in Categories.
func (s Stats) TopCategory() (CategoryAmount, bool) {
	var top CategoryAmount
	found := false
	for _, c := range categories {
		amt, ok := s.CategorySpendings[c]
		if !ok {
			continue
		}
		if !found || amt.GreaterThan(top.Amount) {
			top = CategoryAmount{Category: c, Amount: amt}
			found = true
		}
	}
	return top, found
}

// Breakdown lists month spending per category, largest first.
func (s Stats) Breakdown() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.CategorySpendings))
	for c, amt := range s.CategorySpendings {
		out = append(out, CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category.rank() < out[j].Category.rank()
	})
	return out
}

// RecentExpenses returns up to n expenses from the front of the list, which
// is kept newest first.
func RecentExpenses(expenses []Expense, n int) []Expense {
	if n > len(expenses) {
		n = len(expenses)
	}
	if n < 0 {
		n = 0
	}
	return expenses[:n]
}
