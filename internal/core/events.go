package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a ledger change worth telling the user about.
type EventType string

const (
	EventExpenseAdded    EventType = "expense.added"
	EventExpenseRemoved  EventType = "expense.removed"
	EventExpensesCleared EventType = "expenses.cleared"
	EventGoalUpdated     EventType = "goal.updated"
	EventSessionStarted  EventType = "session.started"
	EventSessionEnded    EventType = "session.ended"
)

// Event is a notification about a ledger change. Title and Description are
// the user-facing text; the remaining fields describe what changed.
type Event struct {
	ID          string           `json:"id"`
	Type        EventType        `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ExpenseID   string           `json:"expenseId,omitempty"`
	Category    Category         `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

func newEvent(t EventType, title, desc string, now time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		Title:       title,
		Description: desc,
		OccurredAt:  now.UTC(),
	}
}

func ExpenseAddedEvent(e Expense, now time.Time) Event {
	ev := newEvent(EventExpenseAdded,
		fmt.Sprintf("%s Expense Added", e.Category.Emoji()),
		fmt.Sprintf("$%s for %s", e.Amount.String(), e.Description), now)
	ev.ExpenseID = e.ID
	ev.Category = e.Category
	amt := e.Amount
	ev.Amount = &amt
	return ev
}

func ExpenseRemovedEvent(e Expense, now time.Time) Event {
	ev := newEvent(EventExpenseRemoved, "Expense removed",
		fmt.Sprintf("$%s expense deleted", e.Amount.String()), now)
	ev.ExpenseID = e.ID
	ev.Category = e.Category
	amt := e.Amount
	ev.Amount = &amt
	return ev
}

func ExpensesClearedEvent(now time.Time) Event {
	return newEvent(EventExpensesCleared, "All expenses cleared", "Fresh start! 🌟", now)
}

func GoalUpdatedEvent(goal decimal.Decimal, now time.Time) Event {
	ev := newEvent(EventGoalUpdated, "🎯 Savings goal updated!", fmt.Sprintf("New target: $%s", goal.String()), now)
	g := goal
	ev.Amount = &g
	return ev
}

func SessionStartedEvent(u User, now time.Time) Event {
	return newEvent(EventSessionStarted, "Welcome back! 🎉",
		fmt.Sprintf("Hello %s, let's manage your expenses!", u.Name), now)
}

func SessionEndedEvent(now time.Time) Event {
	return newEvent(EventSessionEnded, "Logged out successfully", "See you soon! Keep saving money! 💰", now)
}
