package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"studentspend/internal/core"
)

// Repository maps the ledger onto KV keys with JSON codecs.
type Repository struct {
	kv KV
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// KV exposes the underlying store, mainly for health checks.
func (r *Repository) KV() KV { return r.kv }

// LoadExpenses returns the stored expenses, newest first. A missing key is an
// empty ledger.
func (r *Repository) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	raw, err := r.kv.Get(ctx, KeyExpenses)
	if errors.Is(err, ErrNotFound) {
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	var out []core.Expense
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode expenses: %w: %v", ErrCorrupt, err)
	}
	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}

func (r *Repository) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	raw, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := r.kv.Put(ctx, KeyExpenses, raw); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

// LoadSavingsGoal returns the stored goal or core.DefaultSavingsGoal when none
// has been saved.
func (r *Repository) LoadSavingsGoal(ctx context.Context) (decimal.Decimal, error) {
	raw, err := r.kv.Get(ctx, KeySavingsGoal)
	if errors.Is(err, ErrNotFound) {
		return core.DefaultSavingsGoal, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load savings goal: %w", err)
	}
	goal, err := decimal.NewFromString(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode savings goal: %w: %v", ErrCorrupt, err)
	}
	return goal, nil
}

// SaveSavingsGoal stores the goal as a bare number.
func (r *Repository) SaveSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	if err := r.kv.Put(ctx, KeySavingsGoal, []byte(goal.String())); err != nil {
		return fmt.Errorf("save savings goal: %w", err)
	}
	return nil
}

// LoadUser returns the signed-in user, or ErrNotFound when nobody is.
func (r *Repository) LoadUser(ctx context.Context) (core.User, error) {
	raw, err := r.kv.Get(ctx, KeyUser)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.User{}, err
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}
	var u core.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return core.User{}, fmt.Errorf("decode user: %w: %v", ErrCorrupt, err)
	}
	return u, nil
}

func (r *Repository) SaveUser(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.kv.Put(ctx, KeyUser, raw); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// ClearSession signs the user out: the profile and the expenses are removed,
// the savings goal survives. Expenses go first so a failure leaves the user
// signed in and the logout can simply be retried.
func (r *Repository) ClearSession(ctx context.Context) error {
	for _, key := range []string{KeyExpenses, KeyUser} {
		if err := r.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}
