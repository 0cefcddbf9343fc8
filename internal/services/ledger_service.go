// Package services orchestrates the ledger: it keeps the working copy of the
// expenses in memory, persists every change through the store and announces
// it through a Publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"studentspend/internal/assistant"
	"studentspend/internal/cache"
	"studentspend/internal/core"
	"studentspend/internal/log"
	"studentspend/internal/store"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrEmptyQuery      = errors.New("empty query")
	ErrNotLoaded       = errors.New("ledger not loaded")
)

// LedgerService owns the expense list and savings goal. Every mutation is
// saved before it is published; a failed save leaves the state untouched.
type LedgerService struct {
	repo      *store.Repository
	publisher Publisher
	selector  *assistant.Selector
	typist    assistant.Typist
	stats     cache.Cache[core.Stats]
	now       func() time.Time
	logger    *log.Logger

	mu       sync.RWMutex
	expenses []core.Expense
	goal     decimal.Decimal
	version  uint64
	loaded   bool
}

type Option func(*LedgerService)

func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithSelector(sel *assistant.Selector) Option {
	return func(s *LedgerService) {
		if sel != nil {
			s.selector = sel
		}
	}
}

func WithTypist(t assistant.Typist) Option {
	return func(s *LedgerService) { s.typist = t }
}

// WithStatsCache memoises Stats per ledger version and month.
func WithStatsCache(c cache.Cache[core.Stats]) Option {
	return func(s *LedgerService) { s.stats = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentLedger)
		}
	}
}

func NewLedgerService(repo *store.Repository, opts ...Option) *LedgerService {
	s := &LedgerService{
		repo:      repo,
		publisher: NopPublisher{},
		selector:  assistant.NewSelector(nil),
		now:       time.Now,
		logger:    log.Default().WithComponent(log.ComponentLedger),
		expenses:  []core.Expense{},
		goal:      core.DefaultSavingsGoal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the ledger from the store, replacing the in-memory copy.
func (s *LedgerService) Load(ctx context.Context) error {
	expenses, err := s.repo.LoadExpenses(ctx)
	if err != nil {
		return err
	}
	goal, err := s.repo.LoadSavingsGoal(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.expenses = expenses
	s.goal = goal
	s.loaded = true
	s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger loaded", "expenses", len(expenses), "savings_goal", goal.String())
	return nil
}

// Loaded reports whether Load has completed once.
func (s *LedgerService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Refresh picks up changes other processes saved to the shared store since
// the last read.
func (s *LedgerService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// AddExpense records a new expense at the front of the list and returns it
// together with the event announcing it.
func (s *LedgerService) AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, core.Event, error) {
	now := s.now()
	e, err := core.NewExpense(draft, now)
	if err != nil {
		return core.Expense{}, core.Event{}, err
	}

	s.mu.Lock()
	if err := s.refreshLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Expense{}, core.Event{}, err
	}
	next := make([]core.Expense, 0, len(s.expenses)+1)
	next = append(next, e)
	next = append(next, s.expenses...)
	if err := s.repo.SaveExpenses(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Expense{}, core.Event{}, err
	}
	s.expenses = next
	s.bumpLocked()
	s.mu.Unlock()

	log.NewStructuredLogger(s.logger).LogExpenseAdded(ctx, e.ID, e.Category.String(), e.Amount.String())
	ev := core.ExpenseAddedEvent(e, now)
	s.publish(ctx, ev)
	return e, ev, nil
}

// RemoveExpense deletes the expense with id and returns it.
func (s *LedgerService) RemoveExpense(ctx context.Context, id string) (core.Expense, core.Event, error) {
	s.mu.Lock()
	if err := s.refreshLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Expense{}, core.Event{}, err
	}
	idx := -1
	for i, e := range s.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return core.Expense{}, core.Event{}, fmt.Errorf("%w: %s", ErrExpenseNotFound, id)
	}
	removed := s.expenses[idx]
	next := make([]core.Expense, 0, len(s.expenses)-1)
	next = append(next, s.expenses[:idx]...)
	next = append(next, s.expenses[idx+1:]...)
	if err := s.repo.SaveExpenses(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Expense{}, core.Event{}, err
	}
	s.expenses = next
	s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense removed", log.FieldExpenseID, id, log.FieldOperation, log.OpDelete)
	ev := core.ExpenseRemovedEvent(removed, s.now())
	s.publish(ctx, ev)
	return removed, ev, nil
}

// ClearExpenses empties the list. The savings goal is kept.
func (s *LedgerService) ClearExpenses(ctx context.Context) (core.Event, error) {
	s.mu.Lock()
	if err := s.repo.SaveExpenses(ctx, []core.Expense{}); err != nil {
		s.mu.Unlock()
		return core.Event{}, err
	}
	s.expenses = []core.Expense{}
	s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expenses cleared", log.FieldOperation, log.OpClear)
	ev := core.ExpensesClearedEvent(s.now())
	s.publish(ctx, ev)
	return ev, nil
}

// UpdateSavingsGoal replaces the monthly goal; it must be positive.
func (s *LedgerService) UpdateSavingsGoal(ctx context.Context, goal decimal.Decimal) (core.Event, error) {
	if err := core.ValidateGoal(goal); err != nil {
		return core.Event{}, err
	}

	s.mu.Lock()
	if err := s.repo.SaveSavingsGoal(ctx, goal); err != nil {
		s.mu.Unlock()
		return core.Event{}, err
	}
	s.goal = goal
	s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Savings goal updated", log.FieldAmount, goal.String())
	ev := core.GoalUpdatedEvent(goal, s.now())
	s.publish(ctx, ev)
	return ev, nil
}

// Expenses returns a copy of the list, newest first.
func (s *LedgerService) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

// SavingsGoal returns the current monthly goal.
func (s *LedgerService) SavingsGoal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goal
}

// Stats computes the statistics for the month containing now.
func (s *LedgerService) Stats(now time.Time) core.Stats {
	s.mu.RLock()
	key := fmt.Sprintf("%d:%04d-%02d", s.version, now.Year(), int(now.Month()))
	expenses := s.expenses
	goal := s.goal
	s.mu.RUnlock()

	if s.stats != nil {
		if st, ok := s.stats.Get(key); ok {
			return st
		}
	}
	st := core.ComputeStats(expenses, goal, now)
	if s.stats != nil {
		s.stats.Set(key, st)
	}
	return st
}

// StatsCacheSize is the number of memoised Stats, 0 without a cache.
func (s *LedgerService) StatsCacheSize() int {
	if s.stats == nil {
		return 0
	}
	return s.stats.Size()
}

// Ask answers a free-text question about the ledger. The reply is computed
// immediately and then held back by the typist delay.
func (s *LedgerService) Ask(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}
	if err := s.Refresh(ctx); err != nil {
		return "", err
	}
	stats := s.Stats(s.now())
	reply := s.selector.Reply(query, stats, s.Expenses())

	if rule, ok := s.selector.Match(strings.ToLower(query)); ok {
		s.logger.DebugContext(ctx, "Assistant rule matched", log.FieldRule, rule.Name)
	}
	if err := s.typist.Wait(ctx); err != nil {
		return "", err
	}
	return reply, nil
}

// Greeting is the assistant's opening message.
func (s *LedgerService) Greeting() string {
	return assistant.Greeting
}

// StartSession stores the profile handed over by the sign-in flow.
func (s *LedgerService) StartSession(ctx context.Context, u core.User) (core.Event, error) {
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return core.Event{}, err
	}
	s.logger.InfoContext(ctx, "Session started", "user_id", u.ID)
	ev := core.SessionStartedEvent(u, s.now())
	s.publish(ctx, ev)
	return ev, nil
}

// CurrentUser returns the signed-in user or store.ErrNotFound.
func (s *LedgerService) CurrentUser(ctx context.Context) (core.User, error) {
	return s.repo.LoadUser(ctx)
}

// EndSession signs out: the profile and all expenses are removed, the
// savings goal stays.
func (s *LedgerService) EndSession(ctx context.Context) (core.Event, error) {
	s.mu.Lock()
	if err := s.repo.ClearSession(ctx); err != nil {
		s.mu.Unlock()
		return core.Event{}, err
	}
	s.expenses = []core.Expense{}
	s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Session ended")
	ev := core.SessionEndedEvent(s.now())
	s.publish(ctx, ev)
	return ev, nil
}

// Ready reports whether the ledger is loaded and its store reachable.
func (s *LedgerService) Ready(ctx context.Context) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	return store.Ping(ctx, s.repo.KV())
}

// refreshLocked re-reads the stored ledger before a change so that writes
// made by another process sharing the store (the CLI next to the server) are
// kept. The caller holds s.mu.
func (s *LedgerService) refreshLocked(ctx context.Context) error {
	expenses, err := s.repo.LoadExpenses(ctx)
	if err != nil {
		return err
	}
	goal, err := s.repo.LoadSavingsGoal(ctx)
	if err != nil {
		return err
	}
	if !goal.Equal(s.goal) || !sameExpenses(expenses, s.expenses) {
		s.expenses = expenses
		s.goal = goal
		s.bumpLocked()
	}
	return nil
}

func sameExpenses(a, b []core.Expense) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (s *LedgerService) bumpLocked() {
	s.version++
	if s.stats != nil {
		s.stats.Purge()
	}
}

// publish never fails the caller; the change is already saved.
func (s *LedgerService) publish(ctx context.Context, ev core.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.NewStructuredLogger(s.logger).LogError(ctx, "Failed to publish ledger event", err,
			log.ComponentAMQP, log.OpPublish, log.NewFields().With(log.FieldEventType, string(ev.Type)))
	}
}

// Close releases the store and the publisher when it holds resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if s.repo != nil {
		if err := s.repo.KV().Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	return errors.Join(errs...)
}
