package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the calendar-day format used on the wire and in storage.
	DateLayout = "2006-01-02"

	// MaxDescriptionLength bounds free-text descriptions.
	MaxDescriptionLength = 200
)

// DefaultSavingsGoal is the goal used until the user sets one.
var DefaultSavingsGoal = decimal.NewFromInt(1000)

type (
	// Date is a calendar day with no meaningful time component.
	Date struct {
		time.Time
	}

	// Expense is a single recorded spending transaction. Expenses are never
	// edited; they are only created and deleted.
	Expense struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    Category        `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// ExpenseDraft is what a user submits; identity and creation time are
	// assigned by NewExpense.
	ExpenseDraft struct {
		Amount      decimal.Decimal
		Category    Category
		Description string
		Date        Date
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidGoal      = errors.New("savings goal must be greater than zero")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrDescriptionUTF8  = errors.New("description is not valid UTF-8")
	ErrMissingID        = errors.New("missing expense id")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// InMonthOf reports whether d falls in the same calendar month and year as ref.
func (d Date) InMonthOf(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == int(ref.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a plain calendar day or a full RFC 3339 timestamp,
// which older clients stored.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if parsed, err := ParseDate(s); err == nil {
		*d = parsed
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return ErrInvalidDate
	}
	*d = DateOf(t)
	return nil
}

// NewExpense validates a draft and turns it into an Expense with a fresh id.
// A draft without a date is recorded on now's calendar day.
func NewExpense(draft ExpenseDraft, now time.Time) (Expense, error) {
	date := draft.Date
	if date.IsZero() {
		date = DateOf(now)
	}
	e := Expense{
		ID:          uuid.NewString(),
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: strings.TrimSpace(draft.Description),
		Date:        date,
		CreatedAt:   now.UTC(),
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !utf8.ValidString(e.Description) {
		return ErrDescriptionUTF8
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateGoal checks a user-supplied savings goal.
func ValidateGoal(goal decimal.Decimal) error {
	if !goal.IsPositive() {
		return ErrInvalidGoal
	}
	return nil
}
