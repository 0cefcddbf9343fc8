package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 9))
	if err != nil || string(b) != `"2024-03-09"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-09T14:00:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.String() != "2024-03-09" {
		t.Fatalf("got %s", d)
	}
	if err := json.Unmarshal([]byte(`"03/09/2024"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"food", " Food ", "TRANSPORT", "other"} {
		if _, err := ParseCategory(in); err != nil {
			t.Fatalf("%q: %v", in, err)
		}
	}
	if _, err := ParseCategory("groceries"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if Food.Emoji() != "🍕" || Other.Emoji() != "💰" {
		t.Fatalf("unexpected emojis")
	}
}

func TestNewExpense(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	e, err := NewExpense(ExpenseDraft{
		Amount:      decimal.RequireFromString("12.50"),
		Category:    Food,
		Description: "  Lunch  ",
	}, now)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.ID == "" || e.Description != "Lunch" || e.Date.String() != "2024-03-15" || !e.CreatedAt.Equal(now) {
		t.Fatalf("unexpected expense %+v", e)
	}

	other, _ := NewExpense(ExpenseDraft{Amount: decimal.NewFromInt(1), Category: Other, Description: "x"}, now)
	if other.ID == e.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:          "a",
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      decimal.NewFromInt(1),
		Category:    Education,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		mutate func(*Expense)
		want   error
	}{
		{func(e *Expense) { e.ID = "" }, ErrMissingID},
		{func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{func(e *Expense) { e.Amount = decimal.NewFromInt(-3) }, ErrInvalidAmount},
		{func(e *Expense) { e.Category = "rent" }, ErrInvalidCategory},
		{func(e *Expense) { e.Description = "   " }, ErrEmptyDescription},
		{func(e *Expense) { e.Description = strings.Repeat("a", 201) }, ErrDescriptionLong},
		{func(e *Expense) { e.Description = strings.Repeat("é", 201) }, ErrDescriptionLong},
		{func(e *Expense) { e.Description = "caf\xe9" }, ErrDescriptionUTF8},
		{func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
	}
	for i, tc := range cases {
		e := good
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseDescriptionCountsCharacters(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	for _, desc := range []string{
		strings.Repeat("é", 150),
		strings.Repeat("🍕", 200),
	} {
		if _, err := NewExpense(ExpenseDraft{Amount: decimal.NewFromInt(1), Category: Food, Description: desc}, now); err != nil {
			t.Errorf("%d runes / %d bytes: unexpected %v", utf8.RuneCountInString(desc), len(desc), err)
		}
	}
}

func TestExpenseJSONRoundTrip(t *testing.T) {
	in := `{"id":"x1","amount":12.5,"category":"food","description":"Lunch","date":"2024-03-01","createdAt":"2024-03-01T12:00:00Z"}`
	var e Expense
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !e.Amount.Equal(decimal.RequireFromString("12.5")) || e.Category != Food || e.Date.String() != "2024-03-01" {
		t.Fatalf("unexpected %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateGoal(t *testing.T) {
	if err := ValidateGoal(decimal.NewFromInt(500)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, g := range []int64{0, -10} {
		if err := ValidateGoal(decimal.NewFromInt(g)); !errors.Is(err, ErrInvalidGoal) {
			t.Fatalf("goal %d: expected ErrInvalidGoal, got %v", g, err)
		}
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{ID: "1", Email: "a@b.c", Name: "Ann"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{ID: "1", Name: "Ann"}).Validate(); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}
