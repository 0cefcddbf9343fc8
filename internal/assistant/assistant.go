// Package assistant answers free-text budgeting questions from the current
// ledger statistics.
//
// Replies are chosen by an ordered list of keyword rules. The first rule whose
// predicate matches the lower-cased query produces the reply; when none match
// a fallback message is picked at random.
package assistant

import (
	"math/rand/v2"
	"strings"

	"studentspend/internal/core"
)

// Source picks a uniformly distributed index in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Role tags a chat message with its author.
type Role string

const RoleAssistant Role = "assistant"

// Input is everything a rule may look at.
type Input struct {
	Query    string
	Stats    core.Stats
	Expenses []core.Expense
}

// Rule is one entry of the ordered keyword table.
type Rule struct {
	Name    string
	Matches func(query string) bool
	Respond func(in Input, src Source) string
}

// Selector maps a query to a reply.
type Selector struct {
	rules []Rule
	src   Source
}

// NewSelector returns a Selector using src for the random picks. A nil src
// falls back to the math/rand/v2 global generator.
func NewSelector(src Source) *Selector {
	if src == nil {
		src = globalSource{}
	}
	return &Selector{rules: defaultRules(), src: src}
}

// Reply returns the answer for query. It never fails: an empty or
// unrecognised query gets one of the fallback messages.
func (s *Selector) Reply(query string, stats core.Stats, expenses []core.Expense) string {
	in := Input{Query: strings.ToLower(query), Stats: stats, Expenses: expenses}
	if r, ok := s.Match(in.Query); ok {
		return r.Respond(in, s.src)
	}
	return fallbackReply(in, s.src)
}

// Match returns the first rule matching an already lower-cased query.
func (s *Selector) Match(query string) (Rule, bool) {
	for _, r := range s.rules {
		if r.Matches(query) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules lists the rule names in evaluation order.
func (s *Selector) Rules() []string {
	names := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		names = append(names, r.Name)
	}
	return names
}

func containsAny(keywords ...string) func(string) bool {
	return func(q string) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
}

func defaultRules() []Rule {
	return []Rule{
		{Name: "spending", Matches: containsAny("spent", "spending", "expenses"), Respond: spendingReply},
		{Name: "savings", Matches: containsAny("save", "saving", "goal"), Respond: savingsReply},
		{Name: "food", Matches: containsAny("food", "eating"), Respond: foodReply},
		{Name: "transport", Matches: containsAny("transport", "travel"), Respond: transportReply},
		{Name: "tips", Matches: containsAny("tip", "advice", "help"), Respond: tipReply},
		{Name: "recent", Matches: containsAny("recent", "last"), Respond: recentReply},
	}
}
