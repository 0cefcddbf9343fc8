package core

import (
	"errors"
	"strings"
)

// Category classifies what an expense was for. The set is closed.
type Category string

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Education     Category = "education"
	Other         Category = "other"
)

// ErrInvalidCategory is returned for anything outside the fixed category set.
var ErrInvalidCategory = errors.New("invalid category")

// categories is the enumeration order; tie-breaks between equal amounts follow it.
var categories = []Category{Food, Transport, Entertainment, Education, Other}

var categoryEmojis = map[Category]string{
	Food:          "🍕",
	Transport:     "🚗",
	Entertainment: "🎬",
	Education:     "📚",
	Other:         "💰",
}

// Categories returns every category in enumeration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory maps user input onto the category set, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c belongs to the category set.
func (c Category) Valid() bool {
	_, ok := categoryEmojis[c]
	return ok
}

// Emoji returns the display emoji used in notifications.
func (c Category) Emoji() string {
	return categoryEmojis[c]
}

func (c Category) String() string {
	return string(c)
}

// rank is the position of c in the enumeration order.
func (c Category) rank() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return len(categories)
}
