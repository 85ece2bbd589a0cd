// Package orders looks up a rider's order on the storefront from a free-text identifier.
package orders

import (
	"strings"
	"unicode"
)

// Kind is the identifier a rider supplied.
type Kind string

const (
	KindOrderNumber Kind = "order_number"
	KindEmail       Kind = "email"
	KindPhone       Kind = "phone"

	minPhoneDigits = 10
)

// Query is a classified lookup key.
type Query struct {
	Kind  Kind
	Value string
}

// Search renders the Shopify order search syntax for q.
func (q Query) Search() string {
	switch q.Kind {
	case KindOrderNumber:
		return "name:" + q.Value
	case KindEmail:
		return "email:" + q.Value
	case KindPhone:
		return "phone:" + q.Value
	}
	return ""
}

// ParseQuery classifies free text as an order number ("#1023"), an email
// (contains "@") or a phone number (at least 10 digits once non-digits are
// stripped), checked in that order.
func ParseQuery(text string) (Query, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, false
	}
	if strings.HasPrefix(text, "#") {
		name := strings.Fields(text)[0]
		if len(name) > 1 {
			return Query{Kind: KindOrderNumber, Value: name}, true
		}
		return Query{}, false
	}
	if strings.Contains(text, "@") {
		for _, f := range strings.Fields(text) {
			if strings.Contains(f, "@") {
				return Query{Kind: KindEmail, Value: strings.ToLower(strings.Trim(f, ".,;:<>()"))}, true
			}
		}
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, text)
	if len(digits) >= minPhoneDigits {
		return Query{Kind: KindPhone, Value: digits}, true
	}
	return Query{}, false
}
