package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultCurrency is the canonical currency glyph. It is substituted when the
// message carries no currency token and when a recognized alias form is found.
const DefaultCurrency = "₽"

// amountRe matches the first numeric substring with an optional two-digit
// fraction and an optional currency glyph right after it.
var amountRe = regexp.MustCompile(`(?i)([0-9]+(?:[.,][0-9]{1,2})?)\s*([₽рRUB$€])?`)

// ParsedMessage is the structured form of an expense message.
type ParsedMessage struct {
	Amount   float64
	Currency string
	Category string
	Note     string // empty when nothing is left after stripping the amount
}

// ParseAmount extracts the first amount and its currency symbol from text.
// The whitespace-stripped text is scanned first so "1 500" parses as 1500;
// the raw text is the fallback. Returns false when no amount is present.
func ParseAmount(text string) (float64, string, bool) {
	m := amountRe.FindStringSubmatch(strings.ReplaceAll(text, " ", ""))
	if m == nil {
		m = amountRe.FindStringSubmatch(text)
		if m == nil {
			return 0, "", false
		}
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, "", false
	}

	currency := m[2]
	switch strings.ToLower(currency) {
	case "", "r", "rub", "р":
		currency = DefaultCurrency
	}

	return amount, currency, true
}

// ParseMessage parses an expense message against the given alias map.
// It is a pure function: no lookups, no side effects. Returns false when the
// text contains no amount and should be silently ignored.
func ParseMessage(text string, aliasMap map[string]string) (*ParsedMessage, bool) {
	amount, currency, ok := ParseAmount(text)
	if !ok {
		return nil, false
	}

	// Remove the first amount match so numbers never leak into category
	// matching or the note.
	rest := text
	if loc := amountRe.FindStringIndex(text); loc != nil {
		rest = text[:loc[0]] + " " + text[loc[1]:]
	}

	return &ParsedMessage{
		Amount:   amount,
		Currency: currency,
		Category: ResolveCategory(rest, aliasMap),
		Note:     strings.TrimSpace(rest),
	}, true
}
