package ledger

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   float64
		currency string
		ok       bool
	}{
		{"plain integer", "1500 алкоголь бар", 1500, "₽", true},
		{"glyph after amount", "250₽ суши", 250, "₽", true},
		{"dollar glyph", "10$ кофе", 10, "$", true},
		{"euro glyph", "9.99€", 9.99, "€", true},
		{"comma fraction", "10,50 такси", 10.5, "₽", true},
		{"ascii r alias", "300r пиво", 300, "₽", true},
		{"cyrillic r alias", "300р пиво", 300, "₽", true},
		{"spaced digits", "1 500 бар", 1500, "₽", true},
		{"no number", "привет", 0, "", false},
		{"only words", "дорого вышло", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency, ok := ParseAmount(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if !ok {
				return
			}
			if amount != tt.amount {
				t.Errorf("amount = %v, want %v", amount, tt.amount)
			}
			if currency != tt.currency {
				t.Errorf("currency = %q, want %q", currency, tt.currency)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	aliasMap := BuildAliasMap(nil)

	tests := []struct {
		name     string
		text     string
		ok       bool
		amount   float64
		category string
		note     string
	}{
		{"alcohol via alias", "1500 алкоголь бар", true, 1500, "alcohol", "алкоголь бар"},
		{"food first token wins", "250 суши еда", true, 250, "food", "суши еда"},
		{"no alias falls back", "100 хомяк", true, 100, DefaultCategory, "хомяк"},
		{"bare amount", "500", true, 500, DefaultCategory, ""},
		{"not an expense", "привет", false, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseMessage(tt.text, aliasMap)
			if ok != tt.ok {
				t.Fatalf("ParseMessage(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if !ok {
				return
			}
			if parsed.Amount != tt.amount {
				t.Errorf("amount = %v, want %v", parsed.Amount, tt.amount)
			}
			if parsed.Category != tt.category {
				t.Errorf("category = %q, want %q", parsed.Category, tt.category)
			}
			if parsed.Note != tt.note {
				t.Errorf("note = %q, want %q", parsed.Note, tt.note)
			}
		})
	}
}

// Parsing has no hidden state: the same text resolves identically twice.
func TestParseMessageIdempotent(t *testing.T) {
	aliasMap := BuildAliasMap(nil)

	first, ok1 := ParseMessage("1500 алкоголь бар", aliasMap)
	second, ok2 := ParseMessage("1500 алкоголь бар", aliasMap)
	if !ok1 || !ok2 {
		t.Fatal("expected both parses to succeed")
	}
	if *first != *second {
		t.Errorf("parses differ: %+v vs %+v", first, second)
	}
}
