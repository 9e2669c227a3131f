package telegram

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseAddCatArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       string
		wantName   string
		wantAlias  []string
		wantAppend bool
		wantErr    bool
	}{
		{
			name:      "replace form",
			args:      "напитки | кофе | чай",
			wantName:  "напитки",
			wantAlias: []string{"кофе", "чай"},
		},
		{
			name:       "append form",
			args:       "+напитки | какао",
			wantName:   "напитки",
			wantAlias:  []string{"какао"},
			wantAppend: true,
		},
		{
			name:     "replace with empty list clears aliases",
			args:     "напитки",
			wantName: "напитки",
		},
		{
			name:      "name lowercased and trimmed",
			args:      "  Напитки | Кофе ",
			wantName:  "напитки",
			wantAlias: []string{"кофе"},
		},
		{
			name:      "empty segments skipped",
			args:      "напитки | | кофе |",
			wantName:  "напитки",
			wantAlias: []string{"кофе"},
		},
		{
			name:    "empty args",
			args:    "",
			wantErr: true,
		},
		{
			name:    "append without aliases",
			args:    "+напитки",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, aliases, appendMode, err := parseAddCatArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAddCatArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !reflect.DeepEqual(aliases, tt.wantAlias) {
				t.Errorf("aliases = %v, want %v", aliases, tt.wantAlias)
			}
			if appendMode != tt.wantAppend {
				t.Errorf("appendMode = %v, want %v", appendMode, tt.wantAppend)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{1500, "1500 ₽"},
		{99.5, "99.50 ₽"},
		{0, "0 ₽"},
	}

	for _, tt := range tests {
		if got := formatMoney(tt.amount, "₽"); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatUserTotals(t *testing.T) {
	totals := map[int64]float64{10: 100, 20: 300, 30: 200}
	names := map[int64]string{10: "alice", 20: "bob"}

	got := formatUserTotals(totals, names, "₽")

	// Biggest spender first, unknown user shown by id.
	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := []string{
		"• bob: 300 ₽",
		"• id30: 200 ₽",
		"• alice: 100 ₽",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("formatUserTotals() = %v, want %v", lines, want)
	}
}

func TestFormatCategoriesContainsBuiltins(t *testing.T) {
	got := formatCategories(nil)

	for _, name := range []string{"alcohol", "food", "прочее"} {
		if !strings.Contains(got, name) {
			t.Errorf("formatCategories() missing %q", name)
		}
	}
}
