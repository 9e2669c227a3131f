package ledger

import (
	"strings"
	"testing"

	"github.com/benderoz/BUH-uchet/pkg/db"
)

func strPtr(s string) *string { return &s }

func TestBuildAliasMap(t *testing.T) {
	t.Run("built-ins only", func(t *testing.T) {
		aliasMap := BuildAliasMap(nil)

		if got := aliasMap["алкоголь"]; got != "alcohol" {
			t.Errorf("алкоголь -> %q, want alcohol", got)
		}
		if got := aliasMap["суши"]; got != "food" {
			t.Errorf("суши -> %q, want food", got)
		}
		// A category name is an alias of itself.
		if got := aliasMap["transport"]; got != "transport" {
			t.Errorf("transport -> %q, want transport", got)
		}
		// бар occurs under alcohol and fun; the later built-in entry wins.
		if got := aliasMap["бар"]; got != "fun" {
			t.Errorf("бар -> %q, want fun", got)
		}
	})

	t.Run("persisted overlays built-ins", func(t *testing.T) {
		aliasMap := BuildAliasMap([]db.Category{
			{Name: "pets", Aliases: strPtr("корм|хомяк")},
			{Name: "bars", Aliases: strPtr("бар")},
		})

		if got := aliasMap["хомяк"]; got != "pets" {
			t.Errorf("хомяк -> %q, want pets", got)
		}
		if got := aliasMap["бар"]; got != "bars" {
			t.Errorf("бар -> %q, want bars (persisted wins on collision)", got)
		}
		if got := aliasMap["алкоголь"]; got != "alcohol" {
			t.Errorf("алкоголь -> %q, want alcohol (built-ins kept)", got)
		}
	})
}

func TestResolveCategory(t *testing.T) {
	aliasMap := BuildAliasMap([]db.Category{
		{Name: "alcohol", Aliases: strPtr("вино")},
	})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"first token wins", "суши еда", "food"},
		{"order decides", "еда суши", "food"},
		{"persisted alias", "вино", "alcohol"},
		{"case insensitive", "ТАКСИ домой", "transport"},
		{"no match", "хомяк", DefaultCategory},
		{"empty", "", DefaultCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveCategory(tt.text, aliasMap); got != tt.want {
				t.Errorf("ResolveCategory(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeAliases(t *testing.T) {
	if got := normalizeAliases(nil); got != nil {
		t.Errorf("normalizeAliases(nil) = %q, want nil", *got)
	}
	if got := normalizeAliases([]string{"  ", ""}); got != nil {
		t.Errorf("normalizeAliases(blank) = %q, want nil", *got)
	}

	got := normalizeAliases([]string{"Вино", "пиво", "вино ", "бар"})
	if got == nil {
		t.Fatal("normalizeAliases returned nil")
	}
	if *got != "бар|вино|пиво" {
		t.Errorf("normalizeAliases = %q, want %q", *got, "бар|вино|пиво")
	}
}

func TestMergeAliases(t *testing.T) {
	aliasMap := BuildAliasMap([]db.Category{
		{Name: "alcohol", Aliases: strPtr("вино")},
	})

	t.Run("conflict rejected", func(t *testing.T) {
		merged, added, rejected := mergeAliases(nil, []string{"вино", "сидр"}, "drinks", aliasMap)

		if len(added) != 1 || added[0] != "сидр" {
			t.Errorf("added = %v, want [сидр]", added)
		}
		if len(rejected) != 1 || rejected[0] != "вино" {
			t.Errorf("rejected = %v, want [вино]", rejected)
		}
		if merged == nil || *merged != "сидр" {
			t.Errorf("merged = %v, want сидр", merged)
		}
		// alcohol keeps the alias untouched.
		if aliasMap["вино"] != "alcohol" {
			t.Errorf("вино -> %q, want alcohol", aliasMap["вино"])
		}
	})

	t.Run("own alias is not a conflict", func(t *testing.T) {
		existing := "вино"
		merged, added, rejected := mergeAliases(&existing, []string{"вино", "сидр"}, "alcohol", aliasMap)

		if len(rejected) != 0 {
			t.Errorf("rejected = %v, want none", rejected)
		}
		if len(added) != 1 || added[0] != "сидр" {
			t.Errorf("added = %v, want [сидр]", added)
		}
		if merged == nil || *merged != "вино|сидр" {
			t.Errorf("merged = %v, want вино|сидр", merged)
		}
	})

	t.Run("duplicates skipped silently", func(t *testing.T) {
		existing := "сидр"
		merged, added, rejected := mergeAliases(&existing, []string{"СИДР", " сидр "}, "drinks", BuildAliasMap(nil))

		if len(added) != 0 || len(rejected) != 0 {
			t.Errorf("added = %v rejected = %v, want both empty", added, rejected)
		}
		if merged == nil || *merged != "сидр" {
			t.Errorf("merged = %v, want сидр", merged)
		}
	})
}

func TestDefaultCategoryNames(t *testing.T) {
	names := DefaultCategoryNames()
	if len(names) == 0 {
		t.Fatal("no default categories")
	}
	if names[0] != "alcohol" {
		t.Errorf("first category = %q, want alcohol", names[0])
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, DefaultCategory) {
		t.Errorf("default category %q missing from %q", DefaultCategory, joined)
	}
}
