package telegram

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/benderoz/BUH-uchet/pkg/db"
	"github.com/benderoz/BUH-uchet/pkg/ledger"
)

// formatMoney formats an amount with its currency, omitting .00 for whole sums.
func formatMoney(amount float64, currency string) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("%.0f %s", amount, currency)
	}
	return fmt.Sprintf("%.2f %s", amount, currency)
}

// formatUserTotals renders per-user totals, biggest spender first. Users
// without a stored username fall back to their numeric id.
func formatUserTotals(totals map[int64]float64, names map[int64]string, currency string) string {
	type row struct {
		id    int64
		total float64
	}

	rows := make([]row, 0, len(totals))
	for id, total := range totals {
		rows = append(rows, row{id, total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].id < rows[j].id
	})

	var sb strings.Builder
	for _, r := range rows {
		name := names[r.id]
		if name == "" {
			name = fmt.Sprintf("id%d", r.id)
		}
		fmt.Fprintf(&sb, "• %s: %s\n", name, formatMoney(r.total, currency))
	}

	return sb.String()
}

// formatCategories renders the merged alias table: built-in categories in
// their fixed order, persisted extras after them alphabetically.
func formatCategories(categories []db.Category) string {
	aliasMap := ledger.BuildAliasMap(categories)

	byCategory := make(map[string][]string)
	for alias, category := range aliasMap {
		byCategory[category] = append(byCategory[category], alias)
	}

	order := ledger.DefaultCategoryNames()
	known := make(map[string]bool, len(order))
	for _, name := range order {
		known[name] = true
	}

	var extras []string
	for name := range byCategory {
		if !known[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	order = append(order, extras...)

	var sb strings.Builder
	sb.WriteString("🏷 <b>Категории:</b>\n")
	for _, name := range order {
		aliases := byCategory[name]
		sort.Strings(aliases)
		if len(aliases) == 0 {
			fmt.Fprintf(&sb, "• <b>%s</b>\n", name)
			continue
		}
		fmt.Fprintf(&sb, "• <b>%s</b>: %s\n", name, strings.Join(aliases, ", "))
	}
	sb.WriteString("\nВсё нераспознанное попадает в «" + ledger.DefaultCategory + "».")

	return sb.String()
}

// parseAddCatArgs parses the /addcat argument string. The pipe-separated form
// "имя | слово | слово" replaces the alias list; a leading plus on the name
// ("+имя | слово") switches to append mode.
func parseAddCatArgs(args string) (name string, aliases []string, appendMode bool, err error) {
	parts := strings.Split(args, "|")

	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if strings.HasPrefix(name, "+") {
		appendMode = true
		name = strings.TrimSpace(strings.TrimPrefix(name, "+"))
	}
	if name == "" {
		return "", nil, false, errors.New("category name is required")
	}

	for _, part := range parts[1:] {
		if alias := strings.ToLower(strings.TrimSpace(part)); alias != "" {
			aliases = append(aliases, alias)
		}
	}

	if appendMode && len(aliases) == 0 {
		return "", nil, false, errors.New("append form requires at least one alias")
	}

	return name, aliases, appendMode, nil
}
