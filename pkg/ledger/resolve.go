package ledger

import (
	"regexp"
	"sort"
	"strings"

	"github.com/benderoz/BUH-uchet/pkg/db"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// BuildAliasMap merges the built-in alias table with persisted categories into
// a lowercase alias -> category name map. Built-ins are applied first, so a
// persisted entry wins on key collision. A category name is an alias of itself.
func BuildAliasMap(categories []db.Category) map[string]string {
	aliasMap := make(map[string]string)

	for _, c := range defaultAliases {
		aliasMap[strings.ToLower(c.Name)] = c.Name
		for _, a := range c.Aliases {
			aliasMap[strings.ToLower(a)] = c.Name
		}
	}

	for _, c := range categories {
		aliasMap[strings.ToLower(c.Name)] = c.Name
		if c.Aliases == nil {
			continue
		}
		for _, a := range strings.Split(*c.Aliases, "|") {
			a = strings.ToLower(strings.TrimSpace(a))
			if a != "" {
				aliasMap[a] = c.Name
			}
		}
	}

	return aliasMap
}

// ResolveCategory returns the category of the first token of text present in
// aliasMap, scanning left to right, or DefaultCategory. First match wins; the
// token order of the message determines the outcome.
func ResolveCategory(text string, aliasMap map[string]string) string {
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if category, ok := aliasMap[word]; ok {
			return category
		}
	}

	return DefaultCategory
}

// normalizeAliases lowercases, trims, deduplicates and sorts aliases into the
// persisted pipe-delimited form. Returns nil for an empty result.
func normalizeAliases(aliases []string) *string {
	seen := make(map[string]struct{}, len(aliases))
	clean := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		clean = append(clean, a)
	}

	if len(clean) == 0 {
		return nil
	}

	sort.Strings(clean)
	joined := strings.Join(clean, "|")

	return &joined
}

// mergeAliases merges add into the existing pipe-delimited alias list of the
// category owner. An alias bound to a different category in aliasMap is
// rejected: alias uniqueness is cross-category. Returns the new list plus the
// added and rejected aliases.
func mergeAliases(existing *string, add []string, owner string, aliasMap map[string]string) (merged *string, added, rejected []string) {
	current := []string{}
	if existing != nil {
		current = strings.Split(*existing, "|")
	}

	have := make(map[string]struct{}, len(current))
	for _, a := range current {
		have[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	for _, a := range add {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if cat, ok := aliasMap[a]; ok && cat != owner {
			rejected = append(rejected, a)
			continue
		}
		if _, ok := have[a]; ok {
			continue
		}
		have[a] = struct{}{}
		current = append(current, a)
		added = append(added, a)
	}

	return normalizeAliases(current), added, rejected
}
