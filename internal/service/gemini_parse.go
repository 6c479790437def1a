package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/pageza/fridgechef/backend/internal/types"
)

var (
	bulletPrefix = regexp.MustCompile(`^[\d\-•*.)\s]+`)

	// Lines the vision model uses to group or introduce items
	skipPatterns = []string{
		"shelf", "compartment", "drawer", "section",
		"ingredients:", "items:", "contents:",
		"here are", "i can see", "visible items",
	}
)

// foldCase returns the caseless form of s. A Caser is stateful, so each call
// gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// ParseIngredientList turns a one-item-per-line vision reply into an ordered
// ingredient list.
func ParseIngredientList(text string) []string {
	var ingredients []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		folded := foldCase(line)
		skip := false
		for _, p := range skipPatterns {
			if strings.Contains(folded, p) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		item := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		item = strings.Trim(item, "*_ ")
		if len([]rune(item)) <= 2 || !strings.ContainsFunc(item, unicode.IsLetter) {
			continue
		}
		ingredients = append(ingredients, item)
	}
	return ingredients
}

// NormalizeIngredientString trims each entry of a comma-separated list and
// drops empty entries.
func NormalizeIngredientString(s string) string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// MatchIntentLabel returns the first known intent label contained in a
// classifier reply, or general_qa.
func MatchIntentLabel(reply string) types.Intent {
	folded := foldCase(reply)
	for _, intent := range types.Intents {
		if strings.Contains(folded, string(intent)) {
			return intent
		}
	}
	return types.IntentGeneralQA
}
