// Package classify assigns issue categories and display tags to bills by
// keyword matching over their text fields.
package classify

import (
	"strings"

	"github.com/peachstatelabs/gabills/internal/models"
)

// MaxTags bounds the number of display tags per bill.
const MaxTags = 4

// FallbackTag is returned when no keyword matches a bill.
const FallbackTag = "General"

// Category pairs an issue slug with its keyword list.
type Category struct {
	Issue    string
	Keywords []string
}

// Categories is the fixed classification table. Order matters: the
// classifier returns the first category with any matching keyword, so the
// table must stay an ordered slice, not a map.
var Categories = []Category{
	{"gun-control", []string{"firearm", "gun", "weapon", "ammunition", "concealed carry", "background check", "safe storage"}},
	{"lgbtqia", []string{"lgbtq", "same-sex", "transgender", "gender identity", "sexual orientation", "drag", "non-binary"}},
	{"healthcare", []string{"healthcare", "health", "medicaid", "medicare", "insurance", "prescription", "mental health", "welfare", "disability"}},
	{"education", []string{"school", "education", "university", "college", "student", "teacher", "curriculum"}},
	{"environment", []string{"environment", "climate", "renewable", "energy", "pollution", "conservation", "wildlife"}},
	{"criminal-justice", []string{"crime", "prison", "jail", "sentencing", "parole", "police", "law enforcement", "prosecution"}},
	{"taxes", []string{"tax", "revenue", "budget", "fiscal", "finance", "income"}},
	{"immigration", []string{"immigration", "immigrant", "border", "visa", "citizenship", "alien"}},
	{"voting-rights", []string{"vote", "voting", "election", "registration", "franchise", "ballot"}},
	{"reproductive", []string{"abortion", "reproductive", "pregnancy", "contraception", "planned parenthood", "roe", "fetal"}},
	{"workers-rights", []string{"labor", "union", "worker", "wage", "employment", "overtime", "minimum wage", "workplace"}},
	{"gun-violence", []string{"gun violence", "mass shooting", "shooting", "assault weapon", "magazine", "red flag", "threat assessment"}},
}

// Issues lists the category slugs in classification order.
func Issues() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = c.Issue
	}
	return out
}

// Issue returns the first category whose keywords match the bill's text,
// or "" when none do. First match by table order wins; keyword counts are
// not ranked.
func Issue(bill models.Bill) string {
	text := bill.ClassifierText()
	for _, c := range Categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				return c.Issue
			}
		}
	}
	return ""
}

// Tags collects every keyword across all categories that matches the
// bill's text, deduplicated, first MaxTags in encounter order. Tags are
// raw keywords, not category slugs; the UI renders them as-is. When
// nothing matches the result is exactly [FallbackTag].
func Tags(bill models.Bill) []string {
	text := bill.ClassifierText()
	seen := make(map[string]struct{})
	tags := make([]string, 0, MaxTags)
	for _, c := range Categories {
		for _, kw := range c.Keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			if len(tags) < MaxTags {
				tags = append(tags, kw)
			}
		}
	}
	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}
