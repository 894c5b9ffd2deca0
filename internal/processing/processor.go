package processing

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/peachstatelabs/gabills/internal/models"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// NormalizeSponsorName converts legislative "LAST, FIRST [MIDDLE]" names
// into "First [Middle] Last" display form. Names without a comma are
// assumed to already be in display order and are only title-cased. The
// function is idempotent: a normalized name passes through unchanged.
func NormalizeSponsorName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}

	if last, first, ok := strings.Cut(trimmed, ","); ok {
		return titleCaseWords(first) + " " + titleCaseWords(last)
	}

	return titleCaseWords(trimmed)
}

// SponsorNames coerces a bill's sponsors to a normalized name list,
// dropping blank entries while preserving order and duplicates.
func SponsorNames(bill models.Bill) []string {
	out := make([]string, 0, len(bill.Sponsors))
	for _, raw := range bill.Sponsors {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out = append(out, NormalizeSponsorName(raw))
	}
	return out
}

// CaptionWords returns the significant caption vocabulary: lowercased
// words longer than 4 characters, split on any non-letter/digit run.
// Duplicates are preserved; the similarity scorer counts occurrences.
func CaptionWords(caption string) []string {
	var words []string
	for _, w := range nonWord.Split(strings.ToLower(caption), -1) {
		if len([]rune(w)) > 4 {
			words = append(words, w)
		}
	}
	return words
}

func titleCaseWords(s string) string {
	fields := whitespace.Split(strings.TrimSpace(s), -1)
	for i, w := range fields {
		fields[i] = titleCaseWord(w)
	}
	return strings.Join(fields, " ")
}

func titleCaseWord(w string) string {
	if w == "" {
		return w
	}
	runes := []rune(w)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
