// Package similar recommends related bills with a weighted-overlap score
// over sponsors, tags, committees, caption vocabulary and status.
package similar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/peachstatelabs/gabills/internal/classify"
	"github.com/peachstatelabs/gabills/internal/models"
	"github.com/peachstatelabs/gabills/internal/processing"
)

// Score weights and bounds.
const (
	sponsorWeight   = 40
	tagWeight       = 20
	committeeWeight = 15
	captionWeight   = 5
	captionCap      = 30
	statusBonus     = 5

	// Bills at or below this score are not worth recommending.
	minScore = 20

	// DefaultLimit is the recommendation count for the related-bills view.
	DefaultLimit = 5
	// CompareLimit bounds suggestions when picking comparison candidates.
	CompareLimit = 3

	maxReasons = 3
)

// Match is a scored recommendation with human-readable reasons.
type Match struct {
	Bill    models.Bill `json:"bill"`
	Score   int         `json:"score"`
	Reasons []string    `json:"reasons"`
}

// Related scores every other bill in the collection against the reference
// bill, drops weak matches, and returns the top matches by descending
// score. Ties keep collection order.
func Related(current models.Bill, all []models.Bill, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	currentSponsors := toSet(processing.SponsorNames(current))
	currentTags := classify.Tags(current)
	currentIssue := classify.Issue(current)
	currentCommittees := toSet(current.Committees)
	currentWords := toSet(processing.CaptionWords(current.Caption))

	var matches []Match
	for _, candidate := range all {
		if candidate.DocNumber == current.DocNumber {
			continue
		}

		score := 0
		var reasons []string

		sponsors := processing.SponsorNames(candidate)
		shared := intersect(sponsors, currentSponsors)
		if len(shared) > 0 {
			score += len(shared) * sponsorWeight
			reasons = append(reasons, "Shared sponsor: "+shared[0])
		}

		if currentIssue != "" && classify.Issue(candidate) == currentIssue {
			reasons = append(reasons, "Same issue: "+formatIssue(currentIssue))
		}

		tags := intersect(classify.Tags(candidate), toSet(currentTags))
		if len(tags) > 0 {
			score += len(tags) * tagWeight
			if len(reasons) < maxReasons {
				reasons = append(reasons, fmt.Sprintf("Similar topic: %s", tags[0]))
			}
		}

		committees := intersect(candidate.Committees, currentCommittees)
		if len(committees) > 0 {
			score += len(committees) * committeeWeight
		}

		words := intersect(processing.CaptionWords(candidate.Caption), currentWords)
		if len(words) > 3 {
			contribution := len(words) * captionWeight
			if contribution > captionCap {
				contribution = captionCap
			}
			score += contribution
		}

		// First recorded status, not the chronologically latest one.
		if current.FirstRecordedStatus() != "" && current.FirstRecordedStatus() == candidate.FirstRecordedStatus() {
			score += statusBonus
		}

		if score <= minScore {
			continue
		}
		if len(reasons) > maxReasons {
			reasons = reasons[:maxReasons]
		}
		matches = append(matches, Match{Bill: candidate, Score: score, Reasons: reasons})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// intersect returns the members of items found in set, deduplicated, in
// items order.
func intersect(items []string, set map[string]struct{}) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range items {
		if _, ok := set[item]; !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func formatIssue(issue string) string {
	parts := strings.Split(issue, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
