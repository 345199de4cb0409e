package stats

import (
	"fmt"
	"math"

	"github.com/nao1215/footprint/internal/model"
)

// Presence thresholds used by the recommendation rules.
const (
	HighPresenceThreshold     = 10
	ModeratePresenceThreshold = 5
)

// Fixed recommendation texts.
const (
	RecommendHighPresence     = "High profile presence - consider detailed investigation"
	RecommendModeratePresence = "Moderate profile presence - investigate key platforms"
	RecommendLimitedPresence  = "Limited presence - focus on confirmed profiles"
	RecommendNoProfiles       = "No profiles found - try alternative subjects or variations"
)

// Summarize computes statistics for b.
// Found results must carry their catalog index, which the aggregator guarantees;
// it is used to break ties between equally common categories.
func Summarize(b *model.Batch) model.BatchStatistics {
	st := model.BatchStatistics{
		Total:             b.EndpointsTotal,
		FoundCount:        len(b.Found),
		NotFoundCount:     len(b.NotFound),
		ErrorCount:        len(b.Errors),
		CategoryBreakdown: make(map[string]int),
		CategoryOrder:     []string{},
	}

	st.SuccessRatePct = SuccessRate(st.FoundCount, st.Total)

	found := make([]model.Result, len(b.Found))
	copy(found, b.Found)
	model.SortResults(found)

	for _, r := range found {
		cat := r.Endpoint.Category
		if _, seen := st.CategoryBreakdown[cat]; !seen {
			st.CategoryOrder = append(st.CategoryOrder, cat)
		}
		st.CategoryBreakdown[cat]++
		if r.Endpoint.Scrapable {
			st.ScrapableFound++
		}
	}

	st.MostCommonCategory = mostCommon(st.CategoryOrder, st.CategoryBreakdown)
	st.Recommendations = Recommendations(st.FoundCount, len(st.CategoryBreakdown), st.ScrapableFound)

	return st
}

// SuccessRate returns found/total as a percentage rounded to two decimals.
// It is 0 when total is 0.
func SuccessRate(found, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(found) / float64(total) * 100
	return math.Round(pct*100) / 100
}

// mostCommon returns the category with the highest count. order lists
// categories by the catalog position of their first found endpoint, so the
// first maximum wins ties.
func mostCommon(order []string, counts map[string]int) string {
	best := model.NoCategory
	bestCount := 0
	for _, cat := range order {
		if counts[cat] > bestCount {
			best = cat
			bestCount = counts[cat]
		}
	}
	return best
}

// Recommendations returns the rule-based advice for the given counts.
func Recommendations(found, categories, scrapable int) []string {
	var recs []string

	if found > 0 {
		recs = append(recs, fmt.Sprintf("Found %d potential profiles across %d categories", found, categories))
	}
	if scrapable > 0 {
		recs = append(recs, fmt.Sprintf("%d profiles available for detailed scraping", scrapable))
	}

	switch {
	case found >= HighPresenceThreshold:
		recs = append(recs, RecommendHighPresence)
	case found >= ModeratePresenceThreshold:
		recs = append(recs, RecommendModeratePresence)
	case found > 0:
		recs = append(recs, RecommendLimitedPresence)
	default:
		recs = append(recs, RecommendNoProfiles)
	}

	return recs
}
