package model

// NoCategory is reported as the most common category when nothing was found.
const NoCategory = "None"

// BatchStatistics is the summary derived from a finalized Batch.
// It is computed once and never mutated.
type BatchStatistics struct {
	Total              int            `json:"total"`
	FoundCount         int            `json:"found_count"`
	NotFoundCount      int            `json:"not_found_count"`
	ErrorCount         int            `json:"error_count"`
	ScrapableFound     int            `json:"scrapable_found"`
	SuccessRatePct     float64        `json:"success_rate_pct"`
	CategoryBreakdown  map[string]int `json:"category_breakdown"`
	CategoryOrder      []string       `json:"category_order"`
	MostCommonCategory string         `json:"most_common_category"`
	Recommendations    []string       `json:"recommendations"`
}
