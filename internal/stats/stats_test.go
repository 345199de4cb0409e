package stats

import (
	"reflect"
	"testing"

	"github.com/nao1215/footprint/internal/model"
)

func result(index int, category string, scrapable bool) model.Result {
	return model.Result{
		Index: index,
		Endpoint: model.EndpointDescriptor{
			Name:        category + string(rune('a'+index)),
			Category:    category,
			URLTemplate: "https://x/{}",
			Scrapable:   scrapable,
		},
		Outcome: model.NewFound("https://x/a", 200, 0, 0, ""),
	}
}

// TestSuccessRate tests rounding and the zero-total case.
func TestSuccessRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		found    int
		total    int
		expected float64
	}{
		{"zero total", 0, 0, 0},
		{"three of five", 3, 5, 60},
		{"one of three", 1, 3, 33.33},
		{"two of three", 2, 3, 66.67},
		{"all", 7, 7, 100},
		{"none", 0, 9, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SuccessRate(tc.found, tc.total); got != tc.expected {
				t.Errorf("got %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestSummarize tests the derived statistics.
func TestSummarize(t *testing.T) {
	t.Parallel()

	b := model.NewBatch("alice", model.KindUsername, 8)
	// deliberately out of catalog order
	b.Found = []model.Result{
		result(5, "gaming", false),
		result(1, "social_media", true),
		result(3, "gaming", true),
		result(0, "social_media", false),
	}
	b.NotFound = []model.Result{{Index: 2}, {Index: 4}}
	b.Errors = []model.Result{{Index: 6}, {Index: 7}}

	st := Summarize(b)

	if st.Total != 8 || st.FoundCount != 4 || st.NotFoundCount != 2 || st.ErrorCount != 2 {
		t.Errorf("counts = %+v", st)
	}
	if st.SuccessRatePct != 50 {
		t.Errorf("SuccessRatePct = %v", st.SuccessRatePct)
	}
	if !reflect.DeepEqual(st.CategoryBreakdown, map[string]int{"social_media": 2, "gaming": 2}) {
		t.Errorf("CategoryBreakdown = %v", st.CategoryBreakdown)
	}
	// tie broken by catalog order: social_media has index 0
	if st.MostCommonCategory != "social_media" {
		t.Errorf("MostCommonCategory = %q", st.MostCommonCategory)
	}
	if !reflect.DeepEqual(st.CategoryOrder, []string{"social_media", "gaming"}) {
		t.Errorf("CategoryOrder = %v", st.CategoryOrder)
	}
	if st.ScrapableFound != 2 {
		t.Errorf("ScrapableFound = %d", st.ScrapableFound)
	}

	expected := []string{
		"Found 4 potential profiles across 2 categories",
		"2 profiles available for detailed scraping",
		RecommendLimitedPresence,
	}
	if !reflect.DeepEqual(st.Recommendations, expected) {
		t.Errorf("Recommendations = %q", st.Recommendations)
	}

	// the batch must not be reordered
	if b.Found[0].Index != 5 {
		t.Error("Summarize mutated the batch")
	}
}

// TestSummarizeEmpty tests the empty batch.
func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	st := Summarize(model.NewBatch("alice", model.KindUsername, 0))
	if st.Total != 0 || st.SuccessRatePct != 0 {
		t.Errorf("stats = %+v", st)
	}
	if st.MostCommonCategory != model.NoCategory {
		t.Errorf("MostCommonCategory = %q", st.MostCommonCategory)
	}
	if !reflect.DeepEqual(st.Recommendations, []string{RecommendNoProfiles}) {
		t.Errorf("Recommendations = %q", st.Recommendations)
	}
}

// TestRecommendations tests the threshold rules.
func TestRecommendations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		found    int
		last     string
		expected int
	}{
		{"none", 0, RecommendNoProfiles, 1},
		{"one", 1, RecommendLimitedPresence, 2},
		{"four", 4, RecommendLimitedPresence, 2},
		{"five", 5, RecommendModeratePresence, 2},
		{"nine", 9, RecommendModeratePresence, 2},
		{"ten", 10, RecommendHighPresence, 2},
		{"many", 40, RecommendHighPresence, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			recs := Recommendations(tc.found, 1, 0)
			if len(recs) != tc.expected {
				t.Fatalf("len = %d, expected %d: %q", len(recs), tc.expected, recs)
			}
			if recs[len(recs)-1] != tc.last {
				t.Errorf("last = %q, expected %q", recs[len(recs)-1], tc.last)
			}
		})
	}
}
