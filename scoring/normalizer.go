package scoring

// ScoreType selects the normalization table
type ScoreType string

const (
	ScoreTypeLP   ScoreType = "lp_score"
	ScoreTypeSwap ScoreType = "swap_score"
)

// ActivityThresholds gate tagging in the percentile-based scoring model.
// The production path tags on transaction existence and does not consult
// these; they belong to the normalized model below.
type ActivityThresholds struct {
	MinActiveDays int
	MinTxCount    int
}

// Default thresholds for the percentile-based model
var (
	DefaultLPThresholds   = ActivityThresholds{MinActiveDays: 15, MinTxCount: 5}
	DefaultSwapThresholds = ActivityThresholds{MinActiveDays: 10, MinTxCount: 5}
)

// scoreBucket maps a half-open percentile range [lower, upper) to a score
type scoreBucket struct {
	lower float64
	upper float64
	score int
}

var lpScoreBuckets = []scoreBucket{
	{0, 1, 150},
	{1, 5, 250},
	{5, 10, 350},
	{10, 25, 450},
	{25, 50, 550},
	{50, 75, 650},
	{75, 90, 750},
	{90, 95, 850},
	{95, 99, 950},
	{99, 100, 1000},
}

var swapScoreBuckets = []scoreBucket{
	{0, 1, 150},
	{1, 5, 250},
	{5, 10, 350},
	{10, 25, 450},
	{25, 50, 550},
	{50, 75, 650},
	{75, 90, 800},
	{90, 95, 900},
	{95, 99, 950},
	{99, 100, 1000},
}

const topBucketScore = 1000

// NormalizeScore maps a percentile position (0-100) to a bounded score.
// This converts a wallet's rank within the overall population (e.g. its
// transaction count is in the 90th percentile) into a score; the rank
// itself comes from an external population-statistics source. Values at
// or above 99 always map to the top bucket, covering floating-point
// edge cases at the upper boundary.
func NormalizeScore(percentile float64, scoreType ScoreType) int {
	buckets := lpScoreBuckets
	if scoreType == ScoreTypeSwap {
		buckets = swapScoreBuckets
	}

	for _, b := range buckets {
		if percentile >= b.lower && percentile < b.upper {
			return b.score
		}
	}

	if percentile >= 99 {
		return topBucketScore
	}

	return 0
}
