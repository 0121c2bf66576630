package leaderboard

import (
	"math"
	"sort"
)

const (
	tokensPerPoint  = 100
	pointsPerQuery  = 5
	streakStep      = 0.1
	maxStreakFactor = 2.0
)

// SparkPoints = floor((floor(tokens/100) + queries*5) * min(1 + streak*0.1, 2)).
func SparkPoints(totalTokens, totalQueries, streak int) int {
	if totalTokens < 0 {
		totalTokens = 0
	}
	if totalQueries < 0 {
		totalQueries = 0
	}
	base := float64(totalTokens/tokensPerPoint + totalQueries*pointsPerQuery)
	return int(math.Floor(base * StreakMultiplier(streak)))
}

// StreakMultiplier is the bonus factor for streak, capped at 2.
func StreakMultiplier(streak int) float64 {
	if streak < 0 {
		streak = 0
	}
	return math.Min(1+float64(streak)*streakStep, maxStreakFactor)
}

// Scored is anything Rank can order.
type Scored interface {
	Points() int
	SetRank(rank int)
}

// Rank sorts items by points descending, keeping aggregation order on ties,
// and assigns 1-based ranks.
func Rank[T Scored](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Points() > items[j].Points()
	})
	for i := range items {
		items[i].SetRank(i + 1)
	}
}
