// Package analytics derives per-student dashboards from chat days and quiz attempts.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
)

const (
	// tokensPerMinute converts token usage into an estimated study time.
	tokensPerMinute = 10
	trendDays       = 30
	notAvailable    = "N/A"

	MotivationHigh   = "High"
	MotivationMedium = "Medium"
	MotivationLow    = "Low"
)

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

type ChatStats struct {
	TotalMessages        int    `json:"totalMessages"`
	TotalDoubts          int    `json:"totalDoubts"`
	MostDiscussedSubject string `json:"mostDiscussedSubject"`
	TotalTimeSpent       string `json:"totalTimeSpent"`
	TimeOfDayMostActive  string `json:"timeOfDayMostActive"`
	Streak               int    `json:"streak"`
}

type QuizStats struct {
	TotalAttempted      int                `json:"totalAttempted"`
	Accuracy            int                `json:"accuracy"`
	SubjectWiseAttempts map[string]int     `json:"subjectWiseAttempts"`
	AverageScores       map[string]float64 `json:"averageScores"`
	LastQuizDate        string             `json:"lastQuizDate"`
	TopicsCompleted     int                `json:"topicsCompleted"`
}

type DailyActivity struct {
	Date      string   `json:"date"`
	Queries   int      `json:"queries"`
	TimeSpent int      `json:"timeSpent"`
	Subjects  []string `json:"subjects"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Activity int    `json:"activity"`
}

type ActivityPattern struct {
	DailyActivity []DailyActivity `json:"dailyActivity"`
	WeeklyPattern map[string]int  `json:"weeklyPattern"`
	MonthlyTrend  []TrendPoint    `json:"monthlyTrend"`
}

type SubjectShare struct {
	Subject    string `json:"subject"`
	Percentage int    `json:"percentage"`
	Queries    int    `json:"queries"`
}

type PerformancePoint struct {
	Date     string `json:"date"`
	Accuracy int    `json:"accuracy"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// Minutes estimates study time from tokens.
func Minutes(tokens int) int {
	if tokens <= 0 {
		return 0
	}
	return tokens / tokensPerMinute
}

// FormatDuration renders minutes as "Xhr Ymin".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dhr %dmin", minutes/60, minutes%60)
}

// Streak counts consecutive active days ending at today.
func Streak(days []*chat.ChatHistory, today time.Time) int {
	active := map[string]bool{}
	for _, d := range days {
		active[d.Day] = true
	}
	streak := 0
	for cur := today.UTC(); active[cur.Format(chat.DayLayout)]; cur = cur.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// MostActiveHour is the hour ("15:00") with the most entries; earliest hour wins ties.
func MostActiveHour(days []*chat.ChatHistory) string {
	var counts [24]int
	seen := false
	for _, d := range days {
		for _, e := range d.Entries {
			if e.CreatedAt.IsZero() {
				continue
			}
			counts[e.CreatedAt.UTC().Hour()]++
			seen = true
		}
	}
	if !seen {
		return notAvailable
	}
	best := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[best] {
			best = h
		}
	}
	return fmt.Sprintf("%d:00", best)
}

func ComputeChatStats(days []*chat.ChatHistory, today time.Time) ChatStats {
	stats := ChatStats{MostDiscussedSubject: notAvailable}
	tokens := 0
	subjectDays := map[string]int{}
	var order []string
	for _, d := range days {
		stats.TotalMessages += d.QueryCount()
		tokens += d.TotalTokensSpent
		for _, s := range d.Subjects() {
			if _, ok := subjectDays[s]; !ok {
				order = append(order, s)
			}
			subjectDays[s]++
		}
	}
	best := 0
	for _, s := range order {
		if subjectDays[s] > best {
			best = subjectDays[s]
			stats.MostDiscussedSubject = s
		}
	}
	stats.TotalDoubts = stats.TotalMessages
	stats.TotalTimeSpent = FormatDuration(Minutes(tokens))
	stats.TimeOfDayMostActive = MostActiveHour(days)
	stats.Streak = Streak(days, today)
	return stats
}

// ComputeQuizStats summarizes attempts; subjectNames maps subject ids to display names.
func ComputeQuizStats(attempts []*curriculum.QuizAttempt, subjectNames map[uuid.UUID]string) QuizStats {
	stats := QuizStats{
		SubjectWiseAttempts: map[string]int{},
		AverageScores:       map[string]float64{},
		LastQuizDate:        notAvailable,
	}
	if len(attempts) == 0 {
		return stats
	}
	totals := map[string]int{}
	topics := map[uuid.UUID]bool{}
	sum := 0
	var last time.Time
	for _, a := range attempts {
		name := subjectNames[a.SubjectID]
		if name == "" {
			name = a.SubjectID.String()
		}
		stats.SubjectWiseAttempts[name]++
		totals[name] += a.Score
		sum += a.Score
		if a.Status == curriculum.AttemptCompleted {
			topics[a.TopicID] = true
		}
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
	}
	for name, n := range stats.SubjectWiseAttempts {
		stats.AverageScores[name] = math.Round(float64(totals[name])/float64(n)*10) / 10
	}
	stats.TotalAttempted = len(attempts)
	stats.Accuracy = int(math.Round(float64(sum) / float64(len(attempts))))
	stats.TopicsCompleted = len(topics)
	stats.LastQuizDate = last.UTC().Format(chat.DayLayout)
	return stats
}

func MotivationLevel(sparkPoints int) string {
	switch {
	case sparkPoints > 500:
		return MotivationHigh
	case sparkPoints > 200:
		return MotivationMedium
	}
	return MotivationLow
}

// ComputeActivityPattern expects days oldest first.
func ComputeActivityPattern(days []*chat.ChatHistory) ActivityPattern {
	p := ActivityPattern{
		DailyActivity: make([]DailyActivity, 0, len(days)),
		WeeklyPattern: map[string]int{},
		MonthlyTrend:  []TrendPoint{},
	}
	for _, wd := range weekdays {
		p.WeeklyPattern[wd.String()] = 0
	}
	for _, d := range days {
		da := DailyActivity{
			Date:      d.Day,
			Queries:   d.QueryCount(),
			TimeSpent: Minutes(d.TotalTokensSpent),
			Subjects:  d.Subjects(),
		}
		p.DailyActivity = append(p.DailyActivity, da)
		if t, err := time.Parse(chat.DayLayout, d.Day); err == nil {
			p.WeeklyPattern[t.Weekday().String()] += da.Queries
		}
	}
	recent := p.DailyActivity
	if len(recent) > trendDays {
		recent = recent[len(recent)-trendDays:]
	}
	for _, da := range recent {
		p.MonthlyTrend = append(p.MonthlyTrend, TrendPoint{Date: da.Date, Activity: da.Queries + da.TimeSpent})
	}
	return p
}

// SubjectDistribution weights each day's subjects by that day's query count.
func SubjectDistribution(daily []DailyActivity) []SubjectShare {
	counts := map[string]int{}
	var order []string
	total := 0
	for _, d := range daily {
		for _, s := range d.Subjects {
			if _, ok := counts[s]; !ok {
				order = append(order, s)
			}
			counts[s] += d.Queries
			total += d.Queries
		}
	}
	out := make([]SubjectShare, 0, len(order))
	for _, s := range order {
		share := SubjectShare{Subject: s, Queries: counts[s]}
		if total > 0 {
			share.Percentage = int(math.Round(float64(counts[s]) / float64(total) * 100))
		}
		out = append(out, share)
	}
	return out
}

// PerformanceTrend averages attempt scores per day, oldest first, last 30 days with attempts.
func PerformanceTrend(attempts []*curriculum.QuizAttempt) []PerformancePoint {
	type agg struct{ score, n, correct, total int }
	byDay := map[string]*agg{}
	for _, a := range attempts {
		day := a.CreatedAt.UTC().Format(chat.DayLayout)
		g := byDay[day]
		if g == nil {
			g = &agg{}
			byDay[day] = g
		}
		g.score += a.Score
		g.n++
		g.correct += a.CorrectAnswers
		g.total += a.TotalQuestions
	}
	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > trendDays {
		dates = dates[len(dates)-trendDays:]
	}
	out := make([]PerformancePoint, 0, len(dates))
	for _, d := range dates {
		g := byDay[d]
		out = append(out, PerformancePoint{
			Date:     d,
			Accuracy: int(math.Round(float64(g.score) / float64(g.n))),
			Correct:  g.correct,
			Total:    g.total,
		})
	}
	return out
}

// WindowDays maps a chart period to its length in days.
func WindowDays(period string) (int, bool) {
	switch period {
	case "", "month":
		return 30, true
	case "week":
		return 7, true
	case "year":
		return 365, true
	}
	return 0, false
}
