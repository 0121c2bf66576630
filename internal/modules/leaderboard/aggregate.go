package leaderboard

import (
	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
)

// Totals is one user's activity over the selected days.
type Totals struct {
	UserID   uuid.UUID
	Tokens   int
	Queries  int
	Days     int
	Subjects []string
}

// Streak is the number of distinct active days.
func (t *Totals) Streak() int { return t.Days }

func (t *Totals) SparkPoints() int {
	return SparkPoints(t.Tokens, t.Queries, t.Streak())
}

// Aggregate folds day records into per-user totals. When subject is set only
// days that mention it count. Users come out in order of first appearance.
func Aggregate(days []*chat.ChatHistory, subject string) []*Totals {
	var out []*Totals
	idx := map[uuid.UUID]int{}
	seenDay := map[uuid.UUID]map[string]bool{}
	seenSubject := map[uuid.UUID]map[string]bool{}
	for _, d := range days {
		if d == nil {
			continue
		}
		if subject != "" && !d.HasSubject(subject) {
			continue
		}
		i, ok := idx[d.UserID]
		if !ok {
			i = len(out)
			idx[d.UserID] = i
			out = append(out, &Totals{UserID: d.UserID, Subjects: []string{}})
			seenDay[d.UserID] = map[string]bool{}
			seenSubject[d.UserID] = map[string]bool{}
		}
		t := out[i]
		t.Tokens += d.TotalTokensSpent
		t.Queries += d.QueryCount()
		if !seenDay[d.UserID][d.Day] {
			seenDay[d.UserID][d.Day] = true
			t.Days++
		}
		for _, s := range d.Subjects() {
			if !seenSubject[d.UserID][s] {
				seenSubject[d.UserID][s] = true
				t.Subjects = append(t.Subjects, s)
			}
		}
	}
	return out
}
