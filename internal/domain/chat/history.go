package chat

import (
	"time"

	"github.com/google/uuid"
)

// DayLayout is the calendar-day key format used by ChatHistory.Day.
const DayLayout = "2006-01-02"

// ChatHistory is one user's tutoring activity for one calendar day.
// (UserID, Day) is unique; Entries are appended, never rewritten.
type ChatHistory struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_history_user_day,priority:1" json:"userId"`
	Day              string    `gorm:"column:day;size:10;not null;uniqueIndex:idx_chat_history_user_day,priority:2;index" json:"date"`
	TotalTokensSpent int       `gorm:"column:total_tokens_spent;not null" json:"totalTokensSpent"`

	Entries []ChatEntry `gorm:"foreignKey:HistoryID;references:ID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (ChatHistory) TableName() string { return "chat_history" }

type ChatEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HistoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Position   int       `gorm:"not null" json:"-"`
	Subject    string    `gorm:"not null;index" json:"subject"`
	Topic      string    `gorm:"index" json:"topic,omitempty"`
	Query      string    `gorm:"type:text;not null" json:"query"`
	Response   string    `gorm:"type:text;not null" json:"response"`
	TokensUsed int       `gorm:"not null" json:"tokensUsed"`
	Summary    string    `gorm:"type:text" json:"summary"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`
}

func (ChatEntry) TableName() string { return "chat_entry" }

// Subjects lists the day's subjects in first-seen order.
func (h *ChatHistory) Subjects() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, e := range h.Entries {
		if !seen[e.Subject] {
			seen[e.Subject] = true
			out = append(out, e.Subject)
		}
	}
	return out
}

// Topics lists the day's non-empty topics in first-seen order.
func (h *ChatHistory) Topics() []string {
	out := []string{}
	seen := map[string]bool{}
	for _, e := range h.Entries {
		if e.Topic == "" || seen[e.Topic] {
			continue
		}
		seen[e.Topic] = true
		out = append(out, e.Topic)
	}
	return out
}

func (h *ChatHistory) HasSubject(subject string) bool {
	for _, e := range h.Entries {
		if e.Subject == subject {
			return true
		}
	}
	return false
}

func (h *ChatHistory) QueryCount() int { return len(h.Entries) }

// EntriesFor returns the entries for subject in stored order.
func (h *ChatHistory) EntriesFor(subject string) []ChatEntry {
	var out []ChatEntry
	for _, e := range h.Entries {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out
}

type SubjectQueries struct {
	Subject string      `json:"subject"`
	Queries []ChatEntry `json:"queries"`
}

// DayView is the wire shape of a ChatHistory: entries grouped per subject.
type DayView struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"userId"`
	Date             string           `json:"date"`
	SubjectWise      []SubjectQueries `json:"subjectWise"`
	TotalTokensSpent int              `json:"totalTokensSpent"`
	Subjects         []string         `json:"subjects"`
	Topics           []string         `json:"topics"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (h *ChatHistory) View() DayView {
	return h.ViewFiltered(nil)
}

// ViewFiltered renders the day keeping only entries accepted by keep (nil keeps all).
func (h *ChatHistory) ViewFiltered(keep func(ChatEntry) bool) DayView {
	grouped := []SubjectQueries{}
	idx := map[string]int{}
	for _, e := range h.Entries {
		if keep != nil && !keep(e) {
			continue
		}
		i, ok := idx[e.Subject]
		if !ok {
			i = len(grouped)
			idx[e.Subject] = i
			grouped = append(grouped, SubjectQueries{Subject: e.Subject})
		}
		grouped[i].Queries = append(grouped[i].Queries, e)
	}
	return DayView{
		ID:               h.ID,
		UserID:           h.UserID,
		Date:             h.Day,
		SubjectWise:      grouped,
		TotalTokensSpent: h.TotalTokensSpent,
		Subjects:         h.Subjects(),
		Topics:           h.Topics(),
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}
