package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     user.RoleStudent,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUserDetails(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name, class string) *types.UserDetails {
	tb.Helper()
	d := &types.UserDetails{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       name,
		Phone:      "9" + userID.String()[:9],
		SchoolName: "Springfield High",
		Class:      class,
		Subjects:   []string{"Mathematics"},
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed user details: %v", err)
	}
	return d
}

// Entry builds a chat entry with a small token count.
func Entry(subject, query string) types.ChatEntry {
	return types.ChatEntry{Subject: subject, Query: query, Response: "answer to " + query, TokensUsed: 50}
}

// SeedChatDay stores one day with the given entries; positions follow slice order.
func SeedChatDay(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, day string, entries ...types.ChatEntry) *types.ChatHistory {
	tb.Helper()
	h := &types.ChatHistory{ID: uuid.New(), UserID: userID, Day: day}
	for _, e := range entries {
		h.TotalTokensSpent += e.TokensUsed
	}
	if err := tx.WithContext(ctx).Omit("Entries").Create(h).Error; err != nil {
		tb.Fatalf("seed chat day: %v", err)
	}
	base, err := time.Parse(chat.DayLayout, day)
	if err != nil {
		tb.Fatalf("seed chat day: bad day %q: %v", day, err)
	}
	for i := range entries {
		e := entries[i]
		e.ID = uuid.New()
		e.HistoryID = h.ID
		e.Position = i
		if e.CreatedAt.IsZero() {
			e.CreatedAt = base.Add(time.Duration(9+i) * time.Hour)
		}
		if err := tx.WithContext(ctx).Create(&e).Error; err != nil {
			tb.Fatalf("seed chat entry: %v", err)
		}
		h.Entries = append(h.Entries, e)
	}
	return h
}

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, topics ...curriculum.Topic) *types.Subject {
	tb.Helper()
	for i := range topics {
		if topics[i].ID == uuid.Nil {
			topics[i].ID = uuid.New()
		}
	}
	s := &types.Subject{ID: uuid.New(), Name: name, Topics: topics}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, subjectID, topicID uuid.UUID, classID string) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:              uuid.New(),
		Question:        "What is 2 + 2?",
		Options:         []curriculum.Option{{Text: "3"}, {Text: "4", IsCorrect: true}},
		SubjectID:       subjectID,
		TopicID:         topicID,
		Type:            curriculum.QuizTypeMultipleChoice,
		Difficulty:      1,
		DifficultyLevel: curriculum.DifficultyMedium,
		ClassID:         classID,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, subjectID uuid.UUID, score int, at time.Time) *types.QuizAttempt {
	tb.Helper()
	a := &types.QuizAttempt{
		ID:             uuid.New(),
		UserID:         userID,
		SubjectID:      subjectID,
		TopicID:        uuid.New(),
		Answers:        []curriculum.Answer{},
		TotalQuestions: 4,
		CorrectAnswers: score * 4 / 100,
		Score:          score,
		TotalTimeSpent: 120,
		Status:         curriculum.AttemptCompleted,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}
