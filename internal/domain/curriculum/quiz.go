package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	QuizTypeMultipleChoice = "multiple-choice"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Quiz struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Question        string                      `gorm:"type:text;not null" json:"question"`
	Options         datatypes.JSONSlice[Option] `gorm:"column:options;not null" json:"options"`
	SubjectID       uuid.UUID                   `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"topicId"`
	Type            string                      `gorm:"not null" json:"type"`
	Difficulty      int                         `gorm:"not null" json:"difficulty"`
	DifficultyLevel string                      `gorm:"column:difficulty_level" json:"difficulty_level"`
	Explanation     string                      `gorm:"type:text" json:"explanation,omitempty"`
	ClassID         string                      `gorm:"index" json:"classId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Quiz) TableName() string { return "quiz" }

// CorrectIndex is the index of the first correct option, or -1.
func (q *Quiz) CorrectIndex() int {
	for i, o := range q.Options {
		if o.IsCorrect {
			return i
		}
	}
	return -1
}

func HasCorrectOption(opts []Option) bool {
	for _, o := range opts {
		if o.IsCorrect {
			return true
		}
	}
	return false
}

func ValidDifficultyLevel(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
