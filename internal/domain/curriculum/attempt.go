package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const AttemptCompleted = "completed"

type Answer struct {
	QuizID         uuid.UUID `json:"quizId"`
	SelectedAnswer int       `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	TimeSpent      int       `json:"timeSpent,omitempty"`
}

type QuizAttempt struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"userId"`
	SubjectID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID        uuid.UUID                   `gorm:"type:uuid;not null" json:"topicId"`
	Answers        datatypes.JSONSlice[Answer] `gorm:"column:answers;not null" json:"answers"`
	TotalQuestions int                         `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers int                         `gorm:"not null" json:"correctAnswers"`
	Score          int                         `gorm:"not null" json:"score"`
	TotalTimeSpent int                         `gorm:"not null" json:"totalTimeSpent"`
	Status         string                      `gorm:"not null" json:"status"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
