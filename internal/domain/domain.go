package domain

import (
	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/domain/feedback"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
)

type (
	User        = user.User
	UserDetails = user.UserDetails

	ChatHistory = chat.ChatHistory
	ChatEntry   = chat.ChatEntry

	Subject     = curriculum.Subject
	Topic       = curriculum.Topic
	Quiz        = curriculum.Quiz
	QuizOption  = curriculum.Option
	QuizAttempt = curriculum.QuizAttempt
	QuizAnswer  = curriculum.Answer

	Feedback       = feedback.Feedback
	FeedbackStatus = feedback.Status
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.UserDetails{},
		&chat.ChatHistory{},
		&chat.ChatEntry{},
		&curriculum.Subject{},
		&curriculum.Quiz{},
		&curriculum.QuizAttempt{},
		&feedback.Feedback{},
	}
}
