package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/chat"
	"github.com/yungbote/studybuddy-backend/internal/data/repos/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/data/repos/feedback"
	"github.com/yungbote/studybuddy-backend/internal/data/repos/user"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserDetailsRepo = user.UserDetailsRepo

type ChatHistoryRepo = chat.ChatHistoryRepo

type SubjectRepo = curriculum.SubjectRepo
type QuizRepo = curriculum.QuizRepo
type QuizFilter = curriculum.QuizFilter
type QuizAttemptRepo = curriculum.QuizAttemptRepo

type FeedbackRepo = feedback.FeedbackRepo
type FeedbackFilter = feedback.Filter

// Set bundles every repository built over one database handle.
type Set struct {
	Users       UserRepo
	UserDetails UserDetailsRepo
	ChatHistory ChatHistoryRepo
	Subjects    SubjectRepo
	Quizzes     QuizRepo
	Attempts    QuizAttemptRepo
	Feedback    FeedbackRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Users:       user.NewUserRepo(db, log),
		UserDetails: user.NewUserDetailsRepo(db, log),
		ChatHistory: chat.NewChatHistoryRepo(db, log),
		Subjects:    curriculum.NewSubjectRepo(db, log),
		Quizzes:     curriculum.NewQuizRepo(db, log),
		Attempts:    curriculum.NewQuizAttemptRepo(db, log),
		Feedback:    feedback.NewFeedbackRepo(db, log),
	}
}
