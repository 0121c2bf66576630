package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type AnswerInput struct {
	QuizID         uuid.UUID
	SelectedAnswer int
	TimeSpent      int
}

type AttemptInput struct {
	SubjectID      uuid.UUID
	TopicID        uuid.UUID
	Answers        []AnswerInput
	TotalTimeSpent *int
}

// StudyService serves the student side of the curriculum.
type StudyService interface {
	SubjectsForUser(ctx context.Context) ([]*types.Subject, error)
	SubjectForUser(ctx context.Context, id uuid.UUID) (*types.Subject, error)
	QuizzesForUser(ctx context.Context, q QuizQuery) ([]*types.Quiz, error)
	SubmitAttempt(ctx context.Context, in AttemptInput) (*types.QuizAttempt, error)
	ListAttempts(ctx context.Context) ([]*types.QuizAttempt, error)
}

type studyService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
	quizRepo    repos.QuizRepo
	attemptRepo repos.QuizAttemptRepo
	detailsRepo repos.UserDetailsRepo
}

func NewStudyService(
	db *gorm.DB,
	log *logger.Logger,
	subjectRepo repos.SubjectRepo,
	quizRepo repos.QuizRepo,
	attemptRepo repos.QuizAttemptRepo,
	detailsRepo repos.UserDetailsRepo,
) StudyService {
	return &studyService{
		db:          db,
		log:         log.With("service", "StudyService"),
		subjectRepo: subjectRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		detailsRepo: detailsRepo,
	}
}

// userClass returns the short class id of the caller, or "" when no profile exists.
func (ss *studyService) userClass(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	d, err := ss.detailsRepo.GetByUserID(dbc, userID)
	if err != nil {
		return "", fmt.Errorf("load user details: %w", err)
	}
	if d == nil {
		return "", nil
	}
	return user.NormalizeClassID(d.Class), nil
}

func filterTopics(s *types.Subject, classID string) *types.Subject {
	if classID == "" {
		return s
	}
	s.Topics = s.TopicsForClass(classID)
	return s
}

func (ss *studyService) SubjectsForUser(ctx context.Context) ([]*types.Subject, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	classID, err := ss.userClass(dbc, userID)
	if err != nil {
		return nil, err
	}
	subjects, err := ss.subjectRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	for _, s := range subjects {
		filterTopics(s, classID)
	}
	return subjects, nil
}

func (ss *studyService) SubjectForUser(ctx context.Context, id uuid.UUID) (*types.Subject, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	classID, err := ss.userClass(dbc, userID)
	if err != nil {
		return nil, err
	}
	s, err := ss.subjectRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if s == nil {
		return nil, subjectNotFound(id)
	}
	return filterTopics(s, classID), nil
}

func (ss *studyService) QuizzesForUser(ctx context.Context, q QuizQuery) ([]*types.Quiz, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	classID, err := ss.userClass(dbc, userID)
	if err != nil {
		return nil, err
	}
	out, err := ss.quizRepo.List(dbc, repos.QuizFilter{
		SubjectID: q.SubjectID,
		TopicID:   q.TopicID,
		ClassIDs:  classFilter(classID),
		Limit:     q.NoOfQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

// Score returns round(correct/total*100), 0 for an empty attempt.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (ss *studyService) SubmitAttempt(ctx context.Context, in AttemptInput) (*types.QuizAttempt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Answers) == 0 {
		return nil, apierr.BadRequest("invalid_request", "answers are required")
	}
	dbc := dbctx.New(ctx)

	ids := make([]uuid.UUID, 0, len(in.Answers))
	for _, a := range in.Answers {
		ids = append(ids, a.QuizID)
	}
	quizzes, err := ss.quizRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}

	attempt := &types.QuizAttempt{
		UserID:         userID,
		SubjectID:      in.SubjectID,
		TopicID:        in.TopicID,
		TotalQuestions: len(in.Answers),
		Status:         curriculum.AttemptCompleted,
	}
	answers := make([]curriculum.Answer, 0, len(in.Answers))
	spent := 0
	for _, a := range in.Answers {
		q := byID[a.QuizID]
		if q == nil {
			return nil, apierr.NotFound("quiz_not_found", "quiz with ID %s not found", a.QuizID)
		}
		correct := a.SelectedAnswer == q.CorrectIndex()
		if correct {
			attempt.CorrectAnswers++
		}
		spent += a.TimeSpent
		answers = append(answers, curriculum.Answer{
			QuizID:         a.QuizID,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      correct,
			TimeSpent:      a.TimeSpent,
		})
	}
	attempt.Answers = answers
	attempt.Score = Score(attempt.CorrectAnswers, attempt.TotalQuestions)
	attempt.TotalTimeSpent = spent
	if in.TotalTimeSpent != nil {
		attempt.TotalTimeSpent = *in.TotalTimeSpent
	}

	created, err := ss.attemptRepo.Create(dbc, attempt)
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	ss.log.Ctx(ctx).Info("Quiz attempt recorded", "user_id", userID, "score", created.Score, "questions", created.TotalQuestions)
	return created, nil
}

func (ss *studyService) ListAttempts(ctx context.Context) ([]*types.QuizAttempt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := ss.attemptRepo.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}
