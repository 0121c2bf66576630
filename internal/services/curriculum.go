package services

import (
	"context"
	"fmt"
	"strings"

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

type TopicInput struct {
	ID          *uuid.UUID
	Name        string
	Description string
	ClassID     string
}

type SubjectInput struct {
	Name        string
	Description string
	// Topics replaces the embedded list on update when non-nil.
	Topics []TopicInput
}

type QuizInput struct {
	Question        string
	Options         []curriculum.Option
	SubjectID       uuid.UUID
	TopicID         uuid.UUID
	Type            string
	Difficulty      *int
	DifficultyLevel string
	Explanation     string
	ClassID         string
}

type QuizUpdate struct {
	Question        *string
	Options         []curriculum.Option
	Type            *string
	Difficulty      *int
	DifficultyLevel *string
	Explanation     *string
	ClassID         *string
}

type QuizQuery struct {
	SubjectID     *uuid.UUID
	TopicID       *uuid.UUID
	ClassID       string
	NoOfQuestions int
}

type BulkResult struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

type CurriculumService interface {
	ListSubjects(ctx context.Context) ([]*types.Subject, error)
	GetSubject(ctx context.Context, id uuid.UUID) (*types.Subject, error)
	CreateSubject(ctx context.Context, in SubjectInput) (*types.Subject, error)
	UpdateSubject(ctx context.Context, id uuid.UUID, in SubjectInput) (*types.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error

	AddTopic(ctx context.Context, subjectID uuid.UUID, in TopicInput) (*types.Subject, error)
	UpdateTopic(ctx context.Context, subjectID, topicID uuid.UUID, in TopicInput) (*types.Subject, error)
	DeleteTopic(ctx context.Context, subjectID, topicID uuid.UUID) (*types.Subject, error)

	CreateQuiz(ctx context.Context, in QuizInput) (*types.Quiz, error)
	CreateQuizzes(ctx context.Context, in []QuizInput) (*BulkResult, error)
	ListQuizzes(ctx context.Context, q QuizQuery) ([]*types.Quiz, error)
	GetQuiz(ctx context.Context, id uuid.UUID) (*types.Quiz, error)
	UpdateQuiz(ctx context.Context, id uuid.UUID, in QuizUpdate) (*types.Quiz, error)
	DeleteQuiz(ctx context.Context, id uuid.UUID) error
}

type curriculumService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
	quizRepo    repos.QuizRepo
}

func NewCurriculumService(db *gorm.DB, log *logger.Logger, subjectRepo repos.SubjectRepo, quizRepo repos.QuizRepo) CurriculumService {
	return &curriculumService{
		db:          db,
		log:         log.With("service", "CurriculumService"),
		subjectRepo: subjectRepo,
		quizRepo:    quizRepo,
	}
}

func subjectNotFound(id uuid.UUID) error {
	return apierr.NotFound("subject_not_found", "subject with ID %s not found", id)
}

func topicNotFound(id uuid.UUID) error {
	return apierr.NotFound("topic_not_found", "topic with ID %s not found", id)
}

func buildTopic(in TopicInput) (curriculum.Topic, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return curriculum.Topic{}, apierr.BadRequest("invalid_request", "topic name is required")
	}
	t := curriculum.Topic{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		ClassID:     strings.TrimSpace(in.ClassID),
	}
	if in.ID != nil && *in.ID != uuid.Nil {
		t.ID = *in.ID
	}
	return t, nil
}

func (cs *curriculumService) ListSubjects(ctx context.Context) ([]*types.Subject, error) {
	out, err := cs.subjectRepo.List(dbctx.New(ctx))
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return out, nil
}

func (cs *curriculumService) GetSubject(ctx context.Context, id uuid.UUID) (*types.Subject, error) {
	s, err := cs.subjectRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if s == nil {
		return nil, subjectNotFound(id)
	}
	return s, nil
}

func (cs *curriculumService) CreateSubject(ctx context.Context, in SubjectInput) (*types.Subject, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_request", "subject name is required")
	}
	topics := make([]curriculum.Topic, 0, len(in.Topics))
	for _, ti := range in.Topics {
		t, err := buildTopic(ti)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	var created *types.Subject
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := cs.subjectRepo.GetByName(dbc, name)
		if err != nil {
			return fmt.Errorf("check subject name: %w", err)
		}
		if existing != nil {
			return apierr.Conflict("subject_exists", "subject with name %s already exists", name)
		}
		created, err = cs.subjectRepo.Create(dbc, &types.Subject{
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Topics:      topics,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Subject created", "subject_id", created.ID, "name", created.Name)
	return created, nil
}

func (cs *curriculumService) UpdateSubject(ctx context.Context, id uuid.UUID, in SubjectInput) (*types.Subject, error) {
	var out *types.Subject
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := cs.subjectRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load subject: %w", err)
		}
		if s == nil {
			return subjectNotFound(id)
		}
		if name := strings.TrimSpace(in.Name); name != "" && name != s.Name {
			clash, err := cs.subjectRepo.GetByName(dbc, name)
			if err != nil {
				return fmt.Errorf("check subject name: %w", err)
			}
			if clash != nil {
				return apierr.Conflict("subject_exists", "subject with name %s already exists", name)
			}
			s.Name = name
		}
		if in.Description != "" {
			s.Description = strings.TrimSpace(in.Description)
		}
		if in.Topics != nil {
			topics := make([]curriculum.Topic, 0, len(in.Topics))
			for _, ti := range in.Topics {
				t, err := buildTopic(ti)
				if err != nil {
					return err
				}
				topics = append(topics, t)
			}
			s.Topics = topics
		}
		if err := cs.subjectRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save subject: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSubject removes the subject, its embedded topics and its quizzes in one transaction.
func (cs *curriculumService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		deleted, err := cs.subjectRepo.Delete(dbc, id)
		if err != nil {
			return fmt.Errorf("delete subject: %w", err)
		}
		if !deleted {
			return subjectNotFound(id)
		}
		removed, err := cs.quizRepo.DeleteBySubject(dbc, id)
		if err != nil {
			return fmt.Errorf("delete subject quizzes: %w", err)
		}
		cs.log.Info("Subject deleted", "subject_id", id, "quizzes_removed", removed)
		return nil
	})
}

// mutateSubject loads a subject, applies fn and saves it in one transaction.
func (cs *curriculumService) mutateSubject(ctx context.Context, subjectID uuid.UUID, fn func(dbc dbctx.Context, s *types.Subject) error) (*types.Subject, error) {
	var out *types.Subject
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := cs.subjectRepo.GetByID(dbc, subjectID)
		if err != nil {
			return fmt.Errorf("load subject: %w", err)
		}
		if s == nil {
			return subjectNotFound(subjectID)
		}
		if err := fn(dbc, s); err != nil {
			return err
		}
		if err := cs.subjectRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save subject: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *curriculumService) AddTopic(ctx context.Context, subjectID uuid.UUID, in TopicInput) (*types.Subject, error) {
	t, err := buildTopic(TopicInput{Name: in.Name, Description: in.Description, ClassID: in.ClassID})
	if err != nil {
		return nil, err
	}
	return cs.mutateSubject(ctx, subjectID, func(_ dbctx.Context, s *types.Subject) error {
		s.Topics = append(s.Topics, t)
		return nil
	})
}

func (cs *curriculumService) UpdateTopic(ctx context.Context, subjectID, topicID uuid.UUID, in TopicInput) (*types.Subject, error) {
	return cs.mutateSubject(ctx, subjectID, func(_ dbctx.Context, s *types.Subject) error {
		_, t := s.TopicByID(topicID)
		if t == nil {
			return topicNotFound(topicID)
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			t.Name = name
		}
		if in.Description != "" {
			t.Description = strings.TrimSpace(in.Description)
		}
		// class is optional: only touched when provided
		if in.ClassID != "" {
			t.ClassID = strings.TrimSpace(in.ClassID)
		}
		return nil
	})
}

func (cs *curriculumService) DeleteTopic(ctx context.Context, subjectID, topicID uuid.UUID) (*types.Subject, error) {
	return cs.mutateSubject(ctx, subjectID, func(dbc dbctx.Context, s *types.Subject) error {
		idx, _ := s.TopicByID(topicID)
		if idx < 0 {
			return topicNotFound(topicID)
		}
		s.Topics = append(s.Topics[:idx:idx], s.Topics[idx+1:]...)
		if _, err := cs.quizRepo.DeleteByTopic(dbc, topicID); err != nil {
			return fmt.Errorf("delete topic quizzes: %w", err)
		}
		return nil
	})
}

// validateQuiz checks the subject exists, owns the topic and that at least one
// option is correct, then returns the quiz with defaults applied.
func (cs *curriculumService) validateQuiz(dbc dbctx.Context, in QuizInput) (*types.Quiz, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, apierr.BadRequest("invalid_request", "question is required")
	}
	s, err := cs.subjectRepo.GetByID(dbc, in.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("load subject: %w", err)
	}
	if s == nil {
		return nil, subjectNotFound(in.SubjectID)
	}
	if _, t := s.TopicByID(in.TopicID); t == nil {
		return nil, apierr.NotFound("topic_not_found", "topic with ID %s not found in subject", in.TopicID)
	}
	if !curriculum.HasCorrectOption(in.Options) {
		return nil, apierr.BadRequest("no_correct_option", "quiz must have at least one correct answer")
	}

	q := &types.Quiz{
		Question:        strings.TrimSpace(in.Question),
		Options:         in.Options,
		SubjectID:       in.SubjectID,
		TopicID:         in.TopicID,
		Type:            in.Type,
		Difficulty:      1,
		DifficultyLevel: in.DifficultyLevel,
		Explanation:     in.Explanation,
		ClassID:         strings.TrimSpace(in.ClassID),
	}
	if q.Type == "" {
		q.Type = curriculum.QuizTypeMultipleChoice
	}
	if in.Difficulty != nil {
		q.Difficulty = *in.Difficulty
	}
	if q.DifficultyLevel == "" {
		q.DifficultyLevel = curriculum.DifficultyMedium
	}
	if !curriculum.ValidDifficultyLevel(q.DifficultyLevel) {
		return nil, apierr.BadRequest("invalid_difficulty", "difficulty level must be easy, medium or hard")
	}
	return q, nil
}

func (cs *curriculumService) CreateQuiz(ctx context.Context, in QuizInput) (*types.Quiz, error) {
	dbc := dbctx.New(ctx)
	q, err := cs.validateQuiz(dbc, in)
	if err != nil {
		return nil, err
	}
	if _, err := cs.quizRepo.Create(dbc, []*types.Quiz{q}); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

// CreateQuizzes validates and stores each row independently; failures are
// reported per row and do not stop the batch.
func (cs *curriculumService) CreateQuizzes(ctx context.Context, in []QuizInput) (*BulkResult, error) {
	res := &BulkResult{Success: true, Errors: []string{}}
	dbc := dbctx.New(ctx)
	for i, row := range in {
		q, err := cs.validateQuiz(dbc, row)
		if err == nil {
			_, err = cs.quizRepo.Create(dbc, []*types.Quiz{q})
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: %s", i+1, err.Error()))
			continue
		}
		res.Created++
	}
	if len(res.Errors) > 0 {
		res.Success = false
	}
	cs.log.Info("Bulk quiz import", "created", res.Created, "failed", len(res.Errors))
	return res, nil
}

// classFilter accepts the short id and its legacy long name.
func classFilter(classID string) []string {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil
	}
	out := []string{classID}
	if name := user.ClassName(classID); name != "" {
		out = append(out, name)
	}
	return out
}

func (cs *curriculumService) ListQuizzes(ctx context.Context, q QuizQuery) ([]*types.Quiz, error) {
	out, err := cs.quizRepo.List(dbctx.New(ctx), repos.QuizFilter{
		SubjectID: q.SubjectID,
		TopicID:   q.TopicID,
		ClassIDs:  classFilter(q.ClassID),
		Limit:     q.NoOfQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return out, nil
}

func (cs *curriculumService) GetQuiz(ctx context.Context, id uuid.UUID) (*types.Quiz, error) {
	q, err := cs.quizRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if q == nil {
		return nil, apierr.NotFound("quiz_not_found", "quiz with ID %s not found", id)
	}
	return q, nil
}

func (cs *curriculumService) UpdateQuiz(ctx context.Context, id uuid.UUID, in QuizUpdate) (*types.Quiz, error) {
	if in.Options != nil && !curriculum.HasCorrectOption(in.Options) {
		return nil, apierr.BadRequest("no_correct_option", "quiz must have at least one correct answer")
	}
	if in.DifficultyLevel != nil && !curriculum.ValidDifficultyLevel(*in.DifficultyLevel) {
		return nil, apierr.BadRequest("invalid_difficulty", "difficulty level must be easy, medium or hard")
	}
	var out *types.Quiz
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		q, err := cs.quizRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		if q == nil {
			return apierr.NotFound("quiz_not_found", "quiz with ID %s not found", id)
		}
		if in.Question != nil {
			q.Question = strings.TrimSpace(*in.Question)
		}
		if in.Options != nil {
			q.Options = in.Options
		}
		if in.Type != nil {
			q.Type = *in.Type
		}
		if in.Difficulty != nil {
			q.Difficulty = *in.Difficulty
		}
		if in.DifficultyLevel != nil {
			q.DifficultyLevel = *in.DifficultyLevel
		}
		if in.Explanation != nil {
			q.Explanation = *in.Explanation
		}
		if in.ClassID != nil {
			q.ClassID = strings.TrimSpace(*in.ClassID)
		}
		if err := cs.quizRepo.Save(dbc, q); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *curriculumService) DeleteQuiz(ctx context.Context, id uuid.UUID) error {
	deleted, err := cs.quizRepo.Delete(dbctx.New(ctx), id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if !deleted {
		return apierr.NotFound("quiz_not_found", "quiz with ID %s not found", id)
	}
	return nil
}
