package curriculum

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

// QuizFilter narrows List. ClassIDs, when set, matches any listed class and
// also quizzes without a class.
type QuizFilter struct {
	SubjectID *uuid.UUID
	TopicID   *uuid.UUID
	ClassIDs  []string
	Limit     int
}

type QuizRepo interface {
	Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Quiz, error)
	List(dbc dbctx.Context, filter QuizFilter) ([]*types.Quiz, error)
	Save(dbc dbctx.Context, quiz *types.Quiz) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	DeleteBySubject(dbc dbctx.Context, subjectID uuid.UUID) (int64, error)
	DeleteByTopic(dbc dbctx.Context, topicID uuid.UUID) (int64, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, quizzes []*types.Quiz) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(quizzes) == 0 {
		return []*types.Quiz{}, nil
	}
	for _, q := range quizzes {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

// GetByID returns nil, nil when the quiz does not exist.
func (r *quizRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quiz, error) {
	out, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return out[0], nil
}

func (r *quizRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Quiz
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) List(dbc dbctx.Context, filter QuizFilter) ([]*types.Quiz, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Quiz{})
	if filter.SubjectID != nil {
		q = q.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.TopicID != nil {
		q = q.Where("topic_id = ?", *filter.TopicID)
	}
	if len(filter.ClassIDs) > 0 {
		q = q.Where("(class_id IN ? OR class_id = '' OR class_id IS NULL)", filter.ClassIDs)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var results []*types.Quiz
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) Save(dbc dbctx.Context, quiz *types.Quiz) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Save(quiz).Error
}

func (r *quizRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Quiz{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quizRepo) DeleteBySubject(dbc dbctx.Context, subjectID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("subject_id = ?", subjectID).Delete(&types.Quiz{})
	return res.RowsAffected, res.Error
}

func (r *quizRepo) DeleteByTopic(dbc dbctx.Context, topicID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("topic_id = ?", topicID).Delete(&types.Quiz{})
	return res.RowsAffected, res.Error
}
