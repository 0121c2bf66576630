package curriculum

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type SubjectRepo interface {
	Create(dbc dbctx.Context, subject *types.Subject) (*types.Subject, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Subject, error)
	GetByName(dbc dbctx.Context, name string) (*types.Subject, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Subject, error)
	List(dbc dbctx.Context) ([]*types.Subject, error)
	Save(dbc dbctx.Context, subject *types.Subject) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (r *subjectRepo) Create(dbc dbctx.Context, subject *types.Subject) (*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if subject.ID == uuid.Nil {
		subject.ID = uuid.New()
	}
	for i := range subject.Topics {
		if subject.Topics[i].ID == uuid.Nil {
			subject.Topics[i].ID = uuid.New()
		}
	}
	if subject.Topics == nil {
		subject.Topics = []types.Topic{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(subject).Error; err != nil {
		return nil, err
	}
	return subject, nil
}

func (r *subjectRepo) first(dbc dbctx.Context, query string, args ...interface{}) (*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Subject
	if err := transaction.WithContext(dbc.Ctx).
		Where(query, args...).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GetByID returns nil, nil when the subject does not exist.
func (r *subjectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Subject, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *subjectRepo) GetByName(dbc dbctx.Context, name string) (*types.Subject, error) {
	return r.first(dbc, "name = ?", name)
}

func (r *subjectRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Subject
	if len(names) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("name IN ?", names).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *subjectRepo) List(dbc dbctx.Context) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Subject
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Save writes the whole row, embedded topics included.
func (r *subjectRepo) Save(dbc dbctx.Context, subject *types.Subject) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Save(subject).Error
}

func (r *subjectRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Subject{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
