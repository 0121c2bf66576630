package feedback

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type Filter struct {
	Status *types.FeedbackStatus
	UserID *uuid.UUID
}

type FeedbackRepo interface {
	Create(dbc dbctx.Context, fb *types.Feedback) (*types.Feedback, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Feedback, error)
	List(dbc dbctx.Context, filter Filter) ([]*types.Feedback, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Create(dbc dbctx.Context, fb *types.Feedback) (*types.Feedback, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.Attachments == nil {
		fb.Attachments = []string{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

// GetByID returns nil, nil when the ticket does not exist.
func (r *feedbackRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Feedback, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Feedback
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// List returns matching tickets, newest first.
func (r *feedbackRepo) List(dbc dbctx.Context, filter Filter) ([]*types.Feedback, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Feedback{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	var results []*types.Feedback
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *feedbackRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Feedback{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *feedbackRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Feedback{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
