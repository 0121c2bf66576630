package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type UserDetailsRepo interface {
	Create(dbc dbctx.Context, details *types.UserDetails) (*types.UserDetails, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserDetails, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserDetails, error)
	List(dbc dbctx.Context) ([]*types.UserDetails, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
	DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error
}

type userDetailsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserDetailsRepo(db *gorm.DB, baseLog *logger.Logger) UserDetailsRepo {
	return &userDetailsRepo{db: db, log: baseLog.With("repo", "UserDetailsRepo")}
}

func (r *userDetailsRepo) Create(dbc dbctx.Context, details *types.UserDetails) (*types.UserDetails, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if details.ID == uuid.Nil {
		details.ID = uuid.New()
	}
	if details.Subjects == nil {
		details.Subjects = []string{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// GetByUserID returns nil, nil when the user has no profile yet.
func (r *userDetailsRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserDetails, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserDetails
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userDetailsRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID]*types.UserDetails, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]*types.UserDetails{}
	if len(userIDs) == 0 {
		return out, nil
	}
	var results []*types.UserDetails
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	for _, d := range results {
		out[d.UserID] = d
	}
	return out, nil
}

func (r *userDetailsRepo) List(dbc dbctx.Context) ([]*types.UserDetails, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserDetails
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userDetailsRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.UserDetails{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

func (r *userDetailsRepo) DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&types.UserDetails{}).Error
}
