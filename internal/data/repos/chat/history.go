package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type ChatHistoryRepo interface {
	// AppendEntry finds or creates the (userID, day) record and appends entry
	// to it in one transaction; the day's token total grows by entry.TokensUsed.
	AppendEntry(dbc dbctx.Context, userID uuid.UUID, day string, entry *types.ChatEntry) (*types.ChatHistory, error)
	GetDay(dbc dbctx.Context, userID uuid.UUID, day string) (*types.ChatHistory, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChatHistory, error)
	ListRecent(dbc dbctx.Context, userID uuid.UUID, days int) ([]*types.ChatHistory, error)
	ListByUserRange(dbc dbctx.Context, userID uuid.UUID, fromDay, toDay string) ([]*types.ChatHistory, error)
	ListSince(dbc dbctx.Context, fromDay string) ([]*types.ChatHistory, error)
	DeleteBefore(dbc dbctx.Context, day string) (int64, error)
}

type chatHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ChatHistoryRepo {
	return &chatHistoryRepo{db: db, log: baseLog.With("repo", "ChatHistoryRepo")}
}

func withEntries(db *gorm.DB) *gorm.DB {
	return db.Preload("Entries", func(q *gorm.DB) *gorm.DB {
		return q.Order("position ASC")
	})
}

func (r *chatHistoryRepo) AppendEntry(dbc dbctx.Context, userID uuid.UUID, day string, entry *types.ChatEntry) (*types.ChatHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || day == "" || entry == nil {
		return nil, fmt.Errorf("append chat entry: missing user, day or entry")
	}

	var out *types.ChatHistory
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		now := entry.CreatedAt
		if now.IsZero() {
			now = time.Now().UTC()
		}
		seed := &types.ChatHistory{
			ID:               uuid.New(),
			UserID:           userID,
			Day:              day,
			TotalTokensSpent: entry.TokensUsed,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		// The conflict update takes the row lock, so concurrent appends to the
		// same day serialize here until commit.
		if err := tx.Omit("Entries").Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_tokens_spent": gorm.Expr("chat_history.total_tokens_spent + excluded.total_tokens_spent"),
				"updated_at":         gorm.Expr("excluded.updated_at"),
			}),
		}).Create(seed).Error; err != nil {
			return fmt.Errorf("upsert chat day: %w", err)
		}

		var day0 types.ChatHistory
		if err := tx.Where("user_id = ? AND day = ?", userID, day).Take(&day0).Error; err != nil {
			return fmt.Errorf("load chat day: %w", err)
		}

		var position int64
		if err := tx.Model(&types.ChatEntry{}).Where("history_id = ?", day0.ID).Count(&position).Error; err != nil {
			return fmt.Errorf("count chat entries: %w", err)
		}

		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.HistoryID = day0.ID
		entry.Position = int(position)
		entry.CreatedAt = now
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("insert chat entry: %w", err)
		}

		if err := withEntries(tx).Where("id = ?", day0.ID).Take(&day0).Error; err != nil {
			return fmt.Errorf("reload chat day: %w", err)
		}
		out = &day0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDay returns nil, nil when there is no record for that day.
func (r *chatHistoryRepo) GetDay(dbc dbctx.Context, userID uuid.UUID, day string) (*types.ChatHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ChatHistory
	if err := withEntries(transaction.WithContext(dbc.Ctx)).
		Where("user_id = ? AND day = ?", userID, day).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// ListByUser returns every day for the user, newest first.
func (r *chatHistoryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ChatHistory, error) {
	return r.ListRecent(dbc, userID, 0)
}

// ListRecent returns at most days records, newest first. days <= 0 means all.
func (r *chatHistoryRepo) ListRecent(dbc dbctx.Context, userID uuid.UUID, days int) ([]*types.ChatHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := withEntries(transaction.WithContext(dbc.Ctx)).
		Where("user_id = ?", userID).
		Order("day DESC")
	if days > 0 {
		q = q.Limit(days)
	}
	var results []*types.ChatHistory
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByUserRange returns days in [fromDay, toDay], oldest first. Empty bounds are open.
func (r *chatHistoryRepo) ListByUserRange(dbc dbctx.Context, userID uuid.UUID, fromDay, toDay string) ([]*types.ChatHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := withEntries(transaction.WithContext(dbc.Ctx)).Where("user_id = ?", userID)
	if fromDay != "" {
		q = q.Where("day >= ?", fromDay)
	}
	if toDay != "" {
		q = q.Where("day <= ?", toDay)
	}
	var results []*types.ChatHistory
	if err := q.Order("day ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListSince returns every user's days from fromDay on ("" = all), in insertion order.
func (r *chatHistoryRepo) ListSince(dbc dbctx.Context, fromDay string) ([]*types.ChatHistory, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := withEntries(transaction.WithContext(dbc.Ctx))
	if fromDay != "" {
		q = q.Where("day >= ?", fromDay)
	}
	var results []*types.ChatHistory
	if err := q.Order("created_at ASC").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteBefore removes days strictly older than day together with their entries.
func (r *chatHistoryRepo) DeleteBefore(dbc dbctx.Context, day string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var removed int64
	err := transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&types.ChatHistory{}).Select("id").Where("day < ?", day)
		if err := tx.Where("history_id IN (?)", stale).Delete(&types.ChatEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("day < ?", day).Delete(&types.ChatHistory{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
