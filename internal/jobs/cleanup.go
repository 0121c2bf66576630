package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

const DefaultCleanupSchedule = "0 3 * * *"

// ChatCleanup deletes chat days older than the retention window on a cron schedule.
type ChatCleanup struct {
	log       *logger.Logger
	histories repos.ChatHistoryRepo
	retention int
	schedule  string
	now       func() time.Time
	cron      *cron.Cron
}

func NewChatCleanup(baseLog *logger.Logger, histories repos.ChatHistoryRepo, retentionDays int, schedule string) *ChatCleanup {
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}
	return &ChatCleanup{
		log:       baseLog.With("component", "ChatCleanup"),
		histories: histories,
		retention: retentionDays,
		schedule:  schedule,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Cutoff is the first day that is kept.
func (c *ChatCleanup) Cutoff() string {
	return c.now().AddDate(0, 0, -c.retention).Format(chat.DayLayout)
}

// RunOnce deletes everything before Cutoff.
func (c *ChatCleanup) RunOnce(ctx context.Context) (int64, error) {
	if c.retention <= 0 {
		return 0, nil
	}
	cutoff := c.Cutoff()
	removed, err := c.histories.DeleteBefore(dbctx.New(ctx), cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete chat days before %s: %w", cutoff, err)
	}
	c.log.Info("Chat retention cleanup finished", "cutoff", cutoff, "days_removed", removed)
	return removed, nil
}

// Start schedules the job until ctx is done. It is a no-op when retention is disabled.
func (c *ChatCleanup) Start(ctx context.Context) error {
	if c.retention <= 0 {
		c.log.Info("Chat retention cleanup disabled")
		return nil
	}
	c.cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(ctx); err != nil {
			c.log.Warn("Chat retention cleanup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", c.schedule, err)
	}
	c.cron.Start()
	c.log.Info("Chat retention cleanup scheduled", "schedule", c.schedule, "retention_days", c.retention)

	go func() {
		<-ctx.Done()
		<-c.cron.Stop().Done()
	}()
	return nil
}
