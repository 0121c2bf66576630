package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
)

func TestChatCleanupRunOnce(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	histories := repos.NewSet(db, log).ChatHistory

	u := testutil.SeedUser(t, ctx, db, "cleanup@example.com")
	testutil.SeedChatDay(t, ctx, db, u.ID, "2026-09-01", testutil.Entry("Math", "old"))
	testutil.SeedChatDay(t, ctx, db, u.ID, "2026-10-10", testutil.Entry("Math", "kept"))
	testutil.SeedChatDay(t, ctx, db, u.ID, "2026-10-17", testutil.Entry("Math", "today"))

	job := NewChatCleanup(log, histories, 7, "")
	job.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	assert.Equal(t, "2026-10-10", job.Cutoff())

	removed, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	left, err := histories.ListByUser(dbctx.New(ctx), u.ID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "2026-10-17", left[0].Day)
	assert.Equal(t, "2026-10-10", left[1].Day)
}

func TestChatCleanupDisabled(t *testing.T) {
	job := NewChatCleanup(testutil.Logger(t), nil, 0, "")
	removed, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	require.NoError(t, job.Start(context.Background()))
}

func TestChatCleanupRejectsBadSchedule(t *testing.T) {
	job := NewChatCleanup(testutil.Logger(t), nil, 3, "not a schedule")
	assert.Error(t, job.Start(context.Background()))
}
