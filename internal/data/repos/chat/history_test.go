package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
)

func TestAppendEntryCreatesThenAppends(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewChatHistoryRepo(db, testutil.Logger(t))
	userID := uuid.New()

	first, err := repo.AppendEntry(dbc, userID, "2026-03-02", &types.ChatEntry{
		Subject: "Mathematics", Topic: "Fractions", Query: "what is a fraction", Response: "a part", TokensUsed: 120,
	})
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)
	require.Equal(t, 120, first.TotalTokensSpent)

	second, err := repo.AppendEntry(dbc, userID, "2026-03-02", &types.ChatEntry{
		Subject: "Physics", Query: "what is speed", Response: "distance over time", TokensUsed: 80,
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same day must reuse the record")
	require.Equal(t, 200, second.TotalTokensSpent)
	require.Len(t, second.Entries, 2)
	require.Equal(t, "Mathematics", second.Entries[0].Subject)
	require.Equal(t, "Physics", second.Entries[1].Subject)

	other, err := repo.AppendEntry(dbc, userID, "2026-03-03", &types.ChatEntry{
		Subject: "Physics", Query: "what is force", Response: "mass times acceleration",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
	require.Equal(t, 0, other.TotalTokensSpent)

	recent, err := repo.ListRecent(dbc, userID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "2026-03-03", recent[0].Day)

	all, err := repo.ListByUser(dbc, userID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetDayAndRange(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewChatHistoryRepo(db, testutil.Logger(t))
	userID := uuid.New()

	for _, day := range []string{"2026-02-27", "2026-03-01", "2026-03-04"} {
		testutil.SeedChatDay(t, ctx, tx, userID, day, types.ChatEntry{Subject: "Mathematics", Query: "q", Response: "r"})
	}

	missing, err := repo.GetDay(dbc, userID, "2026-03-02")
	require.NoError(t, err)
	require.Nil(t, missing)

	got, err := repo.GetDay(dbc, userID, "2026-03-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entries, 1)

	ranged, err := repo.ListByUserRange(dbc, userID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	require.Equal(t, "2026-03-01", ranged[0].Day)

	since, err := repo.ListSince(dbc, "2026-03-01")
	require.NoError(t, err)
	mine := 0
	for _, h := range since {
		if h.UserID == userID {
			mine++
		}
	}
	require.Equal(t, 2, mine)
}

func TestDeleteBeforeRemovesEntries(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewChatHistoryRepo(db, testutil.Logger(t))
	userID := uuid.New()

	old := testutil.SeedChatDay(t, ctx, tx, userID, "2025-01-01", types.ChatEntry{Subject: "Mathematics", Query: "q", Response: "r"})
	testutil.SeedChatDay(t, ctx, tx, userID, "2026-03-01", types.ChatEntry{Subject: "Mathematics", Query: "q", Response: "r"})

	removed, err := repo.DeleteBefore(dbc, "2026-01-01")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var orphans int64
	require.NoError(t, tx.Model(&types.ChatEntry{}).Where("history_id = ?", old.ID).Count(&orphans).Error)
	require.Zero(t, orphans)

	left, err := repo.ListByUser(dbc, userID)
	require.NoError(t, err)
	require.Len(t, left, 1)
}

// Parallel appends for one user and day must land on a single record with no
// lost entries or tokens. Runs against Postgres too when TEST_POSTGRES_DSN is set.
func TestAppendEntryConcurrentSameDay(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatHistoryRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()
	const day = "2026-04-10"
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AppendEntry(dbctx.New(ctx), userID, day, &types.ChatEntry{
				Subject:    "Mathematics",
				Query:      fmt.Sprintf("question %d", i),
				Response:   "answer",
				TokensUsed: 10,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := repo.ListByUser(dbctx.New(ctx), userID)
	require.NoError(t, err)
	require.Len(t, all, 1, "one record per user and day")
	require.Equal(t, workers*10, all[0].TotalTokensSpent)
	require.Len(t, all[0].Entries, workers)

	positions := make([]int, 0, workers)
	for _, e := range all[0].Entries {
		positions = append(positions, e.Position)
	}
	sort.Ints(positions)
	for i, p := range positions {
		require.Equal(t, i, p, "positions must be distinct and dense")
	}
}
