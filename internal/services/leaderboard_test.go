package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
)

var boardNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newBoard(env *testEnv, cache StandingsCache) *leaderboardService {
	svc := NewLeaderboardService(env.log, env.repos.ChatHistory, env.repos.UserDetails, cache, time.Minute).(*leaderboardService)
	svc.now = fixedClock(boardNow)
	return svc
}

// seedBoard: ann leads on tokens, ben has more active days, cat has no
// profile and dev is in another class. ben's profile uses the short class id.
func seedBoard(t *testing.T, env *testEnv) map[string]*types.User {
	t.Helper()
	ctx := context.Background()
	users := map[string]*types.User{}
	for name, class := range map[string]string{"ann": "8th Standard", "ben": "8th", "cat": "", "dev": "9th Standard"} {
		u := testutil.SeedUser(t, ctx, env.db, name+"@example.com")
		if class != "" {
			testutil.SeedUserDetails(t, ctx, env.db, u.ID, name, class)
		}
		users[name] = u
	}

	big := testutil.Entry("Mathematics", "q")
	big.TokensUsed = 5000
	testutil.SeedChatDay(t, ctx, env.db, users["ann"].ID, "2026-10-16", big)
	testutil.SeedChatDay(t, ctx, env.db, users["ben"].ID, "2026-09-01", testutil.Entry("Science", "q"))
	testutil.SeedChatDay(t, ctx, env.db, users["ben"].ID, "2026-10-15", testutil.Entry("Science", "q"))
	testutil.SeedChatDay(t, ctx, env.db, users["ben"].ID, "2026-10-16", testutil.Entry("Mathematics", "q"))
	testutil.SeedChatDay(t, ctx, env.db, users["cat"].ID, "2026-10-16", testutil.Entry("Mathematics", "q"))
	testutil.SeedChatDay(t, ctx, env.db, users["dev"].ID, "2026-10-16", testutil.Entry("Mathematics", "q"))
	return users
}

func names(entries []*LeaderboardEntry) []string {
	out := []string{}
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestLeaderboardRanksBySparkPoints(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newBoard(env, nil)
	ctx := asUser(users["dev"].ID, user.RoleStudent)

	b, err := svc.Leaderboard(ctx, LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, b.Period)
	assert.Equal(t, []string{"ann", "ben", "dev"}, names(b.Users), "users without a profile are skipped")
	assert.Equal(t, 3, b.TotalUsers)
	for i, e := range b.Users {
		assert.Equal(t, i+1, e.Rank)
	}
	// (50 + 5) * 1.1
	assert.Equal(t, 60, b.Users[0].SparkPoints)
	// (1 + 15) * 1.3
	assert.Equal(t, 20, b.Users[1].SparkPoints)
	assert.Equal(t, 3, b.Users[1].Streak)
	require.NotNil(t, b.CurrentUser)
	assert.Equal(t, 3, b.CurrentUser.Rank)

	limited, err := svc.Leaderboard(ctx, LeaderboardQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Users, 1)
	assert.Equal(t, 3, limited.TotalUsers)
	require.NotNil(t, limited.CurrentUser, "current user is found beyond the limit")
}

func TestLeaderboardFilters(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newBoard(env, nil)
	ctx := asUser(users["ann"].ID, user.RoleStudent)

	weekly, err := svc.Leaderboard(ctx, LeaderboardQuery{Period: "weekly"})
	require.NoError(t, err)
	require.Len(t, weekly.Users, 3)
	// the September day falls outside the week: (1 + 10) * 1.2
	assert.Equal(t, 13, weekly.Users[1].SparkPoints)

	class, err := svc.Leaderboard(ctx, LeaderboardQuery{Class: "8th"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "ben"}, names(class.Users))

	byName, err := svc.Leaderboard(ctx, LeaderboardQuery{Class: "8th Standard"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "ben"}, names(byName.Users))

	science, err := svc.Leaderboard(ctx, LeaderboardQuery{Subject: "Science"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ben"}, names(science.Users))
	assert.Nil(t, science.CurrentUser)

	_, err = svc.Leaderboard(ctx, LeaderboardQuery{Period: "daily"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLeaderboardSearchAndPodium(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newBoard(env, nil)
	ctx := asUser(users["dev"].ID, user.RoleStudent)

	found, err := svc.Search(ctx, "BE", LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ben"}, names(found.Users))
	assert.Equal(t, 1, found.TotalUsers)

	_, err = svc.Search(ctx, " ", LeaderboardQuery{})
	requireStatus(t, err, http.StatusBadRequest)

	top, err := svc.TopPerformers(ctx, LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "ben", "dev"}, names(top.TopThree))
	require.NotNil(t, top.CurrentUser)
	assert.Equal(t, "dev", top.CurrentUser.Name)

	rank, err := svc.UserRank(ctx, LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, rank.Rank)

	unranked, err := svc.RankOf(context.Background(), users["cat"].ID)
	require.NoError(t, err)
	assert.Nil(t, unranked)
}

func TestLeaderboardUsesCache(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	cache := newMemCache()
	svc := newBoard(env, cache)
	ctx := asUser(users["ann"].ID, user.RoleStudent)

	first, err := svc.Leaderboard(ctx, LeaderboardQuery{})
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	second, err := svc.Leaderboard(ctx, LeaderboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, names(first.Users), names(second.Users))
	assert.Equal(t, first.Users[0].SparkPoints, second.Users[0].SparkPoints)
}
