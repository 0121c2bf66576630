package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/studybuddy-backend/internal/modules/analytics"
)

func newAnalytics(env *testEnv) *analyticsService {
	board := newBoard(env, nil)
	svc := NewAnalyticsService(env.log, env.repos.Users, env.repos.ChatHistory, env.repos.Attempts, env.repos.Subjects, board).(*analyticsService)
	svc.now = fixedClock(boardNow)
	return svc
}

func TestStudentAnalytics(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	ctx := context.Background()
	ben := users["ben"]
	math := testutil.SeedSubject(t, ctx, env.db, "Mathematics")
	testutil.SeedAttempt(t, ctx, env.db, ben.ID, math.ID, 75, boardNow.Add(-48*time.Hour))
	testutil.SeedAttempt(t, ctx, env.db, ben.ID, math.ID, 25, boardNow.Add(-24*time.Hour))
	svc := newAnalytics(env)

	a, err := svc.StudentAnalytics(ctx, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, "ben", a.StudentInfo.Name)
	assert.Equal(t, "8th Standard", a.StudentInfo.Class)

	chat := a.Analytics.ChatStats
	assert.Equal(t, 3, chat.TotalMessages)
	assert.Equal(t, "Science", chat.MostDiscussedSubject)
	// nothing today
	assert.Equal(t, 0, chat.Streak)
	assert.Equal(t, "9:00", chat.TimeOfDayMostActive)

	quiz := a.Analytics.QuizStats
	assert.Equal(t, 2, quiz.TotalAttempted)
	assert.Equal(t, 50, quiz.Accuracy)
	assert.Equal(t, 2, quiz.SubjectWiseAttempts["Mathematics"])
	assert.Equal(t, "2026-10-16", quiz.LastQuizDate)

	lb := a.Analytics.LeaderboardStats
	assert.Equal(t, 2, lb.CurrentRank)
	assert.Equal(t, 20, lb.SparkPoints)
	assert.Equal(t, analytics.MotivationLow, lb.MotivationLevel)

	pattern := a.Analytics.ActivityPattern
	require.Len(t, pattern.DailyActivity, 3)
	assert.Equal(t, "2026-09-01", pattern.DailyActivity[0].Date, "oldest first")

	_, err = svc.StudentAnalytics(ctx, uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}

func TestStudentWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newAnalytics(env)

	a, err := svc.StudentAnalytics(context.Background(), users["cat"].ID)
	require.NoError(t, err)
	assert.Equal(t, "N/A", a.StudentInfo.Name)
	assert.Zero(t, a.Analytics.LeaderboardStats.CurrentRank)
	// (0 + 5) * 1.1
	assert.Equal(t, 5, a.Analytics.LeaderboardStats.SparkPoints)
}

func TestStudentReport(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newAnalytics(env)
	ctx := context.Background()

	js, err := svc.Report(ctx, users["ann"].ID, "")
	require.NoError(t, err)
	assert.Equal(t, "application/json", js.ContentType)
	assert.True(t, strings.HasSuffix(js.Filename, ".json"))
	var decoded StudentAnalytics
	require.NoError(t, json.Unmarshal(js.Body, &decoded))
	assert.Equal(t, "ann", decoded.StudentInfo.Name)

	csv, err := svc.Report(ctx, users["ann"].ID, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csv.ContentType)
	body := string(csv.Body)
	assert.True(t, strings.HasPrefix(body, "section,metric,value\n"))
	assert.Contains(t, body, "leaderboard,currentRank,1\n")
	assert.Contains(t, body, "student,name,ann\n")

	_, err = svc.Report(ctx, users["ann"].ID, "pdf")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestActivityChartWindow(t *testing.T) {
	env := newTestEnv(t)
	users := seedBoard(t, env)
	svc := newAnalytics(env)
	ctx := context.Background()
	ben := users["ben"].ID

	week, err := svc.ActivityChart(ctx, ben, "week")
	require.NoError(t, err)
	assert.Len(t, week.DailyActivity, 2)
	require.Len(t, week.SubjectDistribution, 2)
	assert.Equal(t, 50, week.SubjectDistribution[0].Percentage)

	year, err := svc.ActivityChart(ctx, ben, "year")
	require.NoError(t, err)
	assert.Len(t, year.DailyActivity, 3)

	_, err = svc.ActivityChart(ctx, ben, "decade")
	requireStatus(t, err, http.StatusBadRequest)
}
