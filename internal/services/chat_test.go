package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
	"github.com/yungbote/studybuddy-backend/internal/modules/chat"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/openai"
)

var chatNow = time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC)

func newChat(t *testing.T, env *testEnv, llm *fakeLLM) *chatService {
	t.Helper()
	catalog, err := chat.DefaultCatalog()
	require.NoError(t, err)
	svc := NewChatService(env.db, env.log, env.repos.ChatHistory, env.repos.UserDetails, catalog, llm).(*chatService)
	svc.now = fixedClock(chatNow)
	return svc
}

func entryWithSummary(subject, query, summary string) types.ChatEntry {
	e := testutil.Entry(subject, query)
	e.Summary = summary
	return e
}

type testDay struct {
	subject, topic, query, summary string
}

// buildHistory puts every row into a single day.
func buildHistory(rows []*testDay) []*types.ChatHistory {
	h := &types.ChatHistory{Day: "2026-10-16"}
	for _, r := range rows {
		h.Entries = append(h.Entries, types.ChatEntry{Subject: r.subject, Topic: r.topic, Query: r.query, Summary: r.summary})
	}
	return []*types.ChatHistory{h}
}

func TestDenylistedQueryNeverReachesModel(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{}
	svc := newChat(t, env, llm)
	u := testutil.SeedUser(t, context.Background(), env.db, "kid@example.com")
	ctx := asUser(u.ID, user.RoleStudent)

	reply, err := svc.Ask(ctx, ChatRequest{Subject: "Mathematics", Query: "this is so stupid"})
	require.NoError(t, err)
	assert.Contains(t, reply, "Mathematics")
	assert.Zero(t, llm.callCount())

	day, err := svc.DayHistory(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, day.TotalTokensSpent)
	require.Len(t, day.SubjectWise, 1)
	q := day.SubjectWise[0].Queries[0]
	assert.Equal(t, reply, q.Response)
	assert.Contains(t, q.Summary, "inappropriate")
}

func TestOffTopicQueryIsRedirected(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{}
	svc := newChat(t, env, llm)
	u := testutil.SeedUser(t, context.Background(), env.db, "kid@example.com")
	ctx := asUser(u.ID, user.RoleStudent)

	reply, err := svc.Ask(ctx, ChatRequest{Subject: "Science", Query: "what is your name?"})
	require.NoError(t, err)
	assert.Contains(t, reply, "Science")
	assert.Zero(t, llm.callCount())
}

func TestNormalQueryStoresSummary(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{reply: openai.Completion{
		Content:     "Plants make food from light.\n<summary>Q: photosynthesis A: light to sugar</summary>",
		TotalTokens: 240,
	}}
	svc := newChat(t, env, llm)
	ctx0 := context.Background()
	u := testutil.SeedUser(t, ctx0, env.db, "kid@example.com")
	testutil.SeedUserDetails(t, ctx0, env.db, u.ID, "Kid", "7th Standard")
	// yesterday's summary feeds the prompt
	testutil.SeedChatDay(t, ctx0, env.db, u.ID, "2026-10-16", entryWithSummary("Biology", "how do plants use cells", "Q: cells A: units of life"))
	ctx := asUser(u.ID, user.RoleStudent)

	reply, err := svc.Ask(ctx, ChatRequest{Subject: "Biology", Query: "how do plants make food", Topic: "Plants"})
	require.NoError(t, err)
	assert.Equal(t, "Plants make food from light.", reply)

	require.Equal(t, 1, llm.callCount())
	msgs := llm.calls[0]
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "7th Standard")
	assert.Contains(t, msgs[0].Content, "Plants")
	assert.Contains(t, msgs[1].Content, "Q: cells A: units of life")

	day, err := svc.DayHistory(ctx, "2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, 240, day.TotalTokensSpent)
	assert.Equal(t, []string{"Plants"}, day.Topics)
	entry := day.SubjectWise[0].Queries[0]
	assert.Equal(t, "Q: photosynthesis A: light to sugar", entry.Summary)
	assert.Equal(t, 240, entry.TokensUsed)
}

func TestParallelQuestionsShareOneDay(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{reply: openai.Completion{Content: "ok<summary>Q: x A: y</summary>", TotalTokens: 10}}
	svc := newChat(t, env, llm)
	u := testutil.SeedUser(t, context.Background(), env.db, "busy@example.com")
	ctx := asUser(u.ID, user.RoleStudent)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Ask(ctx, ChatRequest{Subject: "Mathematics", Query: fmt.Sprintf("what is %d plus %d", i, i)})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	days, err := env.repos.ChatHistory.ListByUser(dbctx.New(context.Background()), u.ID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 10*n, days[0].TotalTokensSpent)
	assert.Len(t, days[0].Entries, n)
}

func TestPreviousSummariesFollowSubjectAndTopic(t *testing.T) {
	days := []*testDay{
		{subject: "Biology", topic: "Plants", query: "leaf", summary: "s-plants"},
		{subject: "Biology", topic: "", query: "tell me about plants roots", summary: "s-mention"},
		{subject: "Biology", topic: "Cells", query: "nucleus", summary: "s-cells"},
		{subject: "Physics", topic: "Plants", query: "x", summary: "s-physics"},
	}
	hist := buildHistory(days)
	assert.Equal(t, []string{"s-plants", "s-mention"}, previousSummaries(hist, "Biology", "Plants"))
	assert.Equal(t, []string{"s-plants", "s-mention", "s-cells"}, previousSummaries(hist, "Biology", ""))
}

func TestEmptyCompletionIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{reply: openai.Completion{Content: "  "}}
	svc := newChat(t, env, llm)
	u := testutil.SeedUser(t, context.Background(), env.db, "kid@example.com")
	ctx := asUser(u.ID, user.RoleStudent)

	_, err := svc.Ask(ctx, ChatRequest{Subject: "Mathematics", Query: "what is a prime number"})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, err.Error(), "no response received from the language model")

	_, err = svc.DayHistory(ctx, "")
	requireStatus(t, err, http.StatusNotFound)
}

func TestFollowUpWithoutHistoryStartsFresh(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{}
	svc := newChat(t, env, llm)
	u := testutil.SeedUser(t, context.Background(), env.db, "kid@example.com")
	ctx := asUser(u.ID, user.RoleStudent)

	reply, err := svc.Ask(ctx, ChatRequest{Subject: "Physics", Query: "can you explain more"})
	require.NoError(t, err)
	assert.Contains(t, reply, "Physics")
	assert.Zero(t, llm.callCount())

	_, err = svc.DayHistory(ctx, "")
	requireStatus(t, err, http.StatusNotFound)
}

func TestFollowUpElaboratesOnPreviousQuery(t *testing.T) {
	env := newTestEnv(t)
	llm := &fakeLLM{reply: openai.Completion{Content: "Think of it like a ramp.<summary>Q: again A: ramp</summary>", TotalTokens: 90}}
	svc := newChat(t, env, llm)
	ctx0 := context.Background()
	u := testutil.SeedUser(t, ctx0, env.db, "kid@example.com")
	testutil.SeedChatDay(t, ctx0, env.db, u.ID, "2026-10-17",
		entryWithSummary("Physics", "what is friction", "Q: friction A: resisting force"),
		entryWithSummary("Mathematics", "what is a ratio", "Q: ratio A: comparison"),
	)
	ctx := asUser(u.ID, user.RoleStudent)

	reply, err := svc.Ask(ctx, ChatRequest{Subject: "Physics", Query: "I didn't understand, explain more"})
	require.NoError(t, err)
	assert.Equal(t, "Think of it like a ramp.", reply)
	require.Equal(t, 1, llm.callCount())
	assert.Contains(t, llm.calls[0][1].Content, "what is friction")
	assert.NotContains(t, llm.calls[0][1].Content, "ratio")
}

func TestChatReads(t *testing.T) {
	env := newTestEnv(t)
	svc := newChat(t, env, &fakeLLM{})
	ctx0 := context.Background()
	u := testutil.SeedUser(t, ctx0, env.db, "kid@example.com")
	first := entryWithSummary("Mathematics", "fractions?", "")
	first.Topic = "Fractions"
	second := entryWithSummary("Science", "cells?", "")
	second.Topic = "Cells"
	third := entryWithSummary("Mathematics", "more fractions", "")
	third.Topic = "Fractions"
	testutil.SeedChatDay(t, ctx0, env.db, u.ID, "2026-10-10", first)
	testutil.SeedChatDay(t, ctx0, env.db, u.ID, "2026-10-12", second, third)
	ctx := asUser(u.ID, user.RoleStudent)

	all, err := svc.AllHistory(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-10-12", all[0].Date)

	heat, err := svc.HeatMap(ctx, "2026-10-11", "2026-10-17")
	require.NoError(t, err)
	require.Len(t, heat, 1)
	assert.Equal(t, HeatMapDay{Date: "2026-10-12", Subjects: []string{"Science", "Mathematics"}}, heat[0])

	_, err = svc.HeatMap(ctx, "yesterday", "2026-10-17")
	requireStatus(t, err, http.StatusBadRequest)

	streak, err := svc.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	topics, err := svc.RecentTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fractions", "Cells"}, topics)

	byTopic, err := svc.TopicHistory(ctx, "Cells")
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	require.Len(t, byTopic[0].SubjectWise, 1)
	assert.Equal(t, "cells?", byTopic[0].SubjectWise[0].Queries[0].Query)

	none, err := svc.TopicHistory(ctx, "Cell")
	require.NoError(t, err)
	assert.Empty(t, none, "topic match is exact")

	_, err = svc.Streak(context.Background())
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestHistoryIsScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	svc := newChat(t, env, &fakeLLM{})
	ctx0 := context.Background()
	a := testutil.SeedUser(t, ctx0, env.db, "a@example.com")
	b := testutil.SeedUser(t, ctx0, env.db, "b@example.com")
	testutil.SeedChatDay(t, ctx0, env.db, a.ID, "2026-10-17", testutil.Entry("Math", "q"))

	_, err := svc.DayHistory(asUser(b.ID, user.RoleStudent), "2026-10-17")
	requireStatus(t, err, http.StatusNotFound)

	days, err := env.repos.ChatHistory.ListByUser(dbctx.New(ctx0), a.ID)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}
