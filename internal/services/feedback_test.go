package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/studybuddy-backend/internal/domain/feedback"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
)

func TestFeedbackFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFeedbackService(env.db, env.log, env.repos.Feedback, env.repos.UserDetails)
	ctx0 := context.Background()
	kid := testutil.SeedUser(t, ctx0, env.db, "kid@example.com")
	testutil.SeedUserDetails(t, ctx0, env.db, kid.ID, "Ravi", "9th Standard")
	other := testutil.SeedUser(t, ctx0, env.db, "other@example.com")
	ctx := asUser(kid.ID, user.RoleStudent)

	plain, err := svc.Create(ctx, FeedbackInput{Title: "Typo", Description: "Quiz 3 has a typo"})
	require.NoError(t, err)
	assert.Equal(t, feedback.StatusPending, plain.Status)
	assert.Equal(t, feedback.PriorityMedium, plain.Priority)
	assert.Equal(t, feedback.DefaultCategory, plain.Category)
	assert.Equal(t, "Ravi", plain.UserName)

	urgent, err := svc.Create(ctx, FeedbackInput{Title: "Crash", Description: "App crashes", Priority: "high", Category: "Bug"})
	require.NoError(t, err)
	assert.Equal(t, feedback.StatusOpen, urgent.Status)
	assert.Equal(t, "Bug", urgent.Category)

	_, err = svc.Create(ctx, FeedbackInput{Title: "x", Description: "y", Priority: "urgent"})
	requireStatus(t, err, http.StatusBadRequest)
	_, err = svc.Create(asUser(other.ID, user.RoleStudent), FeedbackInput{Title: "x", Description: "y"})
	requireStatus(t, err, http.StatusNotFound)

	mine, err := svc.ListMine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	_, err = svc.GetMine(asUser(other.ID, user.RoleStudent), plain.ID)
	requireStatus(t, err, http.StatusForbidden)
	got, err := svc.GetMine(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, plain.ID, got.ID)

	resolved := feedback.StatusResolved
	answer := "Fixed, thanks!"
	updated, err := svc.UpdateStatus(ctx0, plain.ID, FeedbackStatusUpdate{Status: &resolved, AdminResponse: &answer})
	require.NoError(t, err)
	assert.Equal(t, feedback.StatusResolved, updated.Status)
	require.NotNil(t, updated.AdminResponse)
	assert.Equal(t, answer, *updated.AdminResponse)

	bogus := feedback.Status("archived")
	_, err = svc.UpdateStatus(ctx0, plain.ID, FeedbackStatusUpdate{Status: &bogus})
	requireStatus(t, err, http.StatusBadRequest)

	onlyResolved, err := svc.List(ctx0, repos.FeedbackFilter{Status: &resolved})
	require.NoError(t, err)
	require.Len(t, onlyResolved, 1)
	assert.Equal(t, plain.ID, onlyResolved[0].ID)

	require.NoError(t, svc.Delete(ctx0, plain.ID))
	requireStatus(t, svc.Delete(ctx0, plain.ID), http.StatusNotFound)
	_, err = svc.Get(ctx0, uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}
