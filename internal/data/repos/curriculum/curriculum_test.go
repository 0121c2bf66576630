package curriculum

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
)

func TestSubjectRepoRoundTripsTopics(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewSubjectRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, &types.Subject{
		Name:   "Mathematics-" + uuid.NewString()[:6],
		Topics: []curriculum.Topic{{Name: "Fractions", ClassID: "6th"}, {Name: "Algebra"}},
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.Topics[0].ID)

	got, err := repo.GetByID(dbc, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Topics, 2)
	require.Equal(t, "6th", got.Topics[0].ClassID)

	got.Topics = append(got.Topics, curriculum.Topic{ID: uuid.New(), Name: "Geometry"})
	require.NoError(t, repo.Save(dbc, got))

	byName, err := repo.GetByName(dbc, created.Name)
	require.NoError(t, err)
	require.Len(t, byName.Topics, 3)

	deleted, err := repo.Delete(dbc, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	gone, err := repo.GetByID(dbc, created.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestQuizRepoClassFilter(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQuizRepo(db, testutil.Logger(t))

	subject := testutil.SeedSubject(t, ctx, tx, "Science-"+uuid.NewString()[:6], curriculum.Topic{Name: "Cells"})
	topicID := subject.Topics[0].ID
	testutil.SeedQuiz(t, ctx, tx, subject.ID, topicID, "8th")
	testutil.SeedQuiz(t, ctx, tx, subject.ID, topicID, "8th Standard")
	testutil.SeedQuiz(t, ctx, tx, subject.ID, topicID, "")
	testutil.SeedQuiz(t, ctx, tx, subject.ID, topicID, "9th")

	got, err := repo.List(dbc, QuizFilter{SubjectID: &subject.ID, ClassIDs: []string{"8th", "8th Standard"}})
	require.NoError(t, err)
	require.Len(t, got, 3)

	limited, err := repo.List(dbc, QuizFilter{SubjectID: &subject.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)

	removed, err := repo.DeleteBySubject(dbc, subject.ID)
	require.NoError(t, err)
	require.EqualValues(t, 4, removed)
}

func TestQuizAttemptRepoOrdersNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewQuizAttemptRepo(db, testutil.Logger(t))

	userID := uuid.New()
	subjectID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedAttempt(t, ctx, tx, userID, subjectID, 50, base)
	testutil.SeedAttempt(t, ctx, tx, userID, subjectID, 75, base.Add(48*time.Hour))

	all, err := repo.ListByUser(dbc, userID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 75, all[0].Score)

	recent, err := repo.ListByUserSince(dbc, userID, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
}
