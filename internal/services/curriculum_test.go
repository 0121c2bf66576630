package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/domain/curriculum"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
)

func newCurriculum(env *testEnv) CurriculumService {
	return NewCurriculumService(env.db, env.log, env.repos.Subjects, env.repos.Quizzes)
}

func seedMath(t *testing.T, svc CurriculumService) (*curriculum.Subject, uuid.UUID) {
	t.Helper()
	s, err := svc.CreateSubject(context.Background(), SubjectInput{
		Name:   "Mathematics",
		Topics: []TopicInput{{Name: "Fractions", ClassID: "6th"}, {Name: "Algebra", ClassID: "8th"}},
	})
	require.NoError(t, err)
	require.Len(t, s.Topics, 2)
	return s, s.Topics[0].ID
}

func options(correct ...bool) []curriculum.Option {
	out := make([]curriculum.Option, len(correct))
	for i, c := range correct {
		out[i] = curriculum.Option{Text: string(rune('A' + i)), IsCorrect: c}
	}
	return out
}

func TestSubjectNamesAreUnique(t *testing.T) {
	svc := newCurriculum(newTestEnv(t))
	seedMath(t, svc)
	_, err := svc.CreateSubject(context.Background(), SubjectInput{Name: "Mathematics"})
	requireStatus(t, err, http.StatusConflict)
	_, err = svc.CreateSubject(context.Background(), SubjectInput{Name: " "})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestQuizNeedsCorrectOption(t *testing.T) {
	svc := newCurriculum(newTestEnv(t))
	s, topicID := seedMath(t, svc)
	ctx := context.Background()

	in := QuizInput{Question: "1/2 + 1/2?", Options: options(false, false), SubjectID: s.ID, TopicID: topicID}
	_, err := svc.CreateQuiz(ctx, in)
	requireStatus(t, err, http.StatusBadRequest)

	in.Options = options(false, true)
	q, err := svc.CreateQuiz(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, curriculum.QuizTypeMultipleChoice, q.Type)
	assert.Equal(t, 1, q.Difficulty)
	assert.Equal(t, curriculum.DifficultyMedium, q.DifficultyLevel)

	in.TopicID = uuid.New()
	_, err = svc.CreateQuiz(ctx, in)
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.UpdateQuiz(ctx, q.ID, QuizUpdate{Options: options(false, false)})
	requireStatus(t, err, http.StatusBadRequest)
	updated, err := svc.UpdateQuiz(ctx, q.ID, QuizUpdate{Question: strp("2/4 + 1/2?")})
	require.NoError(t, err)
	assert.Equal(t, "2/4 + 1/2?", updated.Question)
}

func TestBulkQuizCreateReportsRows(t *testing.T) {
	svc := newCurriculum(newTestEnv(t))
	s, topicID := seedMath(t, svc)

	res, err := svc.CreateQuizzes(context.Background(), []QuizInput{
		{Question: "ok", Options: options(true, false), SubjectID: s.ID, TopicID: topicID},
		{Question: "no answer", Options: options(false), SubjectID: s.ID, TopicID: topicID},
		{Question: "bad subject", Options: options(true), SubjectID: uuid.New(), TopicID: topicID},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "Row 2:")
	assert.Contains(t, res.Errors[1], "Row 3:")
}

func TestDeleteSubjectRemovesTopicsAndQuizzes(t *testing.T) {
	env := newTestEnv(t)
	svc := newCurriculum(env)
	s, topicID := seedMath(t, svc)
	ctx := context.Background()
	q, err := svc.CreateQuiz(ctx, QuizInput{Question: "q", Options: options(true), SubjectID: s.ID, TopicID: topicID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSubject(ctx, s.ID))
	_, err = svc.GetSubject(ctx, s.ID)
	requireStatus(t, err, http.StatusNotFound)
	gone, err := env.repos.Quizzes.GetByID(dbctx.New(ctx), q.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	requireStatus(t, svc.DeleteSubject(ctx, s.ID), http.StatusNotFound)
}

func TestTopicOperations(t *testing.T) {
	svc := newCurriculum(newTestEnv(t))
	s, topicID := seedMath(t, svc)
	ctx := context.Background()

	s, err := svc.AddTopic(ctx, s.ID, TopicInput{Name: "Geometry"})
	require.NoError(t, err)
	require.Len(t, s.Topics, 3)
	assert.Equal(t, "Geometry", s.Topics[2].Name)

	s, err = svc.UpdateTopic(ctx, s.ID, topicID, TopicInput{Description: "parts of a whole"})
	require.NoError(t, err)
	assert.Equal(t, "Fractions", s.Topics[0].Name)
	assert.Equal(t, "6th", s.Topics[0].ClassID, "class untouched when omitted")
	assert.Equal(t, "parts of a whole", s.Topics[0].Description)

	s, err = svc.DeleteTopic(ctx, s.ID, topicID)
	require.NoError(t, err)
	require.Len(t, s.Topics, 2)
	assert.Equal(t, "Algebra", s.Topics[0].Name)

	_, err = svc.DeleteTopic(ctx, s.ID, topicID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestListQuizzesByClass(t *testing.T) {
	svc := newCurriculum(newTestEnv(t))
	s, topicID := seedMath(t, svc)
	ctx := context.Background()
	for _, class := range []string{"6th", "6th Standard", "", "9th"} {
		_, err := svc.CreateQuiz(ctx, QuizInput{Question: "q " + class, Options: options(true), SubjectID: s.ID, TopicID: topicID, ClassID: class})
		require.NoError(t, err)
	}

	got, err := svc.ListQuizzes(ctx, QuizQuery{ClassID: "6th"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	limited, err := svc.ListQuizzes(ctx, QuizQuery{SubjectID: &s.ID, NoOfQuestions: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
