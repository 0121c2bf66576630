package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/studybuddy-backend/internal/data/repos/testutil"
	"github.com/yungbote/studybuddy-backend/internal/observability"
	"github.com/yungbote/studybuddy-backend/internal/platform/openai"
)

type scriptedLLM struct {
	mu    sync.Mutex
	calls int
	reply openai.Completion
}

func (s *scriptedLLM) Chat(context.Context, []openai.Message) (openai.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, nil
}

func (s *scriptedLLM) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type harness struct {
	t   *testing.T
	app *App
	llm *scriptedLLM
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	// every run needs an empty database, so never use the shared Postgres one
	t.Setenv("TEST_POSTGRES_DSN", "")
	llm := &scriptedLLM{reply: openai.Completion{
		Content:     "Plants turn light into sugar.\n<summary>Q: plant food A: photosynthesis</summary>",
		TotalTokens: 250,
	}}
	a, err := NewWithDeps(Deps{
		Log: testutil.Logger(t),
		DB:  testutil.DB(t),
		Cfg: Config{
			JWTSecretKey:        "test-secret",
			AccessTokenTTL:      time.Hour,
			FrontendURL:         "http://localhost:3001",
			ChatRatePerSecond:   100,
			ChatRateBurst:       100,
			ChatCleanupSchedule: "0 3 * * *",
		},
		Clients: Clients{LLM: llm},
		Metrics: observability.NewMetrics(),
	})
	require.NoError(t, err)
	return &harness{t: t, app: a, llm: llm}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.app.Server.Engine.ServeHTTP(rec, req)
	return rec
}

func (h *harness) decode(rec *httptest.ResponseRecorder, dst any) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (h *harness) login(email, password string) (string, bool) {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		AccessToken          string `json:"accessToken"`
		IsUserDetailsPresent bool   `json:"isUserDetailsPresent"`
	}
	h.decode(rec, &out)
	return out.AccessToken, out.IsUserDetailsPresent
}

func (h *harness) adminToken() string {
	h.t.Helper()
	_, _, err := h.app.Services.Auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(h.t, err)
	tok, _ := h.login("admin@example.com", "admin-pass")
	return tok
}

func (h *harness) studentToken(admin string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/auth/register", admin, map[string]string{"email": "kid@example.com", "password": "secret1"})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	tok, hasDetails := h.login("kid@example.com", "secret1")
	assert.False(h.t, hasDetails)

	rec = h.do(http.MethodPost, "/users/user-details", tok, map[string]any{
		"name":       "Kid",
		"dob":        "2012-04-01",
		"phoneno":    "5550100",
		"schoolName": "Hill School",
		"class":      "7th Standard",
		"subjects":   []string{"Biology"},
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return tok
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = h.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "studybuddy_http_requests_total")
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	student := h.studentToken(admin)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/chat/chat-streak", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/leaderboard", "garbage", nil).Code)

	// permission routes answer 403 for anonymous and under-privileged callers
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/admin/subjects", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/admin/subjects", student, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/auth/register", student,
		map[string]string{"email": "x@example.com", "password": "secret1"}).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/admin/subjects", admin, nil).Code)

	// second registration of the same email conflicts
	rec := h.do(http.MethodPost, "/auth/register", admin, map[string]string{"email": "kid@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// wrong password is a uniform 401
	rec = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "kid@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, hasDetails := h.login("kid@example.com", "secret1")
	assert.True(t, hasDetails)
}

func TestCurriculumAndAttemptFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	student := h.studentToken(admin)

	rec := h.do(http.MethodPost, "/admin/subjects", admin, map[string]any{
		"name": "Biology",
		"topics": []map[string]string{
			{"name": "Plants", "classId": "7th"},
			{"name": "Genetics", "classId": "12th"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var subject struct {
		ID     string `json:"id"`
		Topics []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"topics"`
	}
	h.decode(rec, &subject)
	require.Len(t, subject.Topics, 2)
	plants := subject.Topics[0].ID

	rec = h.do(http.MethodPost, "/admin/quizzes", admin, map[string]any{
		"question":  "What do plants need?",
		"options":   []map[string]any{{"text": "Light", "isCorrect": false}},
		"subjectId": subject.ID,
		"topicId":   plants,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/admin/quizzes", admin, map[string]any{
		"question":  "What do plants need?",
		"options":   []map[string]any{{"text": "Light", "isCorrect": true}, {"text": "Noise", "isCorrect": false}},
		"subjectId": subject.ID,
		"topicId":   plants,
		"classId":   "7th",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var quiz struct {
		ID string `json:"id"`
	}
	h.decode(rec, &quiz)

	rec = h.do(http.MethodPost, "/admin/quizzes/bulk", admin, map[string]any{
		"questions": []map[string]any{
			{"question": "Q1", "options": []map[string]any{{"text": "a", "isCorrect": true}}, "subjectId": subject.ID, "topicId": plants},
			{"question": "Q2", "options": []map[string]any{{"text": "a", "isCorrect": true}}, "subjectId": "not-a-uuid", "topicId": plants},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var bulk struct {
		Success bool     `json:"success"`
		Created int      `json:"created"`
		Errors  []string `json:"errors"`
	}
	h.decode(rec, &bulk)
	assert.False(t, bulk.Success)
	assert.Equal(t, 1, bulk.Created)
	require.Len(t, bulk.Errors, 1)
	assert.True(t, strings.HasPrefix(bulk.Errors[0], "Row 2:"), bulk.Errors[0])

	// the 7th-standard student only sees the 7th topic
	rec = h.do(http.MethodGet, "/users/subjects/"+subject.ID, student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var visible struct {
		Topics []struct {
			Name string `json:"name"`
		} `json:"topics"`
	}
	h.decode(rec, &visible)
	require.Len(t, visible.Topics, 1)
	assert.Equal(t, "Plants", visible.Topics[0].Name)

	rec = h.do(http.MethodPost, "/users/quiz-attempts", student, map[string]any{
		"subjectId": subject.ID,
		"topicId":   plants,
		"answers":   []map[string]any{{"quizId": quiz.ID, "selectedAnswer": 0, "timeSpent": 12}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var attempt struct {
		Score          int `json:"score"`
		TotalTimeSpent int `json:"totalTimeSpent"`
	}
	h.decode(rec, &attempt)
	assert.Equal(t, 100, attempt.Score)
	assert.Equal(t, 12, attempt.TotalTimeSpent)

	rec = h.do(http.MethodDelete, "/admin/subjects/"+subject.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/admin/subjects/"+subject.ID, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/admin/quizzes/"+quiz.ID, admin, nil).Code)
}

func TestChatLeaderboardAndAnalytics(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	student := h.studentToken(admin)

	rec := h.do(http.MethodGet, "/chat?subject=Mathematics&query=this+is+so+stupid", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Response string `json:"response"`
	}
	h.decode(rec, &out)
	assert.Contains(t, out.Response, "Mathematics")
	assert.Equal(t, 0, h.llm.count())

	rec = h.do(http.MethodGet, "/chat?subject=Biology&topic=Plants&query=how+do+plants+make+food", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h.decode(rec, &out)
	assert.Equal(t, "Plants turn light into sugar.", out.Response)
	assert.Equal(t, 1, h.llm.count())

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/chat?subject=Biology", student, nil).Code)

	rec = h.do(http.MethodGet, "/chat/chat-streak", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"streak":1}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/leaderboard/user-rank", student, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rank struct {
		Rank         int    `json:"rank"`
		SparkPoints  int    `json:"sparkPoints"`
		Name         string `json:"name"`
		TotalQueries int    `json:"totalQueries"`
	}
	h.decode(rec, &rank)
	assert.Equal(t, 1, rank.Rank)
	assert.Equal(t, "Kid", rank.Name)
	assert.Equal(t, 2, rank.TotalQueries)
	// floor((250/100 + 2*5) * 1.1)
	assert.Equal(t, 13, rank.SparkPoints)

	var users []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	rec = h.do(http.MethodGet, "/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h.decode(rec, &users)
	var kidID string
	for _, u := range users {
		if u.Email == "kid@example.com" {
			kidID = u.ID
		}
	}
	require.NotEmpty(t, kidID)

	rec = h.do(http.MethodGet, "/admin/analytics/student/"+kidID+"/download?format=csv", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "leaderboard,currentRank,1")

	rec = h.do(http.MethodGet, "/admin/analytics/student/"+kidID+"/download?format=pdf", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeedbackFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken()
	student := h.studentToken(admin)

	rec := h.do(http.MethodPost, "/feedback", student, map[string]any{
		"title":       "Quiz typo",
		"description": "Question 3 has a typo",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var fb struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		UserName string `json:"userName"`
	}
	h.decode(rec, &fb)
	assert.Equal(t, "open", fb.Status)
	assert.Equal(t, "Kid", fb.UserName)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/feedback/admin", student, nil).Code)

	rec = h.do(http.MethodPut, "/feedback/admin/"+fb.ID, admin, map[string]any{"status": "resolved", "adminResponse": "fixed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/feedback/my-feedbacks/"+fb.ID, student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h.decode(rec, &fb)
	assert.Equal(t, "resolved", fb.Status)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/feedback/my-feedbacks/nope", student, nil).Code)
}
