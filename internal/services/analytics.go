package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	domainchat "github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/modules/analytics"
	"github.com/yungbote/studybuddy-backend/internal/modules/leaderboard"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

const (
	ReportJSON = "json"
	ReportCSV  = "csv"
)

type StudentInfo struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Class        string    `json:"class"`
	SchoolName   string    `json:"schoolName"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	Subjects     []string  `json:"subjects"`
}

type LeaderboardStats struct {
	CurrentRank     int    `json:"currentRank"`
	SparkPoints     int    `json:"sparkPoints"`
	MotivationLevel string `json:"motivationLevel"`
}

type StudentAnalytics struct {
	StudentInfo StudentInfo `json:"studentInfo"`
	Analytics   struct {
		QuizStats        analytics.QuizStats       `json:"quizStats"`
		ChatStats        analytics.ChatStats       `json:"chatStats"`
		LeaderboardStats LeaderboardStats          `json:"leaderboardStats"`
		ActivityPattern  analytics.ActivityPattern `json:"activityPattern"`
	} `json:"analytics"`
}

type ActivityChart struct {
	Period              string                       `json:"period"`
	DailyActivity       []analytics.DailyActivity    `json:"dailyActivity"`
	SubjectDistribution []analytics.SubjectShare     `json:"subjectDistribution"`
	PerformanceTrend    []analytics.PerformancePoint `json:"performanceTrend"`
}

// Report is a rendered download.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

type AnalyticsService interface {
	StudentAnalytics(ctx context.Context, userID uuid.UUID) (*StudentAnalytics, error)
	Report(ctx context.Context, userID uuid.UUID, format string) (*Report, error)
	ActivityChart(ctx context.Context, userID uuid.UUID, period string) (*ActivityChart, error)
}

type analyticsService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	histories   repos.ChatHistoryRepo
	attemptRepo repos.QuizAttemptRepo
	subjectRepo repos.SubjectRepo
	board       LeaderboardService
	now         Clock
}

func NewAnalyticsService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	histories repos.ChatHistoryRepo,
	attemptRepo repos.QuizAttemptRepo,
	subjectRepo repos.SubjectRepo,
	board LeaderboardService,
) AnalyticsService {
	return &analyticsService{
		log:         log.With("service", "AnalyticsService"),
		userRepo:    userRepo,
		histories:   histories,
		attemptRepo: attemptRepo,
		subjectRepo: subjectRepo,
		board:       board,
		now:         systemClock,
	}
}

type studentData struct {
	user     *types.User
	days     []*types.ChatHistory // oldest first
	attempts []*types.QuizAttempt // newest first
	subjects map[uuid.UUID]string
	rank     *LeaderboardEntry
}

// load fetches everything a dashboard needs concurrently.
func (as *analyticsService) load(ctx context.Context, userID uuid.UUID) (*studentData, error) {
	var sd studentData
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.New(gctx)

	g.Go(func() error {
		u, err := as.userRepo.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		sd.user = u
		return nil
	})
	g.Go(func() error {
		days, err := as.histories.ListByUserRange(dbc, userID, "", "")
		if err != nil {
			return fmt.Errorf("load chat history: %w", err)
		}
		sd.days = days
		return nil
	})
	g.Go(func() error {
		attempts, err := as.attemptRepo.ListByUser(dbc, userID)
		if err != nil {
			return fmt.Errorf("load attempts: %w", err)
		}
		sd.attempts = attempts
		return nil
	})
	g.Go(func() error {
		subjects, err := as.subjectRepo.List(dbc)
		if err != nil {
			return fmt.Errorf("load subjects: %w", err)
		}
		sd.subjects = make(map[uuid.UUID]string, len(subjects))
		for _, s := range subjects {
			sd.subjects[s.ID] = s.Name
		}
		return nil
	})
	g.Go(func() error {
		rank, err := as.board.RankOf(gctx, userID)
		if err != nil {
			return fmt.Errorf("load rank: %w", err)
		}
		sd.rank = rank
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if sd.user == nil {
		return nil, apierr.NotFound("student_not_found", "student not found")
	}
	return &sd, nil
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func studentInfo(u *types.User) StudentInfo {
	info := StudentInfo{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      "N/A",
		Phone:     "N/A",
		Class:     "N/A",
		CreatedAt: u.CreatedAt,
		Subjects:  []string{},
	}
	if d := u.Details; d != nil {
		info.Name = orNA(d.Name)
		info.Phone = orNA(d.Phone)
		info.Class = orNA(d.Class)
		info.SchoolName = orNA(d.SchoolName)
		if d.ProfileImage != "" {
			img := d.ProfileImage
			info.ProfileImage = &img
		}
		if len(d.Subjects) > 0 {
			info.Subjects = d.Subjects
		}
	} else {
		info.SchoolName = "N/A"
	}
	return info
}

func (as *analyticsService) build(sd *studentData) *StudentAnalytics {
	out := &StudentAnalytics{StudentInfo: studentInfo(sd.user)}
	out.Analytics.ChatStats = analytics.ComputeChatStats(sd.days, as.now())
	out.Analytics.QuizStats = analytics.ComputeQuizStats(sd.attempts, sd.subjects)
	out.Analytics.ActivityPattern = analytics.ComputeActivityPattern(sd.days)

	stats := LeaderboardStats{}
	if sd.rank != nil {
		stats.CurrentRank = sd.rank.Rank
		stats.SparkPoints = sd.rank.SparkPoints
	} else if totals := leaderboard.Aggregate(sd.days, ""); len(totals) > 0 {
		// unranked users (no profile) still earn points
		stats.SparkPoints = totals[0].SparkPoints()
	}
	stats.MotivationLevel = analytics.MotivationLevel(stats.SparkPoints)
	out.Analytics.LeaderboardStats = stats
	return out
}

func (as *analyticsService) StudentAnalytics(ctx context.Context, userID uuid.UUID) (*StudentAnalytics, error) {
	sd, err := as.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return as.build(sd), nil
}

func (as *analyticsService) Report(ctx context.Context, userID uuid.UUID, format string) (*Report, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ReportJSON
	}
	if format != ReportJSON && format != ReportCSV {
		return nil, apierr.BadRequest("invalid_format", "format must be json or csv")
	}
	a, err := as.StudentAnalytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("student-%s-%s", userID, dayOf(as.now()))
	if format == ReportJSON {
		body, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return &Report{Filename: name + ".json", ContentType: "application/json", Body: body}, nil
	}
	body, err := reportCSV(a)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return &Report{Filename: name + ".csv", ContentType: "text/csv", Body: body}, nil
}

// reportCSV flattens the dashboard into section,metric,value rows.
func reportCSV(a *StudentAnalytics) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	itoa := strconv.Itoa
	info := a.StudentInfo
	cs := a.Analytics.ChatStats
	qs := a.Analytics.QuizStats
	ls := a.Analytics.LeaderboardStats

	rows := [][]string{
		{"section", "metric", "value"},
		{"student", "userId", info.UserID.String()},
		{"student", "email", info.Email},
		{"student", "name", info.Name},
		{"student", "phone", info.Phone},
		{"student", "class", info.Class},
		{"student", "schoolName", info.SchoolName},
		{"student", "subjects", strings.Join(info.Subjects, "; ")},
		{"chat", "totalMessages", itoa(cs.TotalMessages)},
		{"chat", "mostDiscussedSubject", cs.MostDiscussedSubject},
		{"chat", "totalTimeSpent", cs.TotalTimeSpent},
		{"chat", "timeOfDayMostActive", cs.TimeOfDayMostActive},
		{"chat", "streak", itoa(cs.Streak)},
		{"quiz", "totalAttempted", itoa(qs.TotalAttempted)},
		{"quiz", "accuracy", itoa(qs.Accuracy)},
		{"quiz", "lastQuizDate", qs.LastQuizDate},
		{"quiz", "topicsCompleted", itoa(qs.TopicsCompleted)},
		{"leaderboard", "currentRank", itoa(ls.CurrentRank)},
		{"leaderboard", "sparkPoints", itoa(ls.SparkPoints)},
		{"leaderboard", "motivationLevel", ls.MotivationLevel},
	}
	names := make([]string, 0, len(qs.SubjectWiseAttempts))
	for n := range qs.SubjectWiseAttempts {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		rows = append(rows,
			[]string{"quiz", "attempts:" + n, itoa(qs.SubjectWiseAttempts[n])},
			[]string{"quiz", "averageScore:" + n, strconv.FormatFloat(qs.AverageScores[n], 'f', 1, 64)},
		)
	}
	for _, d := range a.Analytics.ActivityPattern.DailyActivity {
		rows = append(rows, []string{"daily", d.Date, fmt.Sprintf("%d queries, %d min", d.Queries, d.TimeSpent)})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (as *analyticsService) ActivityChart(ctx context.Context, userID uuid.UUID, period string) (*ActivityChart, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	window, ok := analytics.WindowDays(period)
	if !ok {
		return nil, apierr.BadRequest("invalid_period", "period must be week, month or year")
	}
	if period == "" {
		period = "month"
	}
	sd, err := as.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := as.now().AddDate(0, 0, -(window - 1))
	sinceDay := dayOf(since)
	days := make([]*types.ChatHistory, 0, len(sd.days))
	for _, d := range sd.days {
		if d.Day >= sinceDay {
			days = append(days, d)
		}
	}
	attempts := make([]*types.QuizAttempt, 0, len(sd.attempts))
	for _, a := range sd.attempts {
		if a.CreatedAt.UTC().Format(domainchat.DayLayout) >= sinceDay {
			attempts = append(attempts, a)
		}
	}

	daily := analytics.ComputeActivityPattern(days).DailyActivity
	return &ActivityChart{
		Period:              period,
		DailyActivity:       daily,
		SubjectDistribution: analytics.SubjectDistribution(daily),
		PerformanceTrend:    analytics.PerformanceTrend(attempts),
	}, nil
}
