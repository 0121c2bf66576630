package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
	"github.com/yungbote/studybuddy-backend/internal/modules/leaderboard"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAll     = "all"

	defaultBoardLimit = 50
	searchLimit       = 50
)

type LeaderboardQuery struct {
	Period  string
	Subject string
	Class   string
	Limit   int
}

type LeaderboardEntry struct {
	UserID       uuid.UUID `json:"userId"`
	Name         string    `json:"name"`
	StudentID    string    `json:"studentId"`
	ProfileImage string    `json:"profileImage,omitempty"`
	SparkPoints  int       `json:"sparkPoints"`
	Rank         int       `json:"rank"`
	Class        string    `json:"class"`
	Subjects     []string  `json:"subjects"`
	TotalQueries int       `json:"totalQueries"`
	Streak       int       `json:"streak"`
}

func (e *LeaderboardEntry) Points() int      { return e.SparkPoints }
func (e *LeaderboardEntry) SetRank(rank int) { e.Rank = rank }

type BoardFilters struct {
	Subject string `json:"subject,omitempty"`
	Class   string `json:"class,omitempty"`
}

type Board struct {
	Users       []*LeaderboardEntry `json:"users"`
	CurrentUser *LeaderboardEntry   `json:"currentUser,omitempty"`
	TotalUsers  int                 `json:"totalUsers"`
	Period      string              `json:"period"`
	Filters     BoardFilters        `json:"filters"`
}

type TopPerformers struct {
	TopThree    []*LeaderboardEntry `json:"topThree"`
	CurrentUser *LeaderboardEntry   `json:"currentUser,omitempty"`
}

// StandingsCache is the subset of the redis JSON cache the leaderboard needs.
type StandingsCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context, q LeaderboardQuery) (*Board, error)
	UserRank(ctx context.Context, q LeaderboardQuery) (*LeaderboardEntry, error)
	Search(ctx context.Context, text string, q LeaderboardQuery) (*Board, error)
	TopPerformers(ctx context.Context, q LeaderboardQuery) (*TopPerformers, error)
	// RankOf looks up any user's all-time standing; nil when unranked.
	RankOf(ctx context.Context, userID uuid.UUID) (*LeaderboardEntry, error)
}

type leaderboardService struct {
	log         *logger.Logger
	histories   repos.ChatHistoryRepo
	detailsRepo repos.UserDetailsRepo
	cache       StandingsCache
	cacheTTL    time.Duration
	now         Clock
}

// NewLeaderboardService accepts a nil cache.
func NewLeaderboardService(
	log *logger.Logger,
	histories repos.ChatHistoryRepo,
	detailsRepo repos.UserDetailsRepo,
	cache StandingsCache,
	cacheTTL time.Duration,
) LeaderboardService {
	return &leaderboardService{
		log:         log.With("service", "LeaderboardService"),
		histories:   histories,
		detailsRepo: detailsRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		now:         systemClock,
	}
}

func normalizePeriod(p string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	}
	return "", apierr.BadRequest("invalid_period", "period must be weekly, monthly or all")
}

// periodStart returns the first day counted for period, "" for all time.
func periodStart(period string, now time.Time) string {
	switch period {
	case PeriodWeekly:
		return dayOf(now.AddDate(0, 0, -7))
	case PeriodMonthly:
		return dayOf(now.AddDate(0, -1, 0))
	}
	return ""
}

func classMatches(profileClass, filter string) bool {
	if filter == "" {
		return true
	}
	if profileClass == filter {
		return true
	}
	id := user.NormalizeClassID(profileClass)
	return id != "" && id == user.NormalizeClassID(filter)
}

func standingsKey(period, subject, class string) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s", period, strings.ToLower(subject), strings.ToLower(class))
}

// standings is the complete ranked list for the query's period and filters.
func (ls *leaderboardService) standings(ctx context.Context, q LeaderboardQuery) ([]*LeaderboardEntry, error) {
	key := standingsKey(q.Period, q.Subject, q.Class)
	if ls.cache != nil {
		var cached []*LeaderboardEntry
		hit, err := ls.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			ls.log.Warn("Leaderboard cache read failed", "key", key, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	dbc := dbctx.New(ctx)
	days, err := ls.histories.ListSince(dbc, periodStart(q.Period, ls.now()))
	if err != nil {
		return nil, fmt.Errorf("load chat days: %w", err)
	}
	totals := leaderboard.Aggregate(days, q.Subject)
	ids := make([]uuid.UUID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.UserID)
	}
	details, err := ls.detailsRepo.GetByUserIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load user details: %w", err)
	}

	out := make([]*LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		d := details[t.UserID]
		if d == nil || !classMatches(d.Class, q.Class) {
			continue
		}
		out = append(out, &LeaderboardEntry{
			UserID:       t.UserID,
			Name:         d.Name,
			StudentID:    d.Phone,
			ProfileImage: d.ProfileImage,
			SparkPoints:  t.SparkPoints(),
			Class:        d.Class,
			Subjects:     t.Subjects,
			TotalQueries: t.Queries,
			Streak:       t.Streak(),
		})
	}
	leaderboard.Rank(out)

	if ls.cache != nil && ls.cacheTTL > 0 {
		if err := ls.cache.SetJSON(ctx, key, out, ls.cacheTTL); err != nil {
			ls.log.Warn("Leaderboard cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func findEntry(entries []*LeaderboardEntry, userID uuid.UUID) *LeaderboardEntry {
	for _, e := range entries {
		if e.UserID == userID {
			return e
		}
	}
	return nil
}

func (ls *leaderboardService) prepare(ctx context.Context, q LeaderboardQuery) (uuid.UUID, LeaderboardQuery, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return uuid.Nil, q, err
	}
	period, err := normalizePeriod(q.Period)
	if err != nil {
		return uuid.Nil, q, err
	}
	q.Period = period
	q.Subject = strings.TrimSpace(q.Subject)
	q.Class = strings.TrimSpace(q.Class)
	if q.Limit <= 0 {
		q.Limit = defaultBoardLimit
	}
	return userID, q, nil
}

func (ls *leaderboardService) board(ctx context.Context, q LeaderboardQuery) (*Board, []*LeaderboardEntry, error) {
	userID, q, err := ls.prepare(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	all, err := ls.standings(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	users := all
	if len(users) > q.Limit {
		users = users[:q.Limit]
	}
	return &Board{
		Users:       users,
		CurrentUser: findEntry(all, userID),
		TotalUsers:  len(all),
		Period:      q.Period,
		Filters:     BoardFilters{Subject: q.Subject, Class: q.Class},
	}, all, nil
}

func (ls *leaderboardService) Leaderboard(ctx context.Context, q LeaderboardQuery) (*Board, error) {
	b, _, err := ls.board(ctx, q)
	return b, err
}

func (ls *leaderboardService) UserRank(ctx context.Context, q LeaderboardQuery) (*LeaderboardEntry, error) {
	b, _, err := ls.board(ctx, q)
	if err != nil {
		return nil, err
	}
	return b.CurrentUser, nil
}

// Search matches names case-insensitively and student ids by substring.
func (ls *leaderboardService) Search(ctx context.Context, text string, q LeaderboardQuery) (*Board, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.BadRequest("invalid_request", "query is required")
	}
	b, all, err := ls.board(ctx, q)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	matched := []*LeaderboardEntry{}
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Name), needle) || strings.Contains(e.StudentID, text) {
			matched = append(matched, e)
		}
	}
	b.TotalUsers = len(matched)
	if len(matched) > searchLimit {
		matched = matched[:searchLimit]
	}
	b.Users = matched
	return b, nil
}

func (ls *leaderboardService) TopPerformers(ctx context.Context, q LeaderboardQuery) (*TopPerformers, error) {
	q.Limit = 3
	b, _, err := ls.board(ctx, q)
	if err != nil {
		return nil, err
	}
	return &TopPerformers{TopThree: b.Users, CurrentUser: b.CurrentUser}, nil
}

func (ls *leaderboardService) RankOf(ctx context.Context, userID uuid.UUID) (*LeaderboardEntry, error) {
	all, err := ls.standings(ctx, LeaderboardQuery{Period: PeriodAll})
	if err != nil {
		return nil, err
	}
	return findEntry(all, userID), nil
}
