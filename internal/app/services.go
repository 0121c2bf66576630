package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	"github.com/yungbote/studybuddy-backend/internal/jobs"
	"github.com/yungbote/studybuddy-backend/internal/modules/chat"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Curriculum  services.CurriculumService
	Study       services.StudyService
	Chat        services.ChatService
	Feedback    services.FeedbackService
	Leaderboard services.LeaderboardService
	Analytics   services.AnalyticsService

	// ChatCleanup is nil unless CHAT_RETENTION_DAYS > 0.
	ChatCleanup *jobs.ChatCleanup
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := chat.DefaultCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("load chat catalog: %w", err)
	}

	var cache services.StandingsCache
	if clients.Cache != nil {
		cache = clients.Cache
	}
	leaderboard := services.NewLeaderboardService(log, r.ChatHistory, r.UserDetails, cache, cfg.LeaderboardCacheTTL)

	out := Services{
		Auth:        services.NewAuthService(db, log, r.Users, r.UserDetails, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		User:        services.NewUserService(db, log, r.Users, r.UserDetails),
		Curriculum:  services.NewCurriculumService(db, log, r.Subjects, r.Quizzes),
		Study:       services.NewStudyService(db, log, r.Subjects, r.Quizzes, r.Attempts, r.UserDetails),
		Chat:        services.NewChatService(db, log, r.ChatHistory, r.UserDetails, catalog, clients.LLM),
		Feedback:    services.NewFeedbackService(db, log, r.Feedback, r.UserDetails),
		Leaderboard: leaderboard,
		Analytics:   services.NewAnalyticsService(log, r.Users, r.ChatHistory, r.Attempts, r.Subjects, leaderboard),
	}
	if cfg.ChatRetentionDays > 0 {
		out.ChatCleanup = jobs.NewChatCleanup(log, r.ChatHistory, cfg.ChatRetentionDays, cfg.ChatCleanupSchedule)
	}
	return out, nil
}
