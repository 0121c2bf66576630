package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studybuddy-backend/internal/http"
	httpH "github.com/yungbote/studybuddy-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studybuddy-backend/internal/http/middleware"
	"github.com/yungbote/studybuddy-backend/internal/observability"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

type Middleware struct {
	Auth        *httpMW.AuthMiddleware
	ChatLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Study       *httpH.StudyHandler
	Chat        *httpH.ChatHandler
	Curriculum  *httpH.CurriculumHandler
	Feedback    *httpH.FeedbackHandler
	Leaderboard *httpH.LeaderboardHandler
	Analytics   *httpH.AnalyticsHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Study:       httpH.NewStudyHandler(services.Study),
		Chat:        httpH.NewChatHandler(services.Chat),
		Curriculum:  httpH.NewCurriculumHandler(services.Curriculum),
		Feedback:    httpH.NewFeedbackHandler(services.Feedback),
		Leaderboard: httpH.NewLeaderboardHandler(services.Leaderboard),
		Analytics:   httpH.NewAnalyticsHandler(services.Analytics),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:        httpMW.NewAuthMiddleware(log, services.Auth),
		ChatLimiter: httpMW.NewRateLimiter(log, metrics, cfg.ChatRatePerSecond, cfg.ChatRateBurst),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		FrontendURL: cfg.FrontendURL,
		Tracing:     observability.OtelEnabled(),
		ServiceName: "studybuddy-backend",

		AuthMiddleware: middleware.Auth,
		ChatLimiter:    middleware.ChatLimiter,

		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		StudyHandler:       handlers.Study,
		ChatHandler:        handlers.Chat,
		CurriculumHandler:  handlers.Curriculum,
		FeedbackHandler:    handlers.Feedback,
		LeaderboardHandler: handlers.Leaderboard,
		AnalyticsHandler:   handlers.Analytics,
		HealthHandler:      handlers.Health,
	})
}
