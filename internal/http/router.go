package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studybuddy-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studybuddy-backend/internal/http/middleware"
	"github.com/yungbote/studybuddy-backend/internal/observability"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	FrontendURL string
	Tracing     bool
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware
	ChatLimiter    *httpMW.RateLimiter

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	StudyHandler       *httpH.StudyHandler
	ChatHandler        *httpH.ChatHandler
	CurriculumHandler  *httpH.CurriculumHandler
	FeedbackHandler    *httpH.FeedbackHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	AnalyticsHandler   *httpH.AnalyticsHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.FrontendURL))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	am := cfg.AuthMiddleware
	if am == nil {
		return r
	}
	authed := am.RequireAuth()
	perm := am.RequirePermission

	// Auth
	if cfg.AuthHandler != nil {
		auth := r.Group("/auth")
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/register", perm(services.PermUsersManage), cfg.AuthHandler.Register)
	}

	// Chat
	if cfg.ChatHandler != nil {
		chat := r.Group("/chat", authed)
		ask := []gin.HandlerFunc{cfg.ChatHandler.Ask}
		if cfg.ChatLimiter != nil {
			ask = append([]gin.HandlerFunc{cfg.ChatLimiter.Handler()}, ask...)
		}
		chat.GET("", ask...)
		chat.GET("/chat-history", cfg.ChatHandler.History)
		chat.GET("/heat-map", cfg.ChatHandler.HeatMap)
		chat.GET("/chat-streak", cfg.ChatHandler.Streak)
		chat.GET("/recent-topics", cfg.ChatHandler.RecentTopics)
		chat.GET("/topic-history", cfg.ChatHandler.TopicHistory)
	}

	// Users
	users := r.Group("/users")
	if cfg.UserHandler != nil {
		users.GET("", perm(services.PermUsersManage), cfg.UserHandler.ListUsers)
		users.PUT("", perm(services.PermUsersManage), cfg.UserHandler.UpdateUser)
		users.DELETE("", perm(services.PermUsersManage), cfg.UserHandler.DeleteUser)

		users.POST("/user-details", authed, cfg.UserHandler.CreateDetails)
		users.GET("/user-details", authed, cfg.UserHandler.GetDetails)
		users.PUT("/user-details", authed, cfg.UserHandler.UpdateDetails)
	}
	if cfg.StudyHandler != nil {
		users.GET("/subjects", authed, cfg.StudyHandler.ListSubjects)
		users.GET("/subjects/:id", authed, cfg.StudyHandler.GetSubject)
		users.GET("/quizzes", authed, cfg.StudyHandler.ListQuizzes)
		users.POST("/quiz-attempts", authed, cfg.StudyHandler.SubmitAttempt)
		users.GET("/quiz-attempts", authed, cfg.StudyHandler.ListAttempts)
	}

	// Admin curriculum
	if cfg.CurriculumHandler != nil {
		h := cfg.CurriculumHandler
		admin := r.Group("/admin", perm(services.PermCurriculumManage))
		admin.GET("/subjects", h.ListSubjects)
		admin.POST("/subjects", h.CreateSubject)
		admin.GET("/subjects/:id", h.GetSubject)
		admin.PUT("/subjects/:id", h.UpdateSubject)
		admin.DELETE("/subjects/:id", h.DeleteSubject)
		admin.POST("/subjects/:id/topics", h.AddSubjectTopic)

		admin.POST("/topics", h.AddTopic)
		admin.PUT("/topics", h.UpdateTopic)
		admin.DELETE("/topics", h.DeleteTopic)

		admin.POST("/quizzes", h.CreateQuiz)
		admin.POST("/quizzes/bulk", h.CreateQuizzes)
		admin.GET("/quizzes", h.ListQuizzes)
		admin.GET("/quizzes/:id", h.GetQuiz)
		admin.PUT("/quizzes/:id", h.UpdateQuiz)
		admin.DELETE("/quizzes/:id", h.DeleteQuiz)
	}

	// Admin analytics
	if cfg.AnalyticsHandler != nil {
		analytics := r.Group("/admin/analytics", perm(services.PermAnalyticsRead))
		analytics.GET("/student/:userId", cfg.AnalyticsHandler.Student)
		analytics.GET("/student/:userId/download", cfg.AnalyticsHandler.Download)
		analytics.GET("/student/:userId/activity-chart", cfg.AnalyticsHandler.ActivityChart)
	}

	// Feedback
	if cfg.FeedbackHandler != nil {
		h := cfg.FeedbackHandler
		fb := r.Group("/feedback")
		fb.POST("", authed, h.Create)
		fb.GET("/my-feedbacks", authed, h.ListMine)
		fb.GET("/my-feedbacks/:id", authed, h.GetMine)

		fbAdmin := fb.Group("/admin", perm(services.PermFeedbackManage))
		fbAdmin.GET("", h.List)
		fbAdmin.GET("/:id", h.Get)
		fbAdmin.PUT("/:id", h.UpdateStatus)
		fbAdmin.DELETE("/:id", h.Delete)
	}

	// Leaderboard
	if cfg.LeaderboardHandler != nil {
		lb := r.Group("/leaderboard", authed)
		lb.GET("", cfg.LeaderboardHandler.Leaderboard)
		lb.GET("/user-rank", cfg.LeaderboardHandler.UserRank)
		lb.GET("/search", cfg.LeaderboardHandler.Search)
		lb.GET("/top-performers", cfg.LeaderboardHandler.TopPerformers)
	}

	return r
}
