package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func boardQuery(c *gin.Context) services.LeaderboardQuery {
	return services.LeaderboardQuery{
		Period:  c.DefaultQuery("period", services.PeriodAll),
		Subject: c.Query("subject"),
		Class:   c.Query("class"),
		Limit:   queryInt(c, "limit", 0),
	}
}

// GET /leaderboard?period&subject&class&limit
func (lh *LeaderboardHandler) Leaderboard(c *gin.Context) {
	board, err := lh.leaderboardService.Leaderboard(c.Request.Context(), boardQuery(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, board)
}

// GET /leaderboard/user-rank
func (lh *LeaderboardHandler) UserRank(c *gin.Context) {
	entry, err := lh.leaderboardService.UserRank(c.Request.Context(), boardQuery(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, entry)
}

// GET /leaderboard/search?query
func (lh *LeaderboardHandler) Search(c *gin.Context) {
	board, err := lh.leaderboardService.Search(c.Request.Context(), c.Query("query"), boardQuery(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, board)
}

// GET /leaderboard/top-performers
func (lh *LeaderboardHandler) TopPerformers(c *gin.Context) {
	top, err := lh.leaderboardService.TopPerformers(c.Request.Context(), boardQuery(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, top)
}
