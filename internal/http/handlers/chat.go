package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GET /chat?subject&query[&topic]
func (ch *ChatHandler) Ask(c *gin.Context) {
	reply, err := ch.chatService.Ask(c.Request.Context(), services.ChatRequest{
		Subject: c.Query("subject"),
		Query:   c.Query("query"),
		Topic:   c.Query("topic"),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"response": reply})
}

// GET /chat/chat-history[?date]
// Without a date every stored day is returned.
func (ch *ChatHandler) History(c *gin.Context) {
	if date, ok := c.GetQuery("date"); ok {
		day, err := ch.chatService.DayHistory(c.Request.Context(), date)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, day)
		return
	}
	days, err := ch.chatService.AllHistory(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, days)
}

// GET /chat/heat-map?lowerBound&upperBound
func (ch *ChatHandler) HeatMap(c *gin.Context) {
	days, err := ch.chatService.HeatMap(c.Request.Context(), c.Query("lowerBound"), c.Query("upperBound"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, days)
}

// GET /chat/chat-streak
func (ch *ChatHandler) Streak(c *gin.Context) {
	streak, err := ch.chatService.Streak(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"streak": streak})
}

// GET /chat/recent-topics
func (ch *ChatHandler) RecentTopics(c *gin.Context) {
	topics, err := ch.chatService.RecentTopics(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

// GET /chat/topic-history?topic
func (ch *ChatHandler) TopicHistory(c *gin.Context) {
	days, err := ch.chatService.TopicHistory(c.Request.Context(), c.Query("topic"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, days)
}
