package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// POST /feedback
func (fh *FeedbackHandler) Create(c *gin.Context) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    string   `json:"priority"`
		Category    string   `json:"category"`
		Subject     *string  `json:"subject"`
		Attachments []string `json:"attachments"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fb, err := fh.feedbackService.Create(c.Request.Context(), services.FeedbackInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Subject:     req.Subject,
		Attachments: req.Attachments,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, fb)
}

// GET /feedback/my-feedbacks
func (fh *FeedbackHandler) ListMine(c *gin.Context) {
	list, err := fh.feedbackService.ListMine(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /feedback/my-feedbacks/:id
func (fh *FeedbackHandler) GetMine(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fb, err := fh.feedbackService.GetMine(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, fb)
}

// GET /feedback/admin?status&userId
func (fh *FeedbackHandler) List(c *gin.Context) {
	var filter repos.FeedbackFilter
	if raw := c.Query("status"); raw != "" {
		status := types.FeedbackStatus(raw)
		filter.Status = &status
	}
	userID, ok := optionalQueryUUID(c, "userId")
	if !ok {
		return
	}
	filter.UserID = userID
	list, err := fh.feedbackService.List(c.Request.Context(), filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /feedback/admin/:id
func (fh *FeedbackHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	fb, err := fh.feedbackService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, fb)
}

// PUT /feedback/admin/:id
func (fh *FeedbackHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status        *types.FeedbackStatus `json:"status"`
		AdminResponse *string               `json:"adminResponse"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fb, err := fh.feedbackService.UpdateStatus(c.Request.Context(), id, services.FeedbackStatusUpdate{
		Status:        req.Status,
		AdminResponse: req.AdminResponse,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, fb)
}

// DELETE /feedback/admin/:id
func (fh *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := fh.feedbackService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	success(c)
}
