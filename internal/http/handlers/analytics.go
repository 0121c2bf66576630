package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /admin/analytics/student/:userId
func (ah *AnalyticsHandler) Student(c *gin.Context) {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	out, err := ah.analyticsService.StudentAnalytics(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /admin/analytics/student/:userId/download?format=json|csv
func (ah *AnalyticsHandler) Download(c *gin.Context) {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	report, err := ah.analyticsService.Report(c.Request.Context(), userID, c.DefaultQuery("format", services.ReportJSON))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Body)
}

// GET /admin/analytics/student/:userId/activity-chart?period=week|month|year
func (ah *AnalyticsHandler) ActivityChart(c *gin.Context) {
	userID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}
	chart, err := ah.analyticsService.ActivityChart(c.Request.Context(), userID, c.DefaultQuery("period", "month"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, chart)
}
