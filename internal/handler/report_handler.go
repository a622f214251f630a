package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// ReportHandler handles admin report queries
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List handles GET /api/v1/admin/reports
// @Summary List reports, filterable by target type and status (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param target query string false "Target type (story or episode)" default(story)
// @Param status query string false "Report status (pending, approved, rejected)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /admin/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	target := c.DefaultQuery("target", "story")
	status := c.Query("status")
	reports, meta, err := h.reports.ListReports(middleware.GetActor(c), target, status, page, limit)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, reports, meta)
}

// StoryReports handles GET /api/v1/admin/stories/:id/reports
func (h *ReportHandler) StoryReports(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reports, err := h.reports.ListStoryReports(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, reports, nil)
}

// EpisodeReports handles GET /api/v1/admin/episodes/:id/reports
func (h *ReportHandler) EpisodeReports(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reports, err := h.reports.ListEpisodeReports(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, reports, nil)
}
