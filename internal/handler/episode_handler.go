package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// EpisodeHandler handles episode requests
type EpisodeHandler struct {
	versions   service.VersionService
	reports    service.ReportService
	moderation service.ModerationService
}

// NewEpisodeHandler creates a new EpisodeHandler
func NewEpisodeHandler(
	versions service.VersionService,
	reports service.ReportService,
	moderation service.ModerationService,
) *EpisodeHandler {
	return &EpisodeHandler{versions: versions, reports: reports, moderation: moderation}
}

// Create handles POST /api/v1/episodes
// @Summary Create an episode on a version (creator only)
// @Tags episodes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateEpisodeRequest true "Episode"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /episodes [post]
func (h *EpisodeHandler) Create(c *gin.Context) {
	var req domain.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	episode, err := h.versions.CreateEpisode(middleware.GetActor(c), &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, episode)
}

// Get handles GET /api/v1/episodes/:id
// @Summary Get an episode with neighbor navigation
// @Tags episodes
// @Produce json
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /episodes/{id} [get]
func (h *EpisodeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episode, err := h.versions.GetEpisode(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episode, nil)
}

// Branch handles POST /api/v1/episodes/:id/branch
// @Summary Branch a new version from an episode's lineage tip
// @Tags episodes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Param request body domain.BranchEpisodeRequest true "New branch episode"
// @Success 201 {object} common.APIResponse
// @Router /episodes/{id}/branch [post]
func (h *EpisodeHandler) Branch(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.BranchEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	episode, err := h.versions.BranchEpisode(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, episode)
}

// Next handles GET /api/v1/episodes/:id/next
func (h *EpisodeHandler) Next(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	next, err := h.versions.NextEpisode(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if next == nil {
		common.SuccessResponse(c, gin.H{"has_next": false, "next_id": nil}, nil)
		return
	}
	common.SuccessResponse(c, gin.H{"has_next": true, "next_id": next.ID, "episode": next}, nil)
}

// Previous handles GET /api/v1/episodes/:id/previous
func (h *EpisodeHandler) Previous(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	prev, err := h.versions.PreviousEpisode(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if prev == nil {
		common.SuccessResponse(c, gin.H{"has_previous": false, "previous_id": nil}, nil)
		return
	}
	common.SuccessResponse(c, gin.H{"has_previous": true, "previous_id": prev.ID, "episode": prev}, nil)
}

// LineageTip handles GET /api/v1/episodes/:id/tip
// @Summary Follow the branch chain from an episode to its newest descendant
// @Tags episodes
// @Produce json
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /episodes/{id}/tip [get]
func (h *EpisodeHandler) LineageTip(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tip, err := h.versions.LineageTip(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, tip, nil)
}

// Like handles POST /api/v1/episodes/:id/like
func (h *EpisodeHandler) Like(c *gin.Context) {
	h.reaction(c, h.versions.LikeEpisode, "episode liked")
}

// Unlike handles DELETE /api/v1/episodes/:id/like
func (h *EpisodeHandler) Unlike(c *gin.Context) {
	h.reaction(c, h.versions.UnlikeEpisode, "episode unliked")
}

func (h *EpisodeHandler) reaction(c *gin.Context, fn func(*domain.Actor, uint64) error, detail string) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := fn(middleware.GetActor(c), id); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"detail": detail}, nil)
}

// Report handles POST /api/v1/episodes/:id/report
// @Summary File a report against an episode
// @Tags episodes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Param request body domain.FileReportRequest true "Report"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /episodes/{id}/report [post]
func (h *EpisodeHandler) Report(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	filed, err := h.reports.FileEpisodeReport(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if filed.EpisodeQuarantined {
		middleware.CountEscalation("episode")
	}
	if filed.StoryReported {
		middleware.CountEscalation("story")
	}
	common.CreatedResponse(c, filed)
}

// SubmitForApproval handles POST /api/v1/episodes/:id/submit
// @Summary Resubmit a quarantined episode for review (creator only)
// @Tags episodes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /episodes/{id}/submit [post]
func (h *EpisodeHandler) SubmitForApproval(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episode, err := h.moderation.SubmitEpisodeForApproval(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episode, nil)
}

// Delete handles DELETE /api/v1/episodes/:id
// @Summary Soft delete an episode (creator or staff)
// @Tags episodes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /episodes/{id} [delete]
func (h *EpisodeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episode, err := h.moderation.SoftDeleteEpisode(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episode, nil)
}
