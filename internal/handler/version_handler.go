package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// VersionHandler handles version tree requests
type VersionHandler struct {
	versions service.VersionService
}

// NewVersionHandler creates a new VersionHandler
func NewVersionHandler(versions service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

// Create handles POST /api/v1/versions
// @Summary Create a version (creator only; number auto-increments when omitted)
// @Tags versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateVersionRequest true "Version"
// @Success 201 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /versions [post]
func (h *VersionHandler) Create(c *gin.Context) {
	var req domain.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	version, err := h.versions.CreateVersion(middleware.GetActor(c), &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, version)
}

// Get handles GET /api/v1/versions/:id
// @Summary Get a version with neighbor navigation
// @Tags versions
// @Produce json
// @Param id path int true "Version ID"
// @Success 200 {object} common.APIResponse
// @Router /versions/{id} [get]
func (h *VersionHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	version, err := h.versions.GetVersion(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, version, nil)
}

// ListByStory handles GET /api/v1/stories/:id/versions
func (h *VersionHandler) ListByStory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	versions, err := h.versions.ListStoryVersions(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, versions, nil)
}

// EpisodesByStory handles GET /api/v1/stories/:id/episodes
func (h *VersionHandler) EpisodesByStory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episodes, err := h.versions.ListStoryEpisodes(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episodes, nil)
}

// Episodes handles GET /api/v1/versions/:id/episodes
func (h *VersionHandler) Episodes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episodes, err := h.versions.ListVersionEpisodes(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episodes, nil)
}

// Next handles GET /api/v1/versions/:id/next
// @Summary Find the numerically next version in the same story
// @Tags versions
// @Produce json
// @Param id path int true "Version ID"
// @Success 200 {object} common.APIResponse
// @Router /versions/{id}/next [get]
func (h *VersionHandler) Next(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	next, err := h.versions.NextVersion(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if next == nil {
		common.SuccessResponse(c, gin.H{"has_next": false, "next_id": nil}, nil)
		return
	}
	common.SuccessResponse(c, gin.H{"has_next": true, "next_id": next.ID, "version": next}, nil)
}

// Previous handles GET /api/v1/versions/:id/previous
func (h *VersionHandler) Previous(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	prev, err := h.versions.PreviousVersion(id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if prev == nil {
		common.SuccessResponse(c, gin.H{"has_previous": false, "previous_id": nil}, nil)
		return
	}
	common.SuccessResponse(c, gin.H{"has_previous": true, "previous_id": prev.ID, "version": prev}, nil)
}
