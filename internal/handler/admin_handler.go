package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// AdminHandler handles moderation and user administration requests
type AdminHandler struct {
	moderation service.ModerationService
	members    service.MemberService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(moderation service.ModerationService, members service.MemberService) *AdminHandler {
	return &AdminHandler{moderation: moderation, members: members}
}

// QuarantinedStories handles GET /api/v1/admin/stories/quarantined
// @Summary List quarantined stories awaiting review (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse
// @Router /admin/stories/quarantined [get]
func (h *AdminHandler) QuarantinedStories(c *gin.Context) {
	page, limit := pageParams(c)
	stories, meta, err := h.moderation.ListQuarantinedStories(middleware.GetActor(c), page, limit)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, stories, meta)
}

// ApproveStory handles POST /api/v1/admin/stories/:id/approve
// @Summary Restore a flagged story to public and reject its pending reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /admin/stories/{id}/approve [post]
func (h *AdminHandler) ApproveStory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	story, err := h.moderation.ApproveStory(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, story, nil)
}

// RejectStory handles POST /api/v1/admin/stories/:id/reject
// @Summary Take a flagged story private and uphold its pending reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/stories/{id}/reject [post]
func (h *AdminHandler) RejectStory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	story, err := h.moderation.RejectStory(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, story, nil)
}

// ChangeStoryVisibility handles PATCH /api/v1/admin/stories/:id/visibility
// @Summary Set a story's visibility directly (admin or supervising subadmin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Param request body domain.ChangeVisibilityRequest true "Visibility"
// @Success 200 {object} common.APIResponse
// @Router /admin/stories/{id}/visibility [patch]
func (h *AdminHandler) ChangeStoryVisibility(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.ChangeVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	story, err := h.moderation.ChangeStoryVisibility(middleware.GetActor(c), id, req.Visibility)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, story, nil)
}

// DeleteStory handles DELETE /api/v1/admin/stories/:id
// @Summary Permanently delete a story and its versions, episodes and reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/stories/{id} [delete]
func (h *AdminHandler) DeleteStory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.moderation.PermanentlyDeleteStory(middleware.GetActor(c), id); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"detail": "story deleted"}, nil)
}

// ApproveEpisode handles POST /api/v1/admin/episodes/:id/approve
// @Summary Restore a pending or deleted episode to public and clear its reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/episodes/{id}/approve [post]
func (h *AdminHandler) ApproveEpisode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episode, err := h.moderation.ApproveEpisode(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episode, nil)
}

// RejectEpisode handles POST /api/v1/admin/episodes/:id/reject
// @Summary Send a pending episode back to quarantine and uphold its reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Episode ID"
// @Success 200 {object} common.APIResponse
// @Router /admin/episodes/{id}/reject [post]
func (h *AdminHandler) RejectEpisode(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	episode, err := h.moderation.RejectEpisode(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, episode, nil)
}

// ListUsers handles GET /api/v1/admin/users
// @Summary List all users (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	users, meta, err := h.members.ListUsers(middleware.GetActor(c), page, limit)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, users, meta)
}

// CreateUser handles POST /api/v1/admin/users
// @Summary Create a user (admin, or subadmin creating supervised users)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateUserRequest true "User"
// @Success 201 {object} common.APIResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := h.members.CreateUser(middleware.GetActor(c), &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, user)
}

// AssignRole handles PATCH /api/v1/admin/users/:id/role
// @Summary Change a user's role and supervisor (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body domain.AssignRoleRequest true "Role assignment"
// @Success 200 {object} common.APIResponse
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := h.members.AssignRole(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}

// MakeSubadmin handles POST /api/v1/admin/users/:id/subadmin
// @Summary Promote a user to subadmin and enroll them in an organization
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body domain.MakeSubadminRequest true "Organization"
// @Success 200 {object} common.APIResponse
// @Router /admin/users/{id}/subadmin [post]
func (h *AdminHandler) MakeSubadmin(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.MakeSubadminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	user, err := h.members.MakeSubadmin(middleware.GetActor(c), id, req.OrganizationID)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, user, nil)
}
