package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// OrganizationHandler handles organization administration requests
type OrganizationHandler struct {
	orgs    service.OrganizationService
	members service.MemberService
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(orgs service.OrganizationService, members service.MemberService) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, members: members}
}

// List handles GET /api/v1/admin/organizations
// @Summary List organizations (admin only)
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Per page" default(20)
// @Success 200 {object} common.APIResponse
// @Router /admin/organizations [get]
func (h *OrganizationHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	orgs, meta, err := h.orgs.List(middleware.GetActor(c), page, limit)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, orgs, meta)
}

// Get handles GET /api/v1/admin/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	org, err := h.orgs.Get(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, org, nil)
}

// Create handles POST /api/v1/admin/organizations
// @Summary Create an organization (admin only)
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateOrganizationRequest true "Organization"
// @Success 201 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /admin/organizations [post]
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req domain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	org, err := h.orgs.Create(middleware.GetActor(c), &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, org)
}

// Update handles PATCH /api/v1/admin/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	org, err := h.orgs.Update(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, org, nil)
}

// Delete handles DELETE /api/v1/admin/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.orgs.Delete(middleware.GetActor(c), id); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"detail": "organization deleted"}, nil)
}

// OrgUsers handles GET /api/v1/org/users
// @Summary List users in the caller's organizations (admin or subadmin)
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /org/users [get]
func (h *OrganizationHandler) OrgUsers(c *gin.Context) {
	users, err := h.members.ListOrgUsers(middleware.GetActor(c))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, users, nil)
}

// AddMember handles POST /api/v1/org/users
// @Summary Add a user to an organization; subadmins default to their own
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.AddOrgMemberRequest true "Membership"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /org/users [post]
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var req domain.AddOrgMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.members.AddUserToOrganization(middleware.GetActor(c), req.UserID, req.OrganizationID); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"detail": "user added to organization"}, nil)
}
