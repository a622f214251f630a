package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/middleware"
	"github.com/storyforge/storyforge-backend/internal/service"
)

// StoryHandler handles story requests
type StoryHandler struct {
	stories service.StoryService
	reports service.ReportService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories service.StoryService, reports service.ReportService) *StoryHandler {
	return &StoryHandler{stories: stories, reports: reports}
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

// List handles GET /api/v1/stories
// @Summary List stories
// @Description Lists public stories; authenticated users also see their own
// @Tags stories
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} common.APIResponse
// @Router /stories [get]
func (h *StoryHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	actor := middleware.GetActor(c)
	var (
		stories []*domain.StoryResponse
		meta    *common.Meta
		err     error
	)
	if actor != nil {
		stories, meta, err = h.stories.ListVisible(actor, page, limit)
	} else {
		stories, meta, err = h.stories.ListPublic(page, limit)
	}
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, stories, meta)
}

// Get handles GET /api/v1/stories/:id
// @Summary Get a story
// @Tags stories
// @Produce json
// @Param id path int true "Story ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /stories/{id} [get]
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	story, err := h.stories.Get(middleware.GetActor(c), id)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, story, nil)
}

// Create handles POST /api/v1/stories
// @Summary Create a story
// @Tags stories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateStoryRequest true "Story"
// @Success 201 {object} common.APIResponse
// @Router /stories [post]
func (h *StoryHandler) Create(c *gin.Context) {
	var req domain.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	story, err := h.stories.Create(middleware.GetActor(c), &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.CreatedResponse(c, story)
}

// Update handles PATCH /api/v1/stories/:id
// @Summary Edit a story (creator only)
// @Tags stories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Param request body domain.UpdateStoryRequest true "Changes"
// @Success 200 {object} common.APIResponse
// @Router /stories/{id} [patch]
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	story, err := h.stories.Update(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, story, nil)
}

// MyStories handles GET /api/v1/stories/mine
// @Summary List the caller's stories
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse
// @Router /stories/mine [get]
func (h *StoryHandler) MyStories(c *gin.Context) {
	stories, err := h.stories.MyStories(middleware.GetActor(c))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, stories, nil)
}

// Feed handles GET /api/v1/stories/feed
// @Summary List stories the caller follows
// @Tags stories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse
// @Router /stories/feed [get]
func (h *StoryHandler) Feed(c *gin.Context) {
	stories, err := h.stories.FollowedStories(middleware.GetActor(c))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessResponse(c, stories, nil)
}

// Like handles POST /api/v1/stories/:id/like
func (h *StoryHandler) Like(c *gin.Context) {
	h.reaction(c, h.stories.Like, "liked")
}

// Unlike handles POST /api/v1/stories/:id/unlike
func (h *StoryHandler) Unlike(c *gin.Context) {
	h.reaction(c, h.stories.Unlike, "unliked")
}

// Follow handles POST /api/v1/stories/:id/follow
func (h *StoryHandler) Follow(c *gin.Context) {
	h.reaction(c, h.stories.Follow, "followed")
}

// Unfollow handles POST /api/v1/stories/:id/unfollow
func (h *StoryHandler) Unfollow(c *gin.Context) {
	h.reaction(c, h.stories.Unfollow, "unfollowed")
}

func (h *StoryHandler) reaction(c *gin.Context, fn func(*domain.Actor, uint64) error, detail string) {
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

// Report handles POST /api/v1/stories/:id/report
// @Summary Report a story
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Story ID"
// @Param request body domain.FileReportRequest true "Reason"
// @Success 201 {object} common.APIResponse
// @Router /stories/{id}/report [post]
func (h *StoryHandler) Report(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "reason is required", err)
		return
	}
	filed, err := h.reports.FileStoryReport(middleware.GetActor(c), id, &req)
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if filed.StoryReported {
		middleware.CountEscalation("story")
	}
	common.CreatedResponse(c, filed)
}
