package service

import (
	"context"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/storyforge/storyforge-backend/pkg/cache"
)

// StoryService business logic for stories, likes and follows
type StoryService interface {
	ListPublic(page, limit int) ([]*domain.StoryResponse, *common.Meta, error)
	ListVisible(actor *domain.Actor, page, limit int) ([]*domain.StoryResponse, *common.Meta, error)
	Get(actor *domain.Actor, id uint64) (*domain.StoryResponse, error)
	Create(actor *domain.Actor, req *domain.CreateStoryRequest) (*domain.StoryResponse, error)
	Update(actor *domain.Actor, id uint64, req *domain.UpdateStoryRequest) (*domain.StoryResponse, error)
	MyStories(actor *domain.Actor) ([]*domain.StoryResponse, error)
	FollowedStories(actor *domain.Actor) ([]*domain.StoryResponse, error)

	Like(actor *domain.Actor, id uint64) error
	Unlike(actor *domain.Actor, id uint64) error
	Follow(actor *domain.Actor, id uint64) error
	Unfollow(actor *domain.Actor, id uint64) error
}

type storyService struct {
	stories repository.StoryRepository
	cache   cache.Service
}

// NewStoryService creates a new StoryService. cache may be nil when Redis
// is unavailable.
func NewStoryService(stories repository.StoryRepository, cacheService cache.Service) StoryService {
	return &storyService{stories: stories, cache: cacheService}
}

// ListPublic retrieves paginated public stories, cached for the first page
func (s *storyService) ListPublic(page, limit int) ([]*domain.StoryResponse, *common.Meta, error) {
	page, limit = normalizePage(page, limit)

	type cached struct {
		Stories []*domain.StoryResponse `json:"stories"`
		Meta    *common.Meta            `json:"meta"`
	}

	useCache := s.cache != nil && page == 1
	if useCache {
		var entry cached
		if err := s.cache.GetPublicStories(context.Background(), limit, &entry); err == nil {
			return entry.Stories, entry.Meta, nil
		}
	}

	stories, total, err := s.stories.ListPublic(page, limit)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.toResponses(stories)
	if err != nil {
		return nil, nil, err
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}

	if useCache {
		_ = s.cache.SetPublicStories(context.Background(), limit, cached{Stories: responses, Meta: meta})
	}
	return responses, meta, nil
}

// ListVisible retrieves public stories plus the actor's own
func (s *storyService) ListVisible(actor *domain.Actor, page, limit int) ([]*domain.StoryResponse, *common.Meta, error) {
	page, limit = normalizePage(page, limit)
	stories, total, err := s.stories.ListVisibleTo(actor.ID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.toResponses(stories)
	if err != nil {
		return nil, nil, err
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// Get retrieves a story the actor may see. Private, quarantined and
// reported stories resolve only for their creator and staff; everyone else
// gets not-found rather than forbidden, so hidden content stays hidden.
func (s *storyService) Get(actor *domain.Actor, id uint64) (*domain.StoryResponse, error) {
	story, err := s.stories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if story.Visibility != domain.StoryPublic {
		if actor == nil || (actor.ID != story.CreatorID && !actor.IsStaff()) {
			return nil, common.ErrStoryNotFound
		}
	}
	return s.toResponse(story)
}

// Create creates a story owned by the actor
func (s *storyService) Create(actor *domain.Actor, req *domain.CreateStoryRequest) (*domain.StoryResponse, error) {
	story := &domain.Story{
		Title:          req.Title,
		Description:    req.Description,
		CreatorID:      actor.ID,
		Visibility:     domain.StoryPublic,
		Category:       req.Category,
		OrganizationID: req.OrganizationID,
		CoverURL:       req.CoverURL,
	}
	if err := s.stories.Create(story); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.toResponse(story)
}

// Update edits a story, creator only. Creators may toggle public/private;
// moderation states are reserved for the state machine.
func (s *storyService) Update(actor *domain.Actor, id uint64, req *domain.UpdateStoryRequest) (*domain.StoryResponse, error) {
	story, err := s.stories.FindByID(id)
	if err != nil {
		return nil, err
	}
	if actor.ID != story.CreatorID {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		story.Title = *req.Title
	}
	if req.Description != nil {
		story.Description = *req.Description
	}
	if req.Category != nil {
		story.Category = req.Category
	}
	if req.CoverURL != nil {
		story.CoverURL = req.CoverURL
	}
	if req.Visibility != nil {
		switch *req.Visibility {
		case domain.StoryPublic, domain.StoryPrivate:
		default:
			return nil, common.ErrValidation
		}
		if story.Visibility == domain.StoryQuarantined || story.Visibility == domain.StoryReported {
			// Quarantine is only lifted through moderation review.
			return nil, common.ErrInvalidTransition
		}
		story.Visibility = *req.Visibility
	}

	if err := s.stories.Update(story); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.toResponse(story)
}

// MyStories retrieves every story the actor created
func (s *storyService) MyStories(actor *domain.Actor) ([]*domain.StoryResponse, error) {
	stories, err := s.stories.ListByCreator(actor.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(stories)
}

// FollowedStories retrieves stories the actor follows
func (s *storyService) FollowedStories(actor *domain.Actor) ([]*domain.StoryResponse, error) {
	stories, err := s.stories.ListFollowed(actor.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(stories)
}

// Like records the actor liking a story
func (s *storyService) Like(actor *domain.Actor, id uint64) error {
	if _, err := s.stories.FindByID(id); err != nil {
		return err
	}
	return s.stories.Like(id, actor.ID)
}

// Unlike removes the actor's like
func (s *storyService) Unlike(actor *domain.Actor, id uint64) error {
	if _, err := s.stories.FindByID(id); err != nil {
		return err
	}
	return s.stories.Unlike(id, actor.ID)
}

// Follow records the actor following a story
func (s *storyService) Follow(actor *domain.Actor, id uint64) error {
	if _, err := s.stories.FindByID(id); err != nil {
		return err
	}
	return s.stories.Follow(id, actor.ID)
}

// Unfollow removes the actor's follow
func (s *storyService) Unfollow(actor *domain.Actor, id uint64) error {
	if _, err := s.stories.FindByID(id); err != nil {
		return err
	}
	return s.stories.Unfollow(id, actor.ID)
}

func (s *storyService) invalidate() {
	if s.cache != nil {
		_ = s.cache.InvalidatePublicStories(context.Background())
	}
}

func (s *storyService) toResponse(story *domain.Story) (*domain.StoryResponse, error) {
	resp := story.ToResponse()

	likes, err := s.stories.CountLikes(story.ID)
	if err != nil {
		return nil, err
	}
	resp.LikesCount = likes

	followers, err := s.stories.CountFollowers(story.ID)
	if err != nil {
		return nil, err
	}
	resp.FollowersCount = followers
	return resp, nil
}

func (s *storyService) toResponses(stories []*domain.Story) ([]*domain.StoryResponse, error) {
	responses := make([]*domain.StoryResponse, len(stories))
	for i, story := range stories {
		resp, err := s.toResponse(story)
		if err != nil {
			return nil, err
		}
		responses[i] = resp
	}
	return responses, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
