package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
)

// maxLineageDepth bounds lineage walks so a corrupted parent chain can
// never loop forever.
const maxLineageDepth = 10000

// VersionService maintains the branching version/episode lineage of a story
type VersionService interface {
	CreateVersion(actor *domain.Actor, req *domain.CreateVersionRequest) (*domain.VersionResponse, error)
	GetVersion(id uint64) (*domain.VersionResponse, error)
	ListStoryVersions(storyID uint64) ([]*domain.VersionResponse, error)
	NextVersion(id uint64) (*domain.VersionResponse, error)
	PreviousVersion(id uint64) (*domain.VersionResponse, error)

	CreateEpisode(actor *domain.Actor, req *domain.CreateEpisodeRequest) (*domain.EpisodeResponse, error)
	BranchEpisode(actor *domain.Actor, parentEpisodeID uint64, req *domain.BranchEpisodeRequest) (*domain.EpisodeResponse, error)
	GetEpisode(id uint64) (*domain.EpisodeResponse, error)
	ListVersionEpisodes(versionID uint64) ([]*domain.EpisodeResponse, error)
	ListStoryEpisodes(storyID uint64) ([]*domain.EpisodeResponse, error)
	NextEpisode(id uint64) (*domain.EpisodeResponse, error)
	PreviousEpisode(id uint64) (*domain.EpisodeResponse, error)
	LineageTip(id uint64) (*domain.EpisodeResponse, error)

	LikeEpisode(actor *domain.Actor, episodeID uint64) error
	UnlikeEpisode(actor *domain.Actor, episodeID uint64) error
}

type versionService struct {
	stories  repository.StoryRepository
	versions repository.VersionRepository
	episodes repository.EpisodeRepository
	policy   *AccessPolicy
}

// NewVersionService creates a new VersionService
func NewVersionService(
	stories repository.StoryRepository,
	versions repository.VersionRepository,
	episodes repository.EpisodeRepository,
	policy *AccessPolicy,
) VersionService {
	return &versionService{
		stories:  stories,
		versions: versions,
		episodes: episodes,
		policy:   policy,
	}
}

// CreateVersion allocates the next sequential version for a story, or uses
// the explicit number when given. Duplicate numbers surface as a conflict.
func (s *versionService) CreateVersion(actor *domain.Actor, req *domain.CreateVersionRequest) (*domain.VersionResponse, error) {
	story, err := s.stories.FindByID(req.StoryID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireCreator(actor, story.CreatorID); err != nil {
		return nil, err
	}

	number := uint(0)
	if req.Number != nil {
		number = *req.Number
		if number == 0 {
			return nil, common.ErrValidation
		}
	} else {
		max, err := s.versions.MaxNumber(story.ID)
		if err != nil {
			return nil, err
		}
		number = max + 1
	}

	version := &domain.Version{StoryID: story.ID, Number: number}
	if err := s.versions.Create(version); err != nil {
		return nil, err
	}
	return s.withVersionNavigation(version)
}

// GetVersion retrieves a version with neighbor navigation
func (s *versionService) GetVersion(id uint64) (*domain.VersionResponse, error) {
	version, err := s.versions.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.withVersionNavigation(version)
}

// ListStoryVersions retrieves a story's versions in numeric order
func (s *versionService) ListStoryVersions(storyID uint64) ([]*domain.VersionResponse, error) {
	if _, err := s.stories.FindByID(storyID); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByStory(storyID)
	if err != nil {
		return nil, err
	}
	responses := make([]*domain.VersionResponse, len(versions))
	for i, v := range versions {
		responses[i], err = s.withVersionNavigation(v)
		if err != nil {
			return nil, err
		}
	}
	return responses, nil
}

// NextVersion finds the numerically next version within the same story,
// nil when the version is the latest
func (s *versionService) NextVersion(id uint64) (*domain.VersionResponse, error) {
	version, err := s.versions.FindByID(id)
	if err != nil {
		return nil, err
	}
	next, err := s.versions.Next(version.StoryID, version.Number)
	if err != nil || next == nil {
		return nil, err
	}
	return s.withVersionNavigation(next)
}

// PreviousVersion finds the numerically previous version within the same
// story, nil when the version is the earliest
func (s *versionService) PreviousVersion(id uint64) (*domain.VersionResponse, error) {
	version, err := s.versions.FindByID(id)
	if err != nil {
		return nil, err
	}
	prev, err := s.versions.Previous(version.StoryID, version.Number)
	if err != nil || prev == nil {
		return nil, err
	}
	return s.withVersionNavigation(prev)
}

// CreateEpisode attaches an episode to a version. When only a story is
// given, the story's first version is created on demand. An explicit
// lineage parent must live in a prior version of the same story.
func (s *versionService) CreateEpisode(actor *domain.Actor, req *domain.CreateEpisodeRequest) (*domain.EpisodeResponse, error) {
	var version *domain.Version
	var err error

	switch {
	case req.VersionID != 0:
		version, err = s.versions.FindByID(req.VersionID)
		if err != nil {
			return nil, err
		}
	case req.StoryID != 0:
		version, err = s.firstVersion(req.StoryID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, common.ErrValidation
	}

	if req.ParentEpisodeID != nil {
		if err := s.validateLineageParent(*req.ParentEpisodeID, version); err != nil {
			return nil, err
		}
	}

	episode := &domain.Episode{
		VersionID:       version.ID,
		Title:           req.Title,
		Content:         req.Content,
		CreatorID:       actor.ID,
		ParentEpisodeID: req.ParentEpisodeID,
		Status:          domain.EpisodePublic,
	}
	if err := s.episodes.Create(episode); err != nil {
		return nil, err
	}
	return s.withEpisodeNavigation(episode)
}

// firstVersion returns the story's version 1, creating it when absent
func (s *versionService) firstVersion(storyID uint64) (*domain.Version, error) {
	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByStory(story.ID)
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		return versions[0], nil
	}
	version := &domain.Version{StoryID: story.ID, Number: 1}
	if err := s.versions.Create(version); err != nil {
		return nil, err
	}
	return version, nil
}

// validateLineageParent checks that the parent lives in a strictly earlier
// version of the same story and that linking to it cannot close a cycle.
func (s *versionService) validateLineageParent(parentID uint64, target *domain.Version) error {
	parent, err := s.episodes.FindByID(parentID)
	if err != nil {
		return err
	}
	parentVersion, err := s.versions.FindByID(parent.VersionID)
	if err != nil {
		return err
	}
	if parentVersion.StoryID != target.StoryID || parentVersion.Number >= target.Number {
		return common.ErrInvalidParent
	}

	// Walk the parent's ancestry; a repeat visit means the stored chain is
	// already corrupt and must not be extended.
	seen := map[uint64]bool{}
	current := parent
	for depth := 0; current.ParentEpisodeID != nil; depth++ {
		if depth >= maxLineageDepth || seen[current.ID] {
			return common.ErrLineageCycle
		}
		seen[current.ID] = true
		ancestor, err := s.episodes.FindByID(*current.ParentEpisodeID)
		if err != nil {
			// Lineage tolerates deleted ancestors: the chain simply ends.
			break
		}
		current = ancestor
	}
	return nil
}

// BranchEpisode creates a new version whose first episode continues the
// lineage of the given episode. New content always branches off the chain
// tip, not the episode the caller happened to name. Version and episode are
// created atomically.
func (s *versionService) BranchEpisode(actor *domain.Actor, parentEpisodeID uint64, req *domain.BranchEpisodeRequest) (*domain.EpisodeResponse, error) {
	parent, err := s.episodes.FindByID(parentEpisodeID)
	if err != nil {
		return nil, err
	}
	parentVersion, err := s.versions.FindByID(parent.VersionID)
	if err != nil {
		return nil, err
	}
	story, err := s.stories.FindByID(parentVersion.StoryID)
	if err != nil {
		return nil, err
	}

	tip, err := s.lineageTip(parent)
	if err != nil {
		return nil, err
	}

	max, err := s.versions.MaxNumber(story.ID)
	if err != nil {
		return nil, err
	}

	version := &domain.Version{StoryID: story.ID, Number: max + 1}
	tipID := tip.ID
	episode := &domain.Episode{
		Title:           req.Title,
		Content:         req.Content,
		CreatorID:       actor.ID,
		ParentEpisodeID: &tipID,
		Status:          domain.EpisodePublic,
	}
	if err := s.versions.CreateWithEpisode(version, episode); err != nil {
		return nil, err
	}
	return s.withEpisodeNavigation(episode)
}

// lineageTip follows child links forward to the latest descendant of the
// episode. Broken links end the walk rather than erroring.
func (s *versionService) lineageTip(episode *domain.Episode) (*domain.Episode, error) {
	current := episode
	seen := map[uint64]bool{current.ID: true}
	for depth := 0; depth < maxLineageDepth; depth++ {
		child, err := s.episodes.LatestChild(current.ID)
		if err != nil {
			return nil, err
		}
		if child == nil || seen[child.ID] {
			return current, nil
		}
		seen[child.ID] = true
		current = child
	}
	return current, nil
}

// LineageTip resolves the latest descendant in an episode's lineage chain
func (s *versionService) LineageTip(id uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(id)
	if err != nil {
		return nil, err
	}
	tip, err := s.lineageTip(episode)
	if err != nil {
		return nil, err
	}
	return s.withEpisodeNavigation(tip)
}

// GetEpisode retrieves an episode with neighbor navigation and like count
func (s *versionService) GetEpisode(id uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.withEpisodeNavigation(episode)
}

// ListVersionEpisodes retrieves a version's episodes in creation order
func (s *versionService) ListVersionEpisodes(versionID uint64) ([]*domain.EpisodeResponse, error) {
	if _, err := s.versions.FindByID(versionID); err != nil {
		return nil, err
	}
	episodes, err := s.episodes.ListByVersion(versionID)
	if err != nil {
		return nil, err
	}
	return s.toEpisodeResponses(episodes)
}

// ListStoryEpisodes retrieves every episode across a story's versions
func (s *versionService) ListStoryEpisodes(storyID uint64) ([]*domain.EpisodeResponse, error) {
	if _, err := s.stories.FindByID(storyID); err != nil {
		return nil, err
	}
	episodes, err := s.episodes.ListByStory(storyID)
	if err != nil {
		return nil, err
	}
	return s.toEpisodeResponses(episodes)
}

// NextEpisode finds the episode created after this one within the same
// version, nil when it is the last
func (s *versionService) NextEpisode(id uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(id)
	if err != nil {
		return nil, err
	}
	next, err := s.episodes.NextInVersion(episode.VersionID, episode.CreatedAt)
	if err != nil || next == nil {
		return nil, err
	}
	return s.withEpisodeNavigation(next)
}

// PreviousEpisode finds the episode created before this one within the same
// version, nil when it is the first
func (s *versionService) PreviousEpisode(id uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(id)
	if err != nil {
		return nil, err
	}
	prev, err := s.episodes.PreviousInVersion(episode.VersionID, episode.CreatedAt)
	if err != nil || prev == nil {
		return nil, err
	}
	return s.withEpisodeNavigation(prev)
}

// LikeEpisode records the actor liking an episode
func (s *versionService) LikeEpisode(actor *domain.Actor, episodeID uint64) error {
	if _, err := s.episodes.FindByID(episodeID); err != nil {
		return err
	}
	return s.episodes.Like(episodeID, actor.ID)
}

// UnlikeEpisode removes the actor's like from an episode
func (s *versionService) UnlikeEpisode(actor *domain.Actor, episodeID uint64) error {
	if _, err := s.episodes.FindByID(episodeID); err != nil {
		return err
	}
	return s.episodes.Unlike(episodeID, actor.ID)
}

func (s *versionService) toEpisodeResponses(episodes []*domain.Episode) ([]*domain.EpisodeResponse, error) {
	responses := make([]*domain.EpisodeResponse, len(episodes))
	for i, e := range episodes {
		resp, err := s.withEpisodeNavigation(e)
		if err != nil {
			return nil, err
		}
		responses[i] = resp
	}
	return responses, nil
}

func (s *versionService) withVersionNavigation(version *domain.Version) (*domain.VersionResponse, error) {
	resp := version.ToResponse()

	next, err := s.versions.Next(version.StoryID, version.Number)
	if err != nil {
		return nil, err
	}
	if next != nil {
		resp.HasNext = true
		resp.NextID = &next.ID
	}

	prev, err := s.versions.Previous(version.StoryID, version.Number)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		resp.HasPrevious = true
		resp.PreviousID = &prev.ID
	}
	return resp, nil
}

func (s *versionService) withEpisodeNavigation(episode *domain.Episode) (*domain.EpisodeResponse, error) {
	resp := episode.ToResponse()

	next, err := s.episodes.NextInVersion(episode.VersionID, episode.CreatedAt)
	if err != nil {
		return nil, err
	}
	if next != nil {
		resp.HasNext = true
		resp.NextID = &next.ID
	}

	prev, err := s.episodes.PreviousInVersion(episode.VersionID, episode.CreatedAt)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		resp.HasPrevious = true
		resp.PreviousID = &prev.ID
	}

	likes, err := s.episodes.CountLikes(episode.ID)
	if err != nil {
		return nil, err
	}
	resp.LikesCount = likes
	return resp, nil
}
