package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"gorm.io/gorm"
)

// ModerationService governs visibility/status transitions for stories and
// episodes. Every multi-step transition runs in one transaction: the target
// flip and the report-log flip commit together or not at all.
type ModerationService interface {
	ApproveStory(actor *domain.Actor, storyID uint64) (*domain.StoryResponse, error)
	RejectStory(actor *domain.Actor, storyID uint64) (*domain.StoryResponse, error)
	ChangeStoryVisibility(actor *domain.Actor, storyID uint64, visibility string) (*domain.StoryResponse, error)
	ListQuarantinedStories(actor *domain.Actor, page, limit int) ([]*domain.StoryResponse, *common.Meta, error)
	PermanentlyDeleteStory(actor *domain.Actor, storyID uint64) error

	SubmitEpisodeForApproval(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error)
	ApproveEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error)
	RejectEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error)
	SoftDeleteEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error)
}

type moderationService struct {
	db       *gorm.DB
	stories  repository.StoryRepository
	episodes repository.EpisodeRepository
	reports  repository.ReportRepository
	policy   *AccessPolicy
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	db *gorm.DB,
	stories repository.StoryRepository,
	episodes repository.EpisodeRepository,
	reports repository.ReportRepository,
	policy *AccessPolicy,
) ModerationService {
	return &moderationService{
		db:       db,
		stories:  stories,
		episodes: episodes,
		reports:  reports,
		policy:   policy,
	}
}

// ApproveStory restores a quarantined or reported story to public and
// exonerates the content: pending reports flip to rejected.
func (s *moderationService) ApproveStory(actor *domain.Actor, storyID uint64) (*domain.StoryResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Visibility != domain.StoryQuarantined && story.Visibility != domain.StoryReported {
		return nil, common.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Story{}).Where("id = ?", story.ID).
			Update("visibility", domain.StoryPublic).Error; err != nil {
			return err
		}
		return tx.Model(&domain.StoryReport{}).
			Where("story_id = ? AND status = ?", story.ID, domain.ReportPending).
			Update("status", domain.ReportRejected).Error
	})
	if err != nil {
		return nil, err
	}
	story.Visibility = domain.StoryPublic
	return story.ToResponse(), nil
}

// RejectStory hides a quarantined or reported story as private and
// vindicates the reporters: pending reports flip to approved.
func (s *moderationService) RejectStory(actor *domain.Actor, storyID uint64) (*domain.StoryResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Visibility != domain.StoryQuarantined && story.Visibility != domain.StoryReported {
		return nil, common.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Story{}).Where("id = ?", story.ID).
			Update("visibility", domain.StoryPrivate).Error; err != nil {
			return err
		}
		return tx.Model(&domain.StoryReport{}).
			Where("story_id = ? AND status = ?", story.ID, domain.ReportPending).
			Update("status", domain.ReportApproved).Error
	})
	if err != nil {
		return nil, err
	}
	story.Visibility = domain.StoryPrivate
	return story.ToResponse(), nil
}

// ChangeStoryVisibility sets the visibility state directly. Admins may act
// on any story; subadmins only on stories whose creator they supervise.
func (s *moderationService) ChangeStoryVisibility(actor *domain.Actor, storyID uint64, visibility string) (*domain.StoryResponse, error) {
	switch visibility {
	case domain.StoryPublic, domain.StoryPrivate, domain.StoryQuarantined:
	default:
		return nil, common.ErrValidation
	}

	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireModerator(actor, story.CreatorID); err != nil {
		return nil, err
	}

	if err := s.stories.UpdateVisibility(story.ID, visibility); err != nil {
		return nil, err
	}
	story.Visibility = visibility
	return story.ToResponse(), nil
}

// ListQuarantinedStories retrieves paginated quarantined stories, admin only
func (s *moderationService) ListQuarantinedStories(actor *domain.Actor, page, limit int) ([]*domain.StoryResponse, *common.Meta, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	stories, total, err := s.stories.ListByVisibility(domain.StoryQuarantined, page, limit)
	if err != nil {
		return nil, nil, err
	}
	responses := make([]*domain.StoryResponse, len(stories))
	for i, story := range stories {
		responses[i] = story.ToResponse()
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// PermanentlyDeleteStory hard-deletes a story and everything it owns,
// admin only
func (s *moderationService) PermanentlyDeleteStory(actor *domain.Actor, storyID uint64) error {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.stories.FindByID(storyID); err != nil {
		return err
	}
	return s.stories.DeleteCascade(storyID)
}

// SubmitEpisodeForApproval moves a quarantined episode to pending review.
// Reports previously exonerated (approved) reopen as pending so the
// resubmission is judged against them again.
func (s *moderationService) SubmitEpisodeForApproval(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireCreator(actor, episode.CreatorID); err != nil {
		return nil, err
	}
	if episode.Status != domain.EpisodeQuarantined {
		return nil, common.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Episode{}).Where("id = ?", episode.ID).
			Update("status", domain.EpisodePending).Error; err != nil {
			return err
		}
		return tx.Model(&domain.EpisodeReport{}).
			Where("episode_id = ? AND status = ?", episode.ID, domain.ReportApproved).
			Update("status", domain.ReportPending).Error
	})
	if err != nil {
		return nil, err
	}
	episode.Status = domain.EpisodePending
	return episode.ToResponse(), nil
}

// ApproveEpisode publishes a pending or deleted episode and clears its
// report log entirely, admin only
func (s *moderationService) ApproveEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	episode, err := s.episodes.FindByID(episodeID)
	if err != nil {
		return nil, err
	}
	if episode.Status != domain.EpisodePending && episode.Status != domain.EpisodeDeleted {
		return nil, common.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Episode{}).Where("id = ?", episode.ID).
			Update("status", domain.EpisodePublic).Error; err != nil {
			return err
		}
		return tx.Where("episode_id = ?", episode.ID).
			Delete(&domain.EpisodeReport{}).Error
	})
	if err != nil {
		return nil, err
	}
	episode.Status = domain.EpisodePublic
	return episode.ToResponse(), nil
}

// RejectEpisode sends a pending episode back to quarantine and vindicates
// the reporters, admin only
func (s *moderationService) RejectEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	episode, err := s.episodes.FindByID(episodeID)
	if err != nil {
		return nil, err
	}
	if episode.Status != domain.EpisodePending {
		return nil, common.ErrInvalidTransition
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Episode{}).Where("id = ?", episode.ID).
			Update("status", domain.EpisodeQuarantined).Error; err != nil {
			return err
		}
		return tx.Model(&domain.EpisodeReport{}).
			Where("episode_id = ? AND status = ?", episode.ID, domain.ReportPending).
			Update("status", domain.ReportApproved).Error
	})
	if err != nil {
		return nil, err
	}
	episode.Status = domain.EpisodeQuarantined
	return episode.ToResponse(), nil
}

// SoftDeleteEpisode marks an episode deleted pending admin confirmation.
// The row stays; only ApproveEpisode can bring it back as public.
func (s *moderationService) SoftDeleteEpisode(actor *domain.Actor, episodeID uint64) (*domain.EpisodeResponse, error) {
	episode, err := s.episodes.FindByID(episodeID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireCreatorOrStaff(actor, episode.CreatorID); err != nil {
		return nil, err
	}
	if episode.Status == domain.EpisodeDeleted {
		return nil, common.ErrInvalidTransition
	}

	if err := s.episodes.UpdateStatus(episode.ID, domain.EpisodeDeleted); err != nil {
		return nil, err
	}
	episode.Status = domain.EpisodeDeleted
	return episode.ToResponse(), nil
}
