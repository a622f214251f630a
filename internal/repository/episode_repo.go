package repository

import (
	"errors"
	"time"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// EpisodeRepository episode storage interface
type EpisodeRepository interface {
	FindByID(id uint64) (*domain.Episode, error)
	ListByVersion(versionID uint64) ([]*domain.Episode, error)
	ListByStory(storyID uint64) ([]*domain.Episode, error)
	Create(episode *domain.Episode) error
	Update(episode *domain.Episode) error
	UpdateStatus(id uint64, status string) error
	// LatestChild finds the most recent episode whose lineage parent is
	// the given episode, nil when the lineage ends there.
	LatestChild(parentID uint64) (*domain.Episode, error)
	NextInVersion(versionID uint64, after time.Time) (*domain.Episode, error)
	PreviousInVersion(versionID uint64, before time.Time) (*domain.Episode, error)

	Like(episodeID, userID uint64) error
	Unlike(episodeID, userID uint64) error
	CountLikes(episodeID uint64) (int64, error)
}

type episodeRepository struct {
	db *gorm.DB
}

// NewEpisodeRepository creates a new EpisodeRepository
func NewEpisodeRepository(db *gorm.DB) EpisodeRepository {
	return &episodeRepository{db: db}
}

// FindByID retrieves an episode by ID
func (r *episodeRepository) FindByID(id uint64) (*domain.Episode, error) {
	var episode domain.Episode
	if err := r.db.First(&episode, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrEpisodeNotFound
		}
		return nil, err
	}
	return &episode, nil
}

// ListByVersion retrieves episodes of a version in creation order
func (r *episodeRepository) ListByVersion(versionID uint64) ([]*domain.Episode, error) {
	var episodes []*domain.Episode
	if err := r.db.Where("version_id = ?", versionID).
		Order("created_at ASC, id ASC").
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// ListByStory retrieves all episodes across every version of a story
func (r *episodeRepository) ListByStory(storyID uint64) ([]*domain.Episode, error) {
	var episodes []*domain.Episode
	if err := r.db.
		Joins("JOIN versions ON versions.id = episodes.version_id").
		Where("versions.story_id = ?", storyID).
		Order("versions.version_number ASC, episodes.created_at ASC").
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

// Create inserts a new episode
func (r *episodeRepository) Create(episode *domain.Episode) error {
	return r.db.Create(episode).Error
}

// Update saves episode fields
func (r *episodeRepository) Update(episode *domain.Episode) error {
	return r.db.Save(episode).Error
}

// UpdateStatus sets the moderation status only
func (r *episodeRepository) UpdateStatus(id uint64, status string) error {
	return r.db.Model(&domain.Episode{}).Where("id = ?", id).
		Update("status", status).Error
}

// LatestChild finds the newest episode branching off the given parent
func (r *episodeRepository) LatestChild(parentID uint64) (*domain.Episode, error) {
	var episode domain.Episode
	err := r.db.Where("parent_episode_id = ?", parentID).
		Order("created_at DESC, id DESC").
		First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// NextInVersion finds the episode created right after the given time within a version
func (r *episodeRepository) NextInVersion(versionID uint64, after time.Time) (*domain.Episode, error) {
	var episode domain.Episode
	err := r.db.Where("version_id = ? AND created_at > ?", versionID, after).
		Order("created_at ASC, id ASC").
		First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// PreviousInVersion finds the episode created right before the given time within a version
func (r *episodeRepository) PreviousInVersion(versionID uint64, before time.Time) (*domain.Episode, error) {
	var episode domain.Episode
	err := r.db.Where("version_id = ? AND created_at < ?", versionID, before).
		Order("created_at DESC, id DESC").
		First(&episode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &episode, nil
}

// Like records a like; duplicates surface as ErrAlreadyLiked
func (r *episodeRepository) Like(episodeID, userID uint64) error {
	err := r.db.Create(&domain.EpisodeLike{EpisodeID: episodeID, UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrAlreadyLiked
	}
	return err
}

// Unlike removes a like; missing likes surface as ErrNotLiked
func (r *episodeRepository) Unlike(episodeID, userID uint64) error {
	result := r.db.Where("episode_id = ? AND user_id = ?", episodeID, userID).
		Delete(&domain.EpisodeLike{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotLiked
	}
	return nil
}

// CountLikes counts likes on an episode
func (r *episodeRepository) CountLikes(episodeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.EpisodeLike{}).Where("episode_id = ?", episodeID).Count(&count).Error
	return count, err
}
