package repository

import (
	"errors"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// StoryRepository story storage interface
type StoryRepository interface {
	FindByID(id uint64) (*domain.Story, error)
	ListPublic(page, limit int) ([]*domain.Story, int64, error)
	ListVisibleTo(userID uint64, page, limit int) ([]*domain.Story, int64, error)
	ListByVisibility(visibility string, page, limit int) ([]*domain.Story, int64, error)
	ListByCreator(creatorID uint64) ([]*domain.Story, error)
	ListFollowed(userID uint64) ([]*domain.Story, error)
	Create(story *domain.Story) error
	Update(story *domain.Story) error
	UpdateVisibility(id uint64, visibility string) error
	DeleteCascade(id uint64) error

	Like(storyID, userID uint64) error
	Unlike(storyID, userID uint64) error
	HasLiked(storyID, userID uint64) (bool, error)
	CountLikes(storyID uint64) (int64, error)
	Follow(storyID, userID uint64) error
	Unfollow(storyID, userID uint64) error
	HasFollowed(storyID, userID uint64) (bool, error)
	CountFollowers(storyID uint64) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

// FindByID retrieves a story by ID
func (r *storyRepository) FindByID(id uint64) (*domain.Story, error) {
	var story domain.Story
	if err := r.db.First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

// ListPublic retrieves paginated public stories
func (r *storyRepository) ListPublic(page, limit int) ([]*domain.Story, int64, error) {
	return r.list(r.db.Model(&domain.Story{}).Where("visibility = ?", domain.StoryPublic), page, limit)
}

// ListVisibleTo retrieves public stories plus the requester's own stories
func (r *storyRepository) ListVisibleTo(userID uint64, page, limit int) ([]*domain.Story, int64, error) {
	query := r.db.Model(&domain.Story{}).
		Where("visibility = ? OR creator_id = ?", domain.StoryPublic, userID)
	return r.list(query, page, limit)
}

// ListByVisibility retrieves paginated stories in a given visibility state
func (r *storyRepository) ListByVisibility(visibility string, page, limit int) ([]*domain.Story, int64, error) {
	return r.list(r.db.Model(&domain.Story{}).Where("visibility = ?", visibility), page, limit)
}

func (r *storyRepository) list(query *gorm.DB, page, limit int) ([]*domain.Story, int64, error) {
	var stories []*domain.Story
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&stories).Error; err != nil {
		return nil, 0, err
	}

	return stories, total, nil
}

// ListByCreator retrieves all stories owned by a creator
func (r *storyRepository) ListByCreator(creatorID uint64) ([]*domain.Story, error) {
	var stories []*domain.Story
	if err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// ListFollowed retrieves stories the user follows
func (r *storyRepository) ListFollowed(userID uint64) ([]*domain.Story, error) {
	var stories []*domain.Story
	if err := r.db.
		Joins("JOIN story_follows ON story_follows.story_id = stories.id").
		Where("story_follows.user_id = ?", userID).
		Order("stories.created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// Create inserts a new story
func (r *storyRepository) Create(story *domain.Story) error {
	return r.db.Create(story).Error
}

// Update saves story fields
func (r *storyRepository) Update(story *domain.Story) error {
	return r.db.Save(story).Error
}

// UpdateVisibility sets the visibility state only
func (r *storyRepository) UpdateVisibility(id uint64, visibility string) error {
	return r.db.Model(&domain.Story{}).Where("id = ?", id).
		Update("visibility", visibility).Error
}

// DeleteCascade hard-deletes a story and everything it transitively owns:
// versions, episodes, reports and like/follow rows.
func (r *storyRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var versionIDs []uint64
		if err := tx.Model(&domain.Version{}).Where("story_id = ?", id).
			Pluck("id", &versionIDs).Error; err != nil {
			return err
		}

		if len(versionIDs) > 0 {
			var episodeIDs []uint64
			if err := tx.Model(&domain.Episode{}).Where("version_id IN ?", versionIDs).
				Pluck("id", &episodeIDs).Error; err != nil {
				return err
			}

			if len(episodeIDs) > 0 {
				if err := tx.Where("episode_id IN ?", episodeIDs).
					Delete(&domain.EpisodeReport{}).Error; err != nil {
					return err
				}
				if err := tx.Where("episode_id IN ?", episodeIDs).
					Delete(&domain.EpisodeLike{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", episodeIDs).
					Delete(&domain.Episode{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("id IN ?", versionIDs).
				Delete(&domain.Version{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("story_id = ?", id).Delete(&domain.StoryReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&domain.StoryLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&domain.StoryFollow{}).Error; err != nil {
			return err
		}

		return tx.Delete(&domain.Story{}, id).Error
	})
}

// Like records a like; duplicate likes surface as ErrAlreadyLiked
func (r *storyRepository) Like(storyID, userID uint64) error {
	err := r.db.Create(&domain.StoryLike{StoryID: storyID, UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrAlreadyLiked
	}
	return err
}

// Unlike removes a like; missing likes surface as ErrNotLiked
func (r *storyRepository) Unlike(storyID, userID uint64) error {
	result := r.db.Where("story_id = ? AND user_id = ?", storyID, userID).
		Delete(&domain.StoryLike{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotLiked
	}
	return nil
}

// HasLiked reports whether the user already likes the story
func (r *storyRepository) HasLiked(storyID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.StoryLike{}).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountLikes counts likes on a story
func (r *storyRepository) CountLikes(storyID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.StoryLike{}).Where("story_id = ?", storyID).Count(&count).Error
	return count, err
}

// Follow records a follow; duplicates surface as ErrAlreadyFollowing
func (r *storyRepository) Follow(storyID, userID uint64) error {
	err := r.db.Create(&domain.StoryFollow{StoryID: storyID, UserID: userID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrAlreadyFollowing
	}
	return err
}

// Unfollow removes a follow; missing follows surface as ErrNotFollowing
func (r *storyRepository) Unfollow(storyID, userID uint64) error {
	result := r.db.Where("story_id = ? AND user_id = ?", storyID, userID).
		Delete(&domain.StoryFollow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFollowing
	}
	return nil
}

// HasFollowed reports whether the user already follows the story
func (r *storyRepository) HasFollowed(storyID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.StoryFollow{}).
		Where("story_id = ? AND user_id = ?", storyID, userID).
		Count(&count).Error
	return count > 0, err
}

// CountFollowers counts followers of a story
func (r *storyRepository) CountFollowers(storyID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.StoryFollow{}).Where("story_id = ?", storyID).Count(&count).Error
	return count, err
}
