package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is the MySQL error number for unique-key violations.
// GORM translates most of these to gorm.ErrDuplicatedKey, the raw check
// covers drivers/paths where translation is off.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// VersionRepository version storage interface
type VersionRepository interface {
	FindByID(id uint64) (*domain.Version, error)
	ListByStory(storyID uint64) ([]*domain.Version, error)
	MaxNumber(storyID uint64) (uint, error)
	Create(version *domain.Version) error
	// CreateWithEpisode inserts a version together with its first episode
	// as one transaction. A reader must never observe the version without
	// the episode.
	CreateWithEpisode(version *domain.Version, episode *domain.Episode) error
	Next(storyID uint64, number uint) (*domain.Version, error)
	Previous(storyID uint64, number uint) (*domain.Version, error)
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

// FindByID retrieves a version by ID
func (r *versionRepository) FindByID(id uint64) (*domain.Version, error) {
	var version domain.Version
	if err := r.db.First(&version, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

// ListByStory retrieves all versions of a story in numeric order
func (r *versionRepository) ListByStory(storyID uint64) ([]*domain.Version, error) {
	var versions []*domain.Version
	if err := r.db.Where("story_id = ?", storyID).
		Order("version_number ASC").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// MaxNumber returns the highest version number within a story, 0 when none exist
func (r *versionRepository) MaxNumber(storyID uint64) (uint, error) {
	var max *uint
	err := r.db.Model(&domain.Version{}).
		Where("story_id = ?", storyID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// Create inserts a version; duplicate numbers surface as ErrVersionConflict
func (r *versionRepository) Create(version *domain.Version) error {
	if err := r.db.Create(version).Error; err != nil {
		if isDuplicateKey(err) {
			return common.ErrVersionConflict
		}
		return err
	}
	return nil
}

// CreateWithEpisode inserts a version and its first episode atomically
func (r *versionRepository) CreateWithEpisode(version *domain.Version, episode *domain.Episode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			if isDuplicateKey(err) {
				return common.ErrVersionConflict
			}
			return err
		}
		episode.VersionID = version.ID
		return tx.Create(episode).Error
	})
}

// Next finds the version with the smallest number greater than the given one
func (r *versionRepository) Next(storyID uint64, number uint) (*domain.Version, error) {
	var version domain.Version
	err := r.db.Where("story_id = ? AND version_number > ?", storyID, number).
		Order("version_number ASC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

// Previous finds the version with the largest number smaller than the given one
func (r *versionRepository) Previous(storyID uint64, number uint) (*domain.Version, error) {
	var version domain.Version
	err := r.db.Where("story_id = ? AND version_number < ?", storyID, number).
		Order("version_number DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}
