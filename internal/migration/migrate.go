package migration

import (
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all platform tables.
// Creates missing tables and columns, never drops anything.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Organization{},
		&domain.OrganizationMember{},
		&domain.Story{},
		&domain.StoryLike{},
		&domain.StoryFollow{},
		&domain.Version{},
		&domain.Episode{},
		&domain.EpisodeLike{},
		&domain.StoryReport{},
		&domain.EpisodeReport{},
	)
}
