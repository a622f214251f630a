package migration

import (
	"fmt"

	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/pkg/logger"
	"gorm.io/gorm"
)

// Seed populates sample data for local development. It is a no-op when the
// users table already has rows, so it is safe to run on every boot.
func Seed(db *gorm.DB) error {
	var count int64
	db.Model(&domain.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users, err := seedUsers(tx)
		if err != nil {
			return err
		}
		orgs, err := seedOrganizations(tx, users)
		if err != nil {
			return err
		}
		return seedStories(tx, users, orgs)
	})
}

func seedUsers(tx *gorm.DB) ([]*domain.User, error) {
	var users []*domain.User

	admin := &domain.User{Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	if err := tx.Create(admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	var subadmins []*domain.User
	for i := 1; i <= 2; i++ {
		bio := fmt.Sprintf("Subadmin %d bio", i)
		sub := &domain.User{
			Username: fmt.Sprintf("subadmin%d", i),
			Email:    fmt.Sprintf("subadmin%d@example.com", i),
			Role:     domain.RoleSubadmin,
			Bio:      &bio,
		}
		if err := tx.Create(sub).Error; err != nil {
			return nil, err
		}
		subadmins = append(subadmins, sub)
		users = append(users, sub)
	}

	for i := 1; i <= 9; i++ {
		bio := fmt.Sprintf("User %d bio", i)
		u := &domain.User{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Role:     domain.RoleUser,
			Bio:      &bio,
		}
		// every third user is supervised by a subadmin
		if i%3 == 0 {
			u.AssignedToID = &subadmins[(i/3-1)%len(subadmins)].ID
		}
		if err := tx.Create(u).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	logger.Infof("seeded %d users", len(users))
	return users, nil
}

func seedOrganizations(tx *gorm.DB, users []*domain.User) ([]*domain.Organization, error) {
	var orgs []*domain.Organization
	for i := 1; i <= 3; i++ {
		org := &domain.Organization{
			Name:        fmt.Sprintf("Organization %d", i),
			Description: fmt.Sprintf("Description for Organization %d", i),
			CreatorID:   users[0].ID,
		}
		if err := tx.Create(org).Error; err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}

	// subadmins join the first organization, a few users spread across the rest
	for idx, u := range users {
		var orgID uint64
		switch {
		case u.Role == domain.RoleSubadmin:
			orgID = orgs[0].ID
		case u.Role == domain.RoleUser && idx%2 == 0:
			orgID = orgs[idx%len(orgs)].ID
		default:
			continue
		}
		m := &domain.OrganizationMember{OrganizationID: orgID, UserID: u.ID}
		if err := tx.Create(m).Error; err != nil {
			return nil, err
		}
	}

	logger.Infof("seeded %d organizations", len(orgs))
	return orgs, nil
}

func seedStories(tx *gorm.DB, users []*domain.User, orgs []*domain.Organization) error {
	categories := []string{"fantasy", "scifi", "mystery", "romance"}

	storyCount := 0
	for i, u := range users {
		if u.Role != domain.RoleUser {
			continue
		}
		category := categories[i%len(categories)]
		story := &domain.Story{
			Title:       fmt.Sprintf("Story by %s", u.Username),
			Description: fmt.Sprintf("A sample story written by %s", u.Username),
			CreatorID:   u.ID,
			Visibility:  domain.StoryPublic,
			Category:    &category,
		}
		if i%3 == 0 {
			story.OrganizationID = &orgs[i%len(orgs)].ID
		}
		if err := tx.Create(story).Error; err != nil {
			return err
		}
		storyCount++

		version := &domain.Version{StoryID: story.ID, Number: 1}
		if err := tx.Create(version).Error; err != nil {
			return err
		}

		var parentID *uint64
		for e := 1; e <= 3; e++ {
			episode := &domain.Episode{
				VersionID:       version.ID,
				Title:           fmt.Sprintf("Episode %d", e),
				Content:         fmt.Sprintf("Content of episode %d of %s's story.", e, u.Username),
				CreatorID:       u.ID,
				ParentEpisodeID: parentID,
				Status:          domain.EpisodePublic,
			}
			if err := tx.Create(episode).Error; err != nil {
				return err
			}
			parentID = &episode.ID
		}
	}

	logger.Infof("seeded %d stories with versions and episodes", storyCount)
	return nil
}
