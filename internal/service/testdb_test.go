package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svcdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
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
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string, assignedTo *uint64) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		AssignedToID: assignedTo,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedStory(t *testing.T, db *gorm.DB, creatorID uint64, visibility string) *domain.Story {
	t.Helper()
	story := &domain.Story{Title: "test story", CreatorID: creatorID, Visibility: visibility}
	if err := db.Create(story).Error; err != nil {
		t.Fatalf("seed story: %v", err)
	}
	return story
}

func seedVersion(t *testing.T, db *gorm.DB, storyID uint64, number uint) *domain.Version {
	t.Helper()
	version := &domain.Version{StoryID: storyID, Number: number}
	if err := db.Create(version).Error; err != nil {
		t.Fatalf("seed version: %v", err)
	}
	return version
}

func seedEpisode(t *testing.T, db *gorm.DB, versionID, creatorID uint64, parentID *uint64, status string, createdAt time.Time) *domain.Episode {
	t.Helper()
	episode := &domain.Episode{
		VersionID:       versionID,
		Title:           "test episode",
		Content:         "content",
		CreatorID:       creatorID,
		ParentEpisodeID: parentID,
		Status:          status,
		CreatedAt:       createdAt,
	}
	if err := db.Create(episode).Error; err != nil {
		t.Fatalf("seed episode: %v", err)
	}
	return episode
}

func actorFor(user *domain.User) *domain.Actor {
	return &domain.Actor{ID: user.ID, Role: user.Role, AssignedToID: user.AssignedToID}
}
