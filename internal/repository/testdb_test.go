package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory SQLite database. The name is unique per
// call so parallel tests never share state; cache=shared keeps every pooled
// connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// keep the memory database alive for the whole test
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

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
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

func seedEpisode(t *testing.T, db *gorm.DB, versionID, creatorID uint64, parentID *uint64, status string) *domain.Episode {
	t.Helper()
	episode := &domain.Episode{
		VersionID:       versionID,
		Title:           "test episode",
		Content:         "content",
		CreatorID:       creatorID,
		ParentEpisodeID: parentID,
		Status:          status,
	}
	if err := db.Create(episode).Error; err != nil {
		t.Fatalf("seed episode: %v", err)
	}
	return episode
}
