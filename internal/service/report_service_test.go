package service

import (
	"testing"
	"time"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newReportService(db *gorm.DB, thresholds ReportThresholds) ReportService {
	users := repository.NewUserRepository(db)
	return NewReportService(
		repository.NewReportRepository(db),
		repository.NewStoryRepository(db),
		repository.NewEpisodeRepository(db),
		NewAccessPolicy(users),
		thresholds,
	)
}

func TestFileStoryReport_SelfReportRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db, DefaultReportThresholds())

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	_, err := svc.FileStoryReport(actorFor(creator), story.ID, &domain.FileReportRequest{Reason: "bad"})
	assert.ErrorIs(t, err, common.ErrSelfReport)
}

func TestFileStoryReport_ReasonRequired(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db, DefaultReportThresholds())

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	reporter := seedUser(t, db, "reporter", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	_, err := svc.FileStoryReport(actorFor(reporter), story.ID, &domain.FileReportRequest{})
	assert.ErrorIs(t, err, common.ErrReasonRequired)
}

func TestFileEpisodeReport_EscalatesThroughService(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db, ReportThresholds{EpisodeQuarantine: 2, StoryReported: 5})

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	episode := seedEpisode(t, db, version.ID, creator.ID, nil, domain.EpisodePublic, base)

	r1 := seedUser(t, db, "reporter1", domain.RoleUser, nil)
	r2 := seedUser(t, db, "reporter2", domain.RoleUser, nil)

	filed, err := svc.FileEpisodeReport(actorFor(r1), episode.ID, &domain.FileReportRequest{Reason: "abuse"})
	assert.NoError(t, err)
	assert.False(t, filed.EpisodeQuarantined)

	filed, err = svc.FileEpisodeReport(actorFor(r2), episode.ID, &domain.FileReportRequest{Reason: "abuse"})
	assert.NoError(t, err)
	assert.True(t, filed.EpisodeQuarantined)
	assert.False(t, filed.StoryReported)
}

func TestNewReportService_DefaultsInvalidThresholds(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db, ReportThresholds{})

	inner, ok := svc.(*reportService)
	assert.True(t, ok)
	assert.Equal(t, 3, inner.thresholds.EpisodeQuarantine)
	assert.Equal(t, 3, inner.thresholds.StoryReported)
}

func TestListReports_AdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newReportService(db, DefaultReportThresholds())

	user := seedUser(t, db, "user", domain.RoleUser, nil)
	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)

	_, _, err := svc.ListReports(actorFor(user), "story", "", 1, 20)
	assert.ErrorIs(t, err, common.ErrForbidden)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	assert.NoError(t, db.Create(&domain.StoryReport{
		StoryID: story.ID, ReportedByID: user.ID, Reason: "spam", Status: domain.ReportPending,
	}).Error)

	reports, meta, err := svc.ListReports(actorFor(admin), "story", domain.ReportPending, 1, 20)
	assert.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, "story", reports[0].TargetType)
}
