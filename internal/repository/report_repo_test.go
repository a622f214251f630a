package repository

import (
	"testing"

	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFileEpisodeReport_QuarantinesAtThreshold(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	story := seedStory(t, db, 1, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	episode := seedEpisode(t, db, version.ID, 1, nil, domain.EpisodePublic)

	for i := uint64(2); i <= 3; i++ {
		result, err := repo.FileEpisodeReport(&domain.EpisodeReport{
			EpisodeID:    episode.ID,
			ReportedByID: i,
			Reason:       "offensive",
		}, 3, 3)
		assert.NoError(t, err)
		assert.False(t, result.EpisodeQuarantined)
	}

	// third report crosses the threshold
	result, err := repo.FileEpisodeReport(&domain.EpisodeReport{
		EpisodeID:    episode.ID,
		ReportedByID: 4,
		Reason:       "offensive",
	}, 3, 3)
	assert.NoError(t, err)
	assert.True(t, result.EpisodeQuarantined)
	assert.True(t, result.StoryReported)

	var got domain.Episode
	assert.NoError(t, db.First(&got, episode.ID).Error)
	assert.Equal(t, domain.EpisodeQuarantined, got.Status)

	var gotStory domain.Story
	assert.NoError(t, db.First(&gotStory, story.ID).Error)
	assert.Equal(t, domain.StoryReported, gotStory.Visibility)
}

func TestFileStoryReport_MixedCountsReachStoryThreshold(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	story := seedStory(t, db, 1, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	episode := seedEpisode(t, db, version.ID, 1, nil, domain.EpisodePublic)

	// two pending episode reports, below the episode threshold of 5
	for i := uint64(2); i <= 3; i++ {
		_, err := repo.FileEpisodeReport(&domain.EpisodeReport{
			EpisodeID:    episode.ID,
			ReportedByID: i,
			Reason:       "spam",
		}, 5, 3)
		assert.NoError(t, err)
	}

	// one direct story report tips the combined total over 3
	result, err := repo.FileStoryReport(&domain.StoryReport{
		StoryID:      story.ID,
		ReportedByID: 4,
		Reason:       "spam",
	}, 3)
	assert.NoError(t, err)
	assert.True(t, result.StoryReported)

	var gotEpisode domain.Episode
	assert.NoError(t, db.First(&gotEpisode, episode.ID).Error)
	assert.Equal(t, domain.EpisodePublic, gotEpisode.Status)
}

func TestRecomputeEscalation_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	story := seedStory(t, db, 1, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	episode := seedEpisode(t, db, version.ID, 1, nil, domain.EpisodePublic)

	for i := uint64(2); i <= 4; i++ {
		_, err := repo.FileEpisodeReport(&domain.EpisodeReport{
			EpisodeID:    episode.ID,
			ReportedByID: i,
			Reason:       "abuse",
		}, 3, 3)
		assert.NoError(t, err)
	}

	// already quarantined; further recomputes report no change
	escalated, err := repo.RecomputeEpisodeEscalation(episode.ID, 3)
	assert.NoError(t, err)
	assert.False(t, escalated)

	escalated, err = repo.RecomputeStoryEscalation(story.ID, 3)
	assert.NoError(t, err)
	assert.False(t, escalated)
}

func TestRecomputeEscalation_CountsOnlyPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	story := seedStory(t, db, 1, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	episode := seedEpisode(t, db, version.ID, 1, nil, domain.EpisodePublic)

	for i := uint64(2); i <= 4; i++ {
		report := &domain.EpisodeReport{
			EpisodeID:    episode.ID,
			ReportedByID: i,
			Reason:       "abuse",
			Status:       domain.ReportRejected,
		}
		assert.NoError(t, db.Create(report).Error)
	}

	escalated, err := repo.RecomputeEpisodeEscalation(episode.ID, 3)
	assert.NoError(t, err)
	assert.False(t, escalated)

	var got domain.Episode
	assert.NoError(t, db.First(&got, episode.ID).Error)
	assert.Equal(t, domain.EpisodePublic, got.Status)
}

func TestBulkUpdateEpisodeReportStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewReportRepository(db)

	story := seedStory(t, db, 1, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	episode := seedEpisode(t, db, version.ID, 1, nil, domain.EpisodePublic)

	for i := uint64(2); i <= 3; i++ {
		assert.NoError(t, db.Create(&domain.EpisodeReport{
			EpisodeID:    episode.ID,
			ReportedByID: i,
			Reason:       "abuse",
			Status:       domain.ReportPending,
		}).Error)
	}

	assert.NoError(t, repo.BulkUpdateEpisodeReportStatus(episode.ID, domain.ReportPending, domain.ReportApproved))

	count, err := repo.CountPendingEpisodeReports(episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	reports, err := repo.ListEpisodeReports(episode.ID)
	assert.NoError(t, err)
	assert.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, domain.ReportApproved, r.Status)
	}
}
