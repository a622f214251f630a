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

func newModerationService(db *gorm.DB) ModerationService {
	users := repository.NewUserRepository(db)
	return NewModerationService(
		db,
		repository.NewStoryRepository(db),
		repository.NewEpisodeRepository(db),
		repository.NewReportRepository(db),
		NewAccessPolicy(users),
	)
}

func TestApproveStory_RestoresAndRejectsReports(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryReported)
	for i := uint64(10); i < 13; i++ {
		assert.NoError(t, db.Create(&domain.StoryReport{
			StoryID: story.ID, ReportedByID: i, Reason: "spam", Status: domain.ReportPending,
		}).Error)
	}

	resp, err := svc.ApproveStory(actorFor(admin), story.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StoryPublic, resp.Visibility)

	var pending int64
	db.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", story.ID, domain.ReportPending).
		Count(&pending)
	assert.Equal(t, int64(0), pending)

	var rejected int64
	db.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", story.ID, domain.ReportRejected).
		Count(&rejected)
	assert.Equal(t, int64(3), rejected)
}

func TestRejectStory_HidesAndApprovesReports(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryQuarantined)
	assert.NoError(t, db.Create(&domain.StoryReport{
		StoryID: story.ID, ReportedByID: 9, Reason: "spam", Status: domain.ReportPending,
	}).Error)

	resp, err := svc.RejectStory(actorFor(admin), story.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StoryPrivate, resp.Visibility)

	var approved int64
	db.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", story.ID, domain.ReportApproved).
		Count(&approved)
	assert.Equal(t, int64(1), approved)
}

func TestApproveStory_RequiresFlaggedState(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	_, err := svc.ApproveStory(actorFor(admin), story.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestChangeStoryVisibility_SubadminSupervisionScope(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	subadmin := seedUser(t, db, "subadmin", domain.RoleSubadmin, nil)
	supervised := seedUser(t, db, "supervised", domain.RoleUser, &subadmin.ID)
	unrelated := seedUser(t, db, "unrelated", domain.RoleUser, nil)

	ownStory := seedStory(t, db, supervised.ID, domain.StoryPublic)
	otherStory := seedStory(t, db, unrelated.ID, domain.StoryPublic)

	resp, err := svc.ChangeStoryVisibility(actorFor(subadmin), ownStory.ID, domain.StoryQuarantined)
	assert.NoError(t, err)
	assert.Equal(t, domain.StoryQuarantined, resp.Visibility)

	_, err = svc.ChangeStoryVisibility(actorFor(subadmin), otherStory.ID, domain.StoryQuarantined)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// reported is an escalation outcome, never set directly
	_, err = svc.ChangeStoryVisibility(actorFor(subadmin), ownStory.ID, domain.StoryReported)
	assert.True(t, common.IsValidation(err))
}

func TestEpisodeModerationRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	episode := seedEpisode(t, db, version.ID, creator.ID, nil, domain.EpisodeQuarantined, base)
	assert.NoError(t, db.Create(&domain.EpisodeReport{
		EpisodeID: episode.ID, ReportedByID: 9, Reason: "abuse", Status: domain.ReportApproved,
	}).Error)

	// creator resubmits; previously approved reports reopen
	resp, err := svc.SubmitEpisodeForApproval(actorFor(creator), episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.EpisodePending, resp.Status)

	var pending int64
	db.Model(&domain.EpisodeReport{}).
		Where("episode_id = ? AND status = ?", episode.ID, domain.ReportPending).
		Count(&pending)
	assert.Equal(t, int64(1), pending)

	// admin rejects; back to quarantine, reports upheld
	resp, err = svc.RejectEpisode(actorFor(admin), episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.EpisodeQuarantined, resp.Status)

	// second submission then approval clears the log entirely
	_, err = svc.SubmitEpisodeForApproval(actorFor(creator), episode.ID)
	assert.NoError(t, err)
	resp, err = svc.ApproveEpisode(actorFor(admin), episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.EpisodePublic, resp.Status)

	var remaining int64
	db.Model(&domain.EpisodeReport{}).Where("episode_id = ?", episode.ID).Count(&remaining)
	assert.Equal(t, int64(0), remaining)
}

func TestSubmitEpisodeForApproval_CreatorOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	other := seedUser(t, db, "other", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	episode := seedEpisode(t, db, version.ID, creator.ID, nil, domain.EpisodeQuarantined, base)

	_, err := svc.SubmitEpisodeForApproval(actorFor(other), episode.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestSoftDeleteEpisode_AndUndeleteViaApprove(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	episode := seedEpisode(t, db, version.ID, creator.ID, nil, domain.EpisodePublic, base)

	resp, err := svc.SoftDeleteEpisode(actorFor(creator), episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.EpisodeDeleted, resp.Status)

	// deleting twice is not a transition
	_, err = svc.SoftDeleteEpisode(actorFor(creator), episode.ID)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	// approve brings a deleted episode back as public
	resp, err = svc.ApproveEpisode(actorFor(admin), episode.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.EpisodePublic, resp.Status)
}

func TestPermanentlyDeleteStory_Cascades(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)

	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	version := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	episode := seedEpisode(t, db, version.ID, creator.ID, nil, domain.EpisodePublic, base)
	assert.NoError(t, db.Create(&domain.EpisodeReport{
		EpisodeID: episode.ID, ReportedByID: 9, Reason: "abuse", Status: domain.ReportPending,
	}).Error)

	assert.NoError(t, svc.PermanentlyDeleteStory(actorFor(admin), story.ID))

	var stories, versions, episodes, reports int64
	db.Model(&domain.Story{}).Count(&stories)
	db.Model(&domain.Version{}).Count(&versions)
	db.Model(&domain.Episode{}).Count(&episodes)
	db.Model(&domain.EpisodeReport{}).Count(&reports)
	assert.Equal(t, int64(0), stories)
	assert.Equal(t, int64(0), versions)
	assert.Equal(t, int64(0), episodes)
	assert.Equal(t, int64(0), reports)

	// non-admin cannot hard delete
	other := seedStory(t, db, creator.ID, domain.StoryPublic)
	err := svc.PermanentlyDeleteStory(actorFor(creator), other.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
