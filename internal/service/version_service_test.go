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

func newVersionService(db *gorm.DB) VersionService {
	users := repository.NewUserRepository(db)
	return NewVersionService(
		repository.NewStoryRepository(db),
		repository.NewVersionRepository(db),
		repository.NewEpisodeRepository(db),
		NewAccessPolicy(users),
	)
}

func TestCreateVersion_AutoIncrement(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	seedVersion(t, db, story.ID, 1)

	resp, err := svc.CreateVersion(actorFor(creator), &domain.CreateVersionRequest{StoryID: story.ID})
	assert.NoError(t, err)
	assert.Equal(t, uint(2), resp.Number)
	assert.Equal(t, "00002", resp.DisplayNumber)
}

func TestCreateVersion_DuplicateNumberConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	seedVersion(t, db, story.ID, 1)

	one := uint(1)
	_, err := svc.CreateVersion(actorFor(creator), &domain.CreateVersionRequest{StoryID: story.ID, Number: &one})
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	zero := uint(0)
	_, err = svc.CreateVersion(actorFor(creator), &domain.CreateVersionRequest{StoryID: story.ID, Number: &zero})
	assert.True(t, common.IsValidation(err))
}

func TestCreateVersion_NonCreatorForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	other := seedUser(t, db, "other", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	_, err := svc.CreateVersion(actorFor(other), &domain.CreateVersionRequest{StoryID: story.ID})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateEpisode_ParentMustBeInPriorVersion(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	v1 := seedVersion(t, db, story.ID, 1)
	v2 := seedVersion(t, db, story.ID, 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e1 := seedEpisode(t, db, v1.ID, creator.ID, nil, domain.EpisodePublic, base)
	e2 := seedEpisode(t, db, v2.ID, creator.ID, nil, domain.EpisodePublic, base.Add(time.Hour))

	// parent in a prior version is valid
	resp, err := svc.CreateEpisode(actorFor(creator), &domain.CreateEpisodeRequest{
		VersionID:       v2.ID,
		Title:           "continuation",
		Content:         "text",
		ParentEpisodeID: &e1.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, e1.ID, *resp.ParentEpisodeID)

	// parent inside the same version is not a lineage link
	_, err = svc.CreateEpisode(actorFor(creator), &domain.CreateEpisodeRequest{
		VersionID:       v2.ID,
		Title:           "sibling",
		Content:         "text",
		ParentEpisodeID: &e2.ID,
	})
	assert.ErrorIs(t, err, common.ErrInvalidParent)

	// parent in a later version would point the chain backwards
	_, err = svc.CreateEpisode(actorFor(creator), &domain.CreateEpisodeRequest{
		VersionID:       v1.ID,
		Title:           "backwards",
		Content:         "text",
		ParentEpisodeID: &e2.ID,
	})
	assert.ErrorIs(t, err, common.ErrInvalidParent)
}

func TestCreateEpisode_StoryOnlyCreatesFirstVersion(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	resp, err := svc.CreateEpisode(actorFor(creator), &domain.CreateEpisodeRequest{
		StoryID: story.ID,
		Title:   "opening",
		Content: "text",
	})
	assert.NoError(t, err)

	var version domain.Version
	assert.NoError(t, db.First(&version, resp.VersionID).Error)
	assert.Equal(t, uint(1), version.Number)
	assert.Equal(t, story.ID, version.StoryID)
}

func TestBranchEpisode_BranchesFromChainTip(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	v1 := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e1 := seedEpisode(t, db, v1.ID, creator.ID, nil, domain.EpisodePublic, base)

	first, err := svc.BranchEpisode(actorFor(creator), e1.ID, &domain.BranchEpisodeRequest{
		Title: "branch one", Content: "text",
	})
	assert.NoError(t, err)
	assert.Equal(t, e1.ID, *first.ParentEpisodeID)

	// branching from e1 again must continue from the tip, not from e1
	second, err := svc.BranchEpisode(actorFor(creator), e1.ID, &domain.BranchEpisodeRequest{
		Title: "branch two", Content: "text",
	})
	assert.NoError(t, err)
	assert.Equal(t, first.ID, *second.ParentEpisodeID)

	var v2, v3 domain.Version
	assert.NoError(t, db.First(&v2, first.VersionID).Error)
	assert.NoError(t, db.First(&v3, second.VersionID).Error)
	assert.Equal(t, uint(2), v2.Number)
	assert.Equal(t, uint(3), v3.Number)
}

func TestLineageTip_FollowsChildChain(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	v1 := seedVersion(t, db, story.ID, 1)
	e1 := seedEpisode(t, db, v1.ID, creator.ID, nil, domain.EpisodePublic, base)
	v2 := seedVersion(t, db, story.ID, 2)
	e2 := seedEpisode(t, db, v2.ID, creator.ID, &e1.ID, domain.EpisodePublic, base.Add(time.Hour))
	v3 := seedVersion(t, db, story.ID, 3)
	e3 := seedEpisode(t, db, v3.ID, creator.ID, &e2.ID, domain.EpisodePublic, base.Add(2*time.Hour))

	tip, err := svc.LineageTip(e1.ID)
	assert.NoError(t, err)
	assert.Equal(t, e3.ID, tip.ID)

	// the tip of the tip is itself
	tip, err = svc.LineageTip(e3.ID)
	assert.NoError(t, err)
	assert.Equal(t, e3.ID, tip.ID)
}

func TestVersionNavigation(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	v1 := seedVersion(t, db, story.ID, 1)
	v2 := seedVersion(t, db, story.ID, 2)
	v3 := seedVersion(t, db, story.ID, 3)

	next, err := svc.NextVersion(v1.ID)
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, next.ID)

	prev, err := svc.PreviousVersion(v3.ID)
	assert.NoError(t, err)
	assert.Equal(t, v2.ID, prev.ID)

	// boundaries return nil, not an error
	next, err = svc.NextVersion(v3.ID)
	assert.NoError(t, err)
	assert.Nil(t, next)

	prev, err = svc.PreviousVersion(v1.ID)
	assert.NoError(t, err)
	assert.Nil(t, prev)

	middle, err := svc.GetVersion(v2.ID)
	assert.NoError(t, err)
	assert.True(t, middle.HasNext)
	assert.True(t, middle.HasPrevious)
	assert.Equal(t, v3.ID, *middle.NextID)
	assert.Equal(t, v1.ID, *middle.PreviousID)
}

func TestEpisodeNavigation_WithinVersion(t *testing.T) {
	db := newTestDB(t)
	svc := newVersionService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)
	v1 := seedVersion(t, db, story.ID, 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e1 := seedEpisode(t, db, v1.ID, creator.ID, nil, domain.EpisodePublic, base)
	e2 := seedEpisode(t, db, v1.ID, creator.ID, nil, domain.EpisodePublic, base.Add(time.Minute))

	next, err := svc.NextEpisode(e1.ID)
	assert.NoError(t, err)
	assert.Equal(t, e2.ID, next.ID)

	prev, err := svc.PreviousEpisode(e2.ID)
	assert.NoError(t, err)
	assert.Equal(t, e1.ID, prev.ID)

	next, err = svc.NextEpisode(e2.ID)
	assert.NoError(t, err)
	assert.Nil(t, next)
}
