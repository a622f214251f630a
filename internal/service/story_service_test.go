package service

import (
	"testing"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newStoryService(db *gorm.DB) StoryService {
	return NewStoryService(repository.NewStoryRepository(db), nil)
}

func TestGetStory_HiddenContentResolvesAsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newStoryService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	other := seedUser(t, db, "other", domain.RoleUser, nil)
	admin := seedUser(t, db, "admin", domain.RoleAdmin, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPrivate)

	// anonymous and unrelated viewers get not-found, never forbidden
	_, err := svc.Get(nil, story.ID)
	assert.ErrorIs(t, err, common.ErrStoryNotFound)
	_, err = svc.Get(actorFor(other), story.ID)
	assert.ErrorIs(t, err, common.ErrStoryNotFound)

	resp, err := svc.Get(actorFor(creator), story.ID)
	assert.NoError(t, err)
	assert.Equal(t, story.ID, resp.ID)

	resp, err = svc.Get(actorFor(admin), story.ID)
	assert.NoError(t, err)
	assert.Equal(t, story.ID, resp.ID)
}

func TestListPublic_ExcludesNonPublic(t *testing.T) {
	db := newTestDB(t)
	svc := newStoryService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	public := seedStory(t, db, creator.ID, domain.StoryPublic)
	seedStory(t, db, creator.ID, domain.StoryPrivate)
	seedStory(t, db, creator.ID, domain.StoryQuarantined)
	seedStory(t, db, creator.ID, domain.StoryReported)

	stories, meta, err := svc.ListPublic(1, 20)
	assert.NoError(t, err)
	assert.Len(t, stories, 1)
	assert.Equal(t, public.ID, stories[0].ID)
	assert.Equal(t, int64(1), meta.Total)
}

func TestListVisible_IncludesOwnNonPublic(t *testing.T) {
	db := newTestDB(t)
	svc := newStoryService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	other := seedUser(t, db, "other", domain.RoleUser, nil)
	seedStory(t, db, creator.ID, domain.StoryPublic)
	seedStory(t, db, creator.ID, domain.StoryPrivate)
	seedStory(t, db, other.ID, domain.StoryPrivate)

	stories, _, err := svc.ListVisible(actorFor(creator), 1, 20)
	assert.NoError(t, err)
	assert.Len(t, stories, 2)
}

func TestUpdateStory_VisibilityRules(t *testing.T) {
	db := newTestDB(t)
	svc := newStoryService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	other := seedUser(t, db, "other", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	private := domain.StoryPrivate
	resp, err := svc.Update(actorFor(creator), story.ID, &domain.UpdateStoryRequest{Visibility: &private})
	assert.NoError(t, err)
	assert.Equal(t, domain.StoryPrivate, resp.Visibility)

	// creators cannot set moderation states
	quarantined := domain.StoryQuarantined
	_, err = svc.Update(actorFor(creator), story.ID, &domain.UpdateStoryRequest{Visibility: &quarantined})
	assert.True(t, common.IsValidation(err))

	// non-creators cannot edit at all
	title := "hijacked"
	_, err = svc.Update(actorFor(other), story.ID, &domain.UpdateStoryRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrForbidden)

	// a quarantined story is locked until moderation review
	assert.NoError(t, db.Model(&domain.Story{}).Where("id = ?", story.ID).
		Update("visibility", domain.StoryQuarantined).Error)
	public := domain.StoryPublic
	_, err = svc.Update(actorFor(creator), story.ID, &domain.UpdateStoryRequest{Visibility: &public})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestStoryLikesAndFollows(t *testing.T) {
	db := newTestDB(t)
	svc := newStoryService(db)

	creator := seedUser(t, db, "creator", domain.RoleUser, nil)
	fan := seedUser(t, db, "fan", domain.RoleUser, nil)
	story := seedStory(t, db, creator.ID, domain.StoryPublic)

	assert.NoError(t, svc.Like(actorFor(fan), story.ID))
	assert.ErrorIs(t, svc.Like(actorFor(fan), story.ID), common.ErrAlreadyLiked)

	assert.NoError(t, svc.Follow(actorFor(fan), story.ID))
	assert.ErrorIs(t, svc.Follow(actorFor(fan), story.ID), common.ErrAlreadyFollowing)

	resp, err := svc.Get(actorFor(fan), story.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.LikesCount)
	assert.Equal(t, int64(1), resp.FollowersCount)

	followed, err := svc.FollowedStories(actorFor(fan))
	assert.NoError(t, err)
	assert.Len(t, followed, 1)

	assert.NoError(t, svc.Unlike(actorFor(fan), story.ID))
	assert.ErrorIs(t, svc.Unlike(actorFor(fan), story.ID), common.ErrNotLiked)
	assert.NoError(t, svc.Unfollow(actorFor(fan), story.ID))
	assert.ErrorIs(t, svc.Unfollow(actorFor(fan), story.ID), common.ErrNotFollowing)
}
