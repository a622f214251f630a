package service

import (
	"testing"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(id uint64) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(username string) (*domain.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(page, limit int) ([]*domain.User, int64, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) ListByOrganizations(orgIDs []uint64) ([]*domain.User, error) {
	args := m.Called(orgIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepo) ListSupervised(subadminID uint64) ([]*domain.User, error) {
	args := m.Called(subadminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepo) Create(user *domain.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) UpdateRole(id uint64, role string) error {
	return m.Called(id, role).Error(0)
}

func (m *mockUserRepo) UpdateAssignedTo(id uint64, assignedToID *uint64) error {
	return m.Called(id, assignedToID).Error(0)
}

func (m *mockUserRepo) OrgIDs(userID uint64) ([]uint64, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

// --- Tests ---

func adminActor() *domain.Actor    { return &domain.Actor{ID: 1, Role: domain.RoleAdmin} }
func subadminActor() *domain.Actor { return &domain.Actor{ID: 2, Role: domain.RoleSubadmin} }
func userActor() *domain.Actor     { return &domain.Actor{ID: 3, Role: domain.RoleUser} }

func TestRequireAdmin(t *testing.T) {
	policy := NewAccessPolicy(new(mockUserRepo))

	assert.NoError(t, policy.RequireAdmin(adminActor()))
	assert.ErrorIs(t, policy.RequireAdmin(subadminActor()), common.ErrForbidden)
	assert.ErrorIs(t, policy.RequireAdmin(userActor()), common.ErrForbidden)
	assert.ErrorIs(t, policy.RequireAdmin(nil), common.ErrForbidden)
}

func TestRequireCreator(t *testing.T) {
	policy := NewAccessPolicy(new(mockUserRepo))

	assert.NoError(t, policy.RequireCreator(userActor(), 3))
	assert.ErrorIs(t, policy.RequireCreator(userActor(), 4), common.ErrForbidden)
	// admins are not creators; ownership checks stay literal
	assert.ErrorIs(t, policy.RequireCreator(adminActor(), 3), common.ErrForbidden)
}

func TestSupervises(t *testing.T) {
	repo := new(mockUserRepo)
	policy := NewAccessPolicy(repo)

	subID := uint64(2)
	repo.On("FindByID", uint64(10)).Return(&domain.User{ID: 10, AssignedToID: &subID}, nil)
	repo.On("FindByID", uint64(11)).Return(&domain.User{ID: 11}, nil)

	ok, err := policy.Supervises(subadminActor(), 10)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = policy.Supervises(subadminActor(), 11)
	assert.NoError(t, err)
	assert.False(t, ok)

	// only subadmins supervise; no lookup happens for other roles
	ok, err = policy.Supervises(adminActor(), 10)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireModerator(t *testing.T) {
	repo := new(mockUserRepo)
	policy := NewAccessPolicy(repo)

	subID := uint64(2)
	repo.On("FindByID", uint64(10)).Return(&domain.User{ID: 10, AssignedToID: &subID}, nil)
	repo.On("FindByID", uint64(11)).Return(&domain.User{ID: 11}, nil)

	assert.NoError(t, policy.RequireModerator(adminActor(), 11))
	assert.NoError(t, policy.RequireModerator(subadminActor(), 10))
	assert.ErrorIs(t, policy.RequireModerator(subadminActor(), 11), common.ErrForbidden)
	assert.ErrorIs(t, policy.RequireModerator(userActor(), 10), common.ErrForbidden)
}

func TestRequireUserManager(t *testing.T) {
	repo := new(mockUserRepo)
	policy := NewAccessPolicy(repo)

	subID := uint64(2)
	repo.On("FindByID", uint64(10)).Return(&domain.User{ID: 10, AssignedToID: &subID}, nil)
	repo.On("FindByID", uint64(11)).Return(&domain.User{ID: 11}, nil)
	repo.On("OrgIDs", uint64(11)).Return([]uint64{7}, nil)
	repo.On("FindByID", uint64(12)).Return(&domain.User{ID: 12}, nil)
	repo.On("OrgIDs", uint64(12)).Return([]uint64{9}, nil)

	assert.NoError(t, policy.RequireUserManager(adminActor(), 12))

	// supervised user
	assert.NoError(t, policy.RequireUserManager(subadminActor(), 10))

	// shared organization
	orgScoped := subadminActor()
	orgScoped.OrgIDs = []uint64{7}
	assert.NoError(t, policy.RequireUserManager(orgScoped, 11))

	// neither supervised nor sharing an org
	assert.ErrorIs(t, policy.RequireUserManager(orgScoped, 12), common.ErrForbidden)

	assert.ErrorIs(t, policy.RequireUserManager(userActor(), 10), common.ErrForbidden)
}

func TestRoleAssignable(t *testing.T) {
	policy := NewAccessPolicy(new(mockUserRepo))

	assert.True(t, policy.RoleAssignable(adminActor(), domain.RoleUser))
	assert.True(t, policy.RoleAssignable(adminActor(), domain.RoleSubadmin))
	assert.True(t, policy.RoleAssignable(adminActor(), domain.RoleAdmin))
	assert.False(t, policy.RoleAssignable(adminActor(), "owner"))

	assert.True(t, policy.RoleAssignable(subadminActor(), domain.RoleUser))
	assert.False(t, policy.RoleAssignable(subadminActor(), domain.RoleSubadmin))
	assert.False(t, policy.RoleAssignable(subadminActor(), domain.RoleAdmin))

	assert.False(t, policy.RoleAssignable(userActor(), domain.RoleUser))
	assert.False(t, policy.RoleAssignable(nil, domain.RoleUser))
}
