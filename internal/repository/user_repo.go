package repository

import (
	"errors"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user storage interface (identity fields only; credential
// handling lives in the external identity service)
type UserRepository interface {
	FindByID(id uint64) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	List(page, limit int) ([]*domain.User, int64, error)
	ListByOrganizations(orgIDs []uint64) ([]*domain.User, error)
	ListSupervised(subadminID uint64) ([]*domain.User, error)
	Create(user *domain.User) error
	UpdateRole(id uint64, role string) error
	UpdateAssignedTo(id uint64, assignedToID *uint64) error
	OrgIDs(userID uint64) ([]uint64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves a user by username
func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List retrieves paginated users
func (r *userRepository) List(page, limit int) ([]*domain.User, int64, error) {
	var users []*domain.User
	var total int64

	if err := r.db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := r.db.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListByOrganizations retrieves distinct users belonging to any of the organizations
func (r *userRepository) ListByOrganizations(orgIDs []uint64) ([]*domain.User, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	var users []*domain.User
	err := r.db.Distinct("users.*").
		Joins("JOIN organization_members ON organization_members.user_id = users.id").
		Where("organization_members.organization_id IN ?", orgIDs).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}

// ListSupervised retrieves users assigned to the given subadmin
func (r *userRepository) ListSupervised(subadminID uint64) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.Where("assigned_to_id = ?", subadminID).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// Create inserts a new user
func (r *userRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict
		}
		return err
	}
	return nil
}

// UpdateRole sets the role only
func (r *userRepository) UpdateRole(id uint64, role string) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Update("role", role).Error
}

// UpdateAssignedTo sets or clears the supervising subadmin
func (r *userRepository) UpdateAssignedTo(id uint64, assignedToID *uint64) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Update("assigned_to_id", assignedToID).Error
}

// OrgIDs returns the IDs of organizations the user belongs to
func (r *userRepository) OrgIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&domain.OrganizationMember{}).
		Where("user_id = ?", userID).
		Pluck("organization_id", &ids).Error
	return ids, err
}
