package repository

import (
	"errors"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
)

// OrganizationRepository organization storage interface
type OrganizationRepository interface {
	FindByID(id uint64) (*domain.Organization, error)
	List(page, limit int) ([]*domain.Organization, int64, error)
	Create(org *domain.Organization) error
	Update(org *domain.Organization) error
	Delete(id uint64) error
	AddMember(orgID, userID uint64) error
	RemoveMember(orgID, userID uint64) error
	CountMembers(orgID uint64) (int64, error)
	IsMember(orgID, userID uint64) (bool, error)
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

// FindByID retrieves an organization by ID
func (r *organizationRepository) FindByID(id uint64) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

// List retrieves paginated organizations
func (r *organizationRepository) List(page, limit int) ([]*domain.Organization, int64, error) {
	var orgs []*domain.Organization
	var total int64

	if err := r.db.Model(&domain.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := r.db.Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

// Create inserts an organization; duplicate names surface as ErrDuplicateOrganization
func (r *organizationRepository) Create(org *domain.Organization) error {
	if err := r.db.Create(org).Error; err != nil {
		if isDuplicateKey(err) {
			return common.ErrDuplicateOrganization
		}
		return err
	}
	return nil
}

// Update saves organization fields
func (r *organizationRepository) Update(org *domain.Organization) error {
	if err := r.db.Save(org).Error; err != nil {
		if isDuplicateKey(err) {
			return common.ErrDuplicateOrganization
		}
		return err
	}
	return nil
}

// Delete removes an organization and its membership rows
func (r *organizationRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ?", id).
			Delete(&domain.OrganizationMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Organization{}, id).Error
	})
}

// AddMember adds a user to an organization; re-adding is a no-op
func (r *organizationRepository) AddMember(orgID, userID uint64) error {
	err := r.db.Create(&domain.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// RemoveMember removes a user from an organization
func (r *organizationRepository) RemoveMember(orgID, userID uint64) error {
	return r.db.Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&domain.OrganizationMember{}).Error
}

// CountMembers counts users in an organization
func (r *organizationRepository) CountMembers(orgID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.OrganizationMember{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}

// IsMember reports whether a user belongs to an organization
func (r *organizationRepository) IsMember(orgID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	return count > 0, err
}
