package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
)

// OrganizationService admin-facing organization management
type OrganizationService interface {
	List(actor *domain.Actor, page, limit int) ([]*domain.OrganizationResponse, *common.Meta, error)
	Get(actor *domain.Actor, id uint64) (*domain.OrganizationResponse, error)
	Create(actor *domain.Actor, req *domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error)
	Update(actor *domain.Actor, id uint64, req *domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error)
	Delete(actor *domain.Actor, id uint64) error
}

type organizationService struct {
	orgs   repository.OrganizationRepository
	policy *AccessPolicy
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgs repository.OrganizationRepository, policy *AccessPolicy) OrganizationService {
	return &organizationService{orgs: orgs, policy: policy}
}

// List retrieves paginated organizations, admin only
func (s *organizationService) List(actor *domain.Actor, page, limit int) ([]*domain.OrganizationResponse, *common.Meta, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, nil, err
	}
	page, limit = normalizePage(page, limit)

	orgs, total, err := s.orgs.List(page, limit)
	if err != nil {
		return nil, nil, err
	}
	responses := make([]*domain.OrganizationResponse, len(orgs))
	for i, org := range orgs {
		resp, err := s.toResponse(org)
		if err != nil {
			return nil, nil, err
		}
		responses[i] = resp
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// Get retrieves one organization, admin only
func (s *organizationService) Get(actor *domain.Actor, id uint64) (*domain.OrganizationResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(org)
}

// Create creates an organization; duplicate names conflict. Admin only.
func (s *organizationService) Create(actor *domain.Actor, req *domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, common.ErrValidation
	}

	org := &domain.Organization{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   actor.ID,
	}
	if err := s.orgs.Create(org); err != nil {
		return nil, err
	}
	return s.toResponse(org)
}

// Update edits an organization, admin only
func (s *organizationService) Update(actor *domain.Actor, id uint64, req *domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		org.Name = req.Name
	}
	org.Description = req.Description
	if err := s.orgs.Update(org); err != nil {
		return nil, err
	}
	return s.toResponse(org)
}

// Delete removes an organization and its memberships, admin only
func (s *organizationService) Delete(actor *domain.Actor, id uint64) error {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.orgs.FindByID(id); err != nil {
		return err
	}
	return s.orgs.Delete(id)
}

func (s *organizationService) toResponse(org *domain.Organization) (*domain.OrganizationResponse, error) {
	resp := org.ToResponse()
	count, err := s.orgs.CountMembers(org.ID)
	if err != nil {
		return nil, err
	}
	resp.MemberCount = count
	return resp, nil
}
