package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
)

// MemberService staff-facing user management: directories, role
// assignment, supervision links and organization membership
type MemberService interface {
	ListUsers(actor *domain.Actor, page, limit int) ([]*domain.UserResponse, *common.Meta, error)
	ListOrgUsers(actor *domain.Actor) ([]*domain.UserResponse, error)
	CreateUser(actor *domain.Actor, req *domain.CreateUserRequest) (*domain.UserResponse, error)
	AssignRole(actor *domain.Actor, userID uint64, req *domain.AssignRoleRequest) (*domain.UserResponse, error)
	MakeSubadmin(actor *domain.Actor, userID, orgID uint64) (*domain.UserResponse, error)
	AddUserToOrganization(actor *domain.Actor, userID uint64, orgID *uint64) error
}

type memberService struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	policy *AccessPolicy
}

// NewMemberService creates a new MemberService
func NewMemberService(
	users repository.UserRepository,
	orgs repository.OrganizationRepository,
	policy *AccessPolicy,
) MemberService {
	return &memberService{users: users, orgs: orgs, policy: policy}
}

// ListUsers retrieves the full user directory, admin only
func (s *memberService) ListUsers(actor *domain.Actor, page, limit int) ([]*domain.UserResponse, *common.Meta, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, nil, err
	}
	page, limit = normalizePage(page, limit)

	users, total, err := s.users.List(page, limit)
	if err != nil {
		return nil, nil, err
	}
	responses := make([]*domain.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// ListOrgUsers retrieves users sharing an organization with the actor.
// Requires an org-scoped subadmin or an admin.
func (s *memberService) ListOrgUsers(actor *domain.Actor) ([]*domain.UserResponse, error) {
	if !s.policy.IsAdmin(actor) {
		if !actor.IsSubadmin() || !s.policy.IsOrgScoped(actor) {
			return nil, common.ErrForbidden
		}
	}

	users, err := s.users.ListByOrganizations(actor.OrgIDs)
	if err != nil {
		return nil, err
	}
	responses := make([]*domain.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

// CreateUser creates an account on behalf of a staff member. Subadmins can
// only mint regular users, which are auto-assigned to their supervision.
func (s *memberService) CreateUser(actor *domain.Actor, req *domain.CreateUserRequest) (*domain.UserResponse, error) {
	if err := s.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !s.policy.RoleAssignable(actor, role) {
		return nil, common.ErrForbidden
	}

	user := &domain.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     role,
	}
	if actor.IsSubadmin() {
		assignedTo := actor.ID
		user.AssignedToID = &assignedTo
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// AssignRole updates a user's role and/or supervision link, admin only
func (s *memberService) AssignRole(actor *domain.Actor, userID uint64, req *domain.AssignRoleRequest) (*domain.UserResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !s.policy.RoleAssignable(actor, *req.Role) {
			return nil, common.ErrValidation
		}
		if err := s.users.UpdateRole(user.ID, *req.Role); err != nil {
			return nil, err
		}
		user.Role = *req.Role
	}
	if req.AssignedToID != nil {
		supervisor, err := s.users.FindByID(*req.AssignedToID)
		if err != nil {
			return nil, err
		}
		if supervisor.Role != domain.RoleSubadmin {
			return nil, common.ErrValidation
		}
		if err := s.users.UpdateAssignedTo(user.ID, req.AssignedToID); err != nil {
			return nil, err
		}
		user.AssignedToID = req.AssignedToID
	}
	return user.ToResponse(), nil
}

// MakeSubadmin promotes a user to subadmin within an organization, admin only
func (s *memberService) MakeSubadmin(actor *domain.Actor, userID, orgID uint64) (*domain.UserResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.orgs.FindByID(orgID); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(user.ID, domain.RoleSubadmin); err != nil {
		return nil, err
	}
	if err := s.orgs.AddMember(orgID, user.ID); err != nil {
		return nil, err
	}
	user.Role = domain.RoleSubadmin
	return user.ToResponse(), nil
}

// AddUserToOrganization adds a user to an organization. Admins name any
// organization; subadmins default to their first organization and may only
// manage users they supervise or already share an organization with.
func (s *memberService) AddUserToOrganization(actor *domain.Actor, userID uint64, orgID *uint64) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}

	var targetOrg uint64
	if s.policy.IsAdmin(actor) {
		if orgID == nil {
			return common.ErrValidation
		}
		targetOrg = *orgID
	} else {
		if !actor.IsSubadmin() {
			return common.ErrForbidden
		}
		if len(actor.OrgIDs) == 0 {
			return common.ErrNoOrganization
		}
		if err := s.policy.RequireUserManager(actor, user.ID); err != nil {
			return err
		}
		targetOrg = actor.OrgIDs[0]
		if orgID != nil {
			if !actor.InOrganization(*orgID) {
				return common.ErrForbidden
			}
			targetOrg = *orgID
		}
	}

	if _, err := s.orgs.FindByID(targetOrg); err != nil {
		return err
	}
	return s.orgs.AddMember(targetOrg, user.ID)
}
