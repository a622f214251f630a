package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
)

// AccessPolicy gates every mutating operation by actor role and
// relationship. Roles are permission predicates, not a strict seniority
// ladder: each operation declares its own allowed set, and subadmins do
// not inherit admin rights. A failed predicate always surfaces as
// ErrForbidden, never as a silent no-op.
type AccessPolicy struct {
	users repository.UserRepository
}

// NewAccessPolicy creates a new AccessPolicy
func NewAccessPolicy(users repository.UserRepository) *AccessPolicy {
	return &AccessPolicy{users: users}
}

// IsAdmin reports whether the actor is an admin
func (p *AccessPolicy) IsAdmin(actor *domain.Actor) bool {
	return actor != nil && actor.IsAdmin()
}

// IsSubadminOrAdmin reports whether the actor is staff
func (p *AccessPolicy) IsSubadminOrAdmin(actor *domain.Actor) bool {
	return actor != nil && actor.IsStaff()
}

// IsCreator reports whether the actor owns the content
func (p *AccessPolicy) IsCreator(actor *domain.Actor, creatorID uint64) bool {
	return actor != nil && actor.ID == creatorID
}

// IsOrgScoped reports whether the actor belongs to at least one organization
func (p *AccessPolicy) IsOrgScoped(actor *domain.Actor) bool {
	return actor != nil && len(actor.OrgIDs) > 0
}

// Supervises reports whether the actor is the subadmin assigned to the user
func (p *AccessPolicy) Supervises(actor *domain.Actor, userID uint64) (bool, error) {
	if actor == nil || !actor.IsSubadmin() {
		return false, nil
	}
	user, err := p.users.FindByID(userID)
	if err != nil {
		return false, err
	}
	return user.AssignedToID != nil && *user.AssignedToID == actor.ID, nil
}

// SharesOrganization reports whether the actor and the user have an
// organization in common
func (p *AccessPolicy) SharesOrganization(actor *domain.Actor, userID uint64) (bool, error) {
	if actor == nil || len(actor.OrgIDs) == 0 {
		return false, nil
	}
	orgIDs, err := p.users.OrgIDs(userID)
	if err != nil {
		return false, err
	}
	for _, id := range orgIDs {
		if actor.InOrganization(id) {
			return true, nil
		}
	}
	return false, nil
}

// RequireAdmin fails unless the actor is an admin
func (p *AccessPolicy) RequireAdmin(actor *domain.Actor) error {
	if !p.IsAdmin(actor) {
		return common.ErrForbidden
	}
	return nil
}

// RequireStaff fails unless the actor is subadmin or admin
func (p *AccessPolicy) RequireStaff(actor *domain.Actor) error {
	if !p.IsSubadminOrAdmin(actor) {
		return common.ErrForbidden
	}
	return nil
}

// RequireCreator fails unless the actor owns the content
func (p *AccessPolicy) RequireCreator(actor *domain.Actor, creatorID uint64) error {
	if !p.IsCreator(actor, creatorID) {
		return common.ErrForbidden
	}
	return nil
}

// RequireModerator fails unless the actor may moderate content owned by
// creatorID: admins always may, subadmins only when they supervise the
// creator.
func (p *AccessPolicy) RequireModerator(actor *domain.Actor, creatorID uint64) error {
	if p.IsAdmin(actor) {
		return nil
	}
	supervises, err := p.Supervises(actor, creatorID)
	if err != nil {
		return err
	}
	if !supervises {
		return common.ErrForbidden
	}
	return nil
}

// RequireCreatorOrStaff fails unless the actor owns the content or is staff
func (p *AccessPolicy) RequireCreatorOrStaff(actor *domain.Actor, creatorID uint64) error {
	if p.IsCreator(actor, creatorID) || p.IsSubadminOrAdmin(actor) {
		return nil
	}
	return common.ErrForbidden
}

// RequireUserManager fails unless the actor may manage the target user:
// admins always may, subadmins only for users they already supervise or
// share an organization with.
func (p *AccessPolicy) RequireUserManager(actor *domain.Actor, userID uint64) error {
	if p.IsAdmin(actor) {
		return nil
	}
	if actor == nil || !actor.IsSubadmin() {
		return common.ErrForbidden
	}
	supervises, err := p.Supervises(actor, userID)
	if err != nil {
		return err
	}
	if supervises {
		return nil
	}
	shares, err := p.SharesOrganization(actor, userID)
	if err != nil {
		return err
	}
	if !shares {
		return common.ErrForbidden
	}
	return nil
}

// RoleAssignable reports whether the actor may assign the given role when
// creating or updating a user. Subadmins can only mint regular users.
func (p *AccessPolicy) RoleAssignable(actor *domain.Actor, role string) bool {
	if p.IsAdmin(actor) {
		switch role {
		case domain.RoleUser, domain.RoleSubadmin, domain.RoleAdmin:
			return true
		}
		return false
	}
	if actor != nil && actor.IsSubadmin() {
		return role == domain.RoleUser
	}
	return false
}
