package domain

import "time"

// User roles
const (
	RoleUser     = "user"
	RoleSubadmin = "subadmin"
	RoleAdmin    = "admin"
)

// User represents an account in the platform. AssignedToID links a regular
// user to the subadmin supervising them.
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(50);uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	Role         string    `gorm:"column:role;type:varchar(20);default:'user'" json:"role"`
	AssignedToID *uint64   `gorm:"column:assigned_to_id;index" json:"assigned_to_id,omitempty"`
	Bio          *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Actor is the identity-service view of the requesting user. It is built
// once per request from verified claims plus the user row and passed
// explicitly into every core operation; core code never reads ambient
// request state.
type Actor struct {
	ID           uint64   `json:"id"`
	Role         string   `json:"role"`
	AssignedToID *uint64  `json:"assigned_to_id,omitempty"`
	OrgIDs       []uint64 `json:"org_ids,omitempty"`
}

// IsAdmin reports whether the actor holds the admin role
func (a *Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsSubadmin reports whether the actor holds the subadmin role
func (a *Actor) IsSubadmin() bool { return a.Role == RoleSubadmin }

// IsStaff reports whether the actor is subadmin or admin
func (a *Actor) IsStaff() bool { return a.Role == RoleSubadmin || a.Role == RoleAdmin }

// InOrganization reports whether the actor belongs to the given organization
func (a *Actor) InOrganization(orgID uint64) bool {
	for _, id := range a.OrgIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// CreateUserRequest request body for staff-created accounts
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Role     string `json:"role"`
}

// AssignRoleRequest request body for role/supervision assignment
type AssignRoleRequest struct {
	Role         *string `json:"role,omitempty"`
	AssignedToID *uint64 `json:"assigned_to_id,omitempty"`
}

// MakeSubadminRequest request body for promoting a user to subadmin
type MakeSubadminRequest struct {
	OrganizationID uint64 `json:"organization_id" binding:"required"`
}

// AddOrgMemberRequest request body for adding a user to an organization.
// OrganizationID may be omitted by subadmins, defaulting to their own organization.
type AddOrgMemberRequest struct {
	UserID         uint64  `json:"user_id" binding:"required"`
	OrganizationID *uint64 `json:"organization_id,omitempty"`
}

// UserResponse user list representation
type UserResponse struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AssignedToID *uint64   `json:"assigned_to_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts a User to its response form
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		AssignedToID: u.AssignedToID,
		CreatedAt:    u.CreatedAt,
	}
}
