package domain

import "time"

// Organization scopes subadmin authority; it plays no part in versioning
type Organization struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(255);uniqueIndex" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatorID   uint64    `gorm:"column:creator_id" json:"creator_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

// OrganizationMember join row between organizations and users
type OrganizationMember struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrganizationID uint64    `gorm:"column:organization_id;index;uniqueIndex:idx_org_member" json:"organization_id"`
	UserID         uint64    `gorm:"column:user_id;index;uniqueIndex:idx_org_member" json:"user_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

// CreateOrganizationRequest request body for creating an organization
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// OrganizationResponse organization representation with member count
type OrganizationResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint64    `json:"creator_id"`
	MemberCount int64     `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts an Organization to its response form
func (o *Organization) ToResponse() *OrganizationResponse {
	return &OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		CreatorID:   o.CreatorID,
		CreatedAt:   o.CreatedAt,
	}
}
