package domain

import "time"

// Story visibility states
const (
	StoryPublic      = "public"
	StoryPrivate     = "private"
	StoryQuarantined = "quarantined"
	StoryReported    = "reported"
)

// Story represents a top-level content container owned by a creator
type Story struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	CreatorID      uint64    `gorm:"column:creator_id;index" json:"creator_id"`
	Visibility     string    `gorm:"column:visibility;type:varchar(20);default:'public'" json:"visibility"`
	Category       *string   `gorm:"column:category;type:varchar(100)" json:"category,omitempty"`
	OrganizationID *uint64   `gorm:"column:organization_id" json:"organization_id,omitempty"`
	CoverURL       *string   `gorm:"column:cover_url;type:varchar(500)" json:"cover_url,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Story) TableName() string { return "stories" }

// StoryLike records a user liking a story
type StoryLike struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID   uint64    `gorm:"column:story_id;index;uniqueIndex:idx_story_like" json:"story_id"`
	UserID    uint64    `gorm:"column:user_id;uniqueIndex:idx_story_like" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StoryLike) TableName() string { return "story_likes" }

// StoryFollow records a user following a story
type StoryFollow struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID   uint64    `gorm:"column:story_id;index;uniqueIndex:idx_story_follow" json:"story_id"`
	UserID    uint64    `gorm:"column:user_id;uniqueIndex:idx_story_follow" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StoryFollow) TableName() string { return "story_follows" }

// CreateStoryRequest request body for creating a story
type CreateStoryRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	Category       *string `json:"category,omitempty"`
	OrganizationID *uint64 `json:"organization_id,omitempty"`
	CoverURL       *string `json:"cover_url,omitempty"`
}

// UpdateStoryRequest request body for editing a story
type UpdateStoryRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
}

// ChangeVisibilityRequest request body for a staff visibility override
type ChangeVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

// StoryResponse story representation with derived counts
type StoryResponse struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatorID       uint64    `json:"creator_id"`
	CreatorUsername string    `json:"creator_username,omitempty"`
	Visibility      string    `json:"visibility"`
	Category        *string   `json:"category,omitempty"`
	OrganizationID  *uint64   `json:"organization_id,omitempty"`
	CoverURL        *string   `json:"cover_url,omitempty"`
	LikesCount      int64     `json:"likes_count"`
	FollowersCount  int64     `json:"followers_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToResponse converts a Story to its response form; counts are filled by the service
func (s *Story) ToResponse() *StoryResponse {
	return &StoryResponse{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		CreatorID:      s.CreatorID,
		Visibility:     s.Visibility,
		Category:       s.Category,
		OrganizationID: s.OrganizationID,
		CoverURL:       s.CoverURL,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
