package domain

import "time"

// Episode status states
const (
	EpisodePublic      = "public"
	EpisodePrivate     = "private"
	EpisodeQuarantined = "quarantined"
	EpisodeReported    = "reported"
	EpisodePending     = "pending"
	EpisodeDeleted     = "deleted"
)

// Episode is a content unit within a version. ParentEpisodeID traces
// cross-version lineage: the parent always lives in an earlier version
// of the same story, never in the episode's own version.
type Episode struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	VersionID       uint64    `gorm:"column:version_id;index" json:"version_id"`
	Title           string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Content         string    `gorm:"column:content;type:mediumtext" json:"content"`
	CreatorID       uint64    `gorm:"column:creator_id;index" json:"creator_id"`
	ParentEpisodeID *uint64   `gorm:"column:parent_episode_id;index" json:"parent_episode_id,omitempty"`
	Status          string    `gorm:"column:status;type:varchar(20);default:'public'" json:"status"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Episode) TableName() string { return "episodes" }

// EpisodeLike records a user liking an episode
type EpisodeLike struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EpisodeID uint64    `gorm:"column:episode_id;index;uniqueIndex:idx_episode_like" json:"episode_id"`
	UserID    uint64    `gorm:"column:user_id;uniqueIndex:idx_episode_like" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EpisodeLike) TableName() string { return "episode_likes" }

// CreateEpisodeRequest request body for creating an episode
type CreateEpisodeRequest struct {
	VersionID       uint64  `json:"version_id"`
	StoryID         uint64  `json:"story_id"`
	Title           string  `json:"title" binding:"required"`
	Content         string  `json:"content" binding:"required"`
	ParentEpisodeID *uint64 `json:"parent_episode_id,omitempty"`
}

// BranchEpisodeRequest request body for branching off an episode
type BranchEpisodeRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// EpisodeResponse episode representation with neighbor navigation
type EpisodeResponse struct {
	ID              uint64    `json:"id"`
	VersionID       uint64    `json:"version_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CreatorID       uint64    `json:"creator_id"`
	ParentEpisodeID *uint64   `json:"parent_episode_id,omitempty"`
	Status          string    `json:"status"`
	LikesCount      int64     `json:"likes_count"`
	CreatedAt       time.Time `json:"created_at"`
	HasNext         bool      `json:"has_next"`
	NextID          *uint64   `json:"next_id"`
	HasPrevious     bool      `json:"has_previous"`
	PreviousID      *uint64   `json:"previous_id"`
}

// ToResponse converts an Episode to its response form; navigation and counts
// are filled by the service
func (e *Episode) ToResponse() *EpisodeResponse {
	return &EpisodeResponse{
		ID:              e.ID,
		VersionID:       e.VersionID,
		Title:           e.Title,
		Content:         e.Content,
		CreatorID:       e.CreatorID,
		ParentEpisodeID: e.ParentEpisodeID,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
	}
}
