package domain

import (
	"fmt"
	"time"
)

// VersionNumberWidth fixed zero-padding width for displayed version numbers.
// Keeps lexicographic ordering equal to numeric ordering up to 99999.
const VersionNumberWidth = 5

// Version is a numbered snapshot lineage root within a story
type Version struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID   uint64    `gorm:"column:story_id;index;uniqueIndex:idx_story_version" json:"story_id"`
	Number    uint      `gorm:"column:version_number;uniqueIndex:idx_story_version" json:"version_number"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Version) TableName() string { return "versions" }

// DisplayNumber formats the version number with fixed-width zero padding
func (v *Version) DisplayNumber() string {
	return fmt.Sprintf("%0*d", VersionNumberWidth, v.Number)
}

// CreateVersionRequest request body for creating a version
type CreateVersionRequest struct {
	StoryID uint64 `json:"story_id" binding:"required"`
	Number  *uint  `json:"version_number,omitempty"`
}

// VersionResponse version representation with neighbor navigation
type VersionResponse struct {
	ID            uint64    `json:"id"`
	StoryID       uint64    `json:"story_id"`
	Number        uint      `json:"version_number"`
	DisplayNumber string    `json:"display_number"`
	CreatedAt     time.Time `json:"created_at"`
	HasNext       bool      `json:"has_next"`
	NextID        *uint64   `json:"next_id"`
	HasPrevious   bool      `json:"has_previous"`
	PreviousID    *uint64   `json:"previous_id"`
}

// ToResponse converts a Version to its response form; navigation is filled by the service
func (v *Version) ToResponse() *VersionResponse {
	return &VersionResponse{
		ID:            v.ID,
		StoryID:       v.StoryID,
		Number:        v.Number,
		DisplayNumber: v.DisplayNumber(),
		CreatedAt:     v.CreatedAt,
	}
}
