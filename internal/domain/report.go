package domain

import "time"

// Report status constants. A report is an append-only log row; only admin
// approve/reject actions flip its status. Approved and rejected rows are
// historical and never count toward escalation.
const (
	ReportPending  = "pending"
	ReportApproved = "approved"
	ReportRejected = "rejected"
)

// StoryReport is a community report filed against a story
type StoryReport struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID      uint64    `gorm:"column:story_id;index" json:"story_id"`
	ReportedByID uint64    `gorm:"column:reported_by_id;index" json:"reported_by_id"`
	Reason       string    `gorm:"column:reason;type:text" json:"reason"`
	Status       string    `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StoryReport) TableName() string { return "story_reports" }

// EpisodeReport is a community report filed against an episode
type EpisodeReport struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EpisodeID    uint64    `gorm:"column:episode_id;index" json:"episode_id"`
	ReportedByID uint64    `gorm:"column:reported_by_id;index" json:"reported_by_id"`
	Reason       string    `gorm:"column:reason;type:text" json:"reason"`
	Status       string    `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (EpisodeReport) TableName() string { return "episode_reports" }

// FileReportRequest request body for filing a report
type FileReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReportResponse report list representation
type ReportResponse struct {
	ID           uint64    `json:"id"`
	TargetType   string    `json:"target_type"` // "story" or "episode"
	TargetID     uint64    `json:"target_id"`
	ReportedByID uint64    `json:"reported_by_id"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts a StoryReport to its response form
func (r *StoryReport) ToResponse() *ReportResponse {
	return &ReportResponse{
		ID:           r.ID,
		TargetType:   "story",
		TargetID:     r.StoryID,
		ReportedByID: r.ReportedByID,
		Reason:       r.Reason,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
}

// ToResponse converts an EpisodeReport to its response form
func (r *EpisodeReport) ToResponse() *ReportResponse {
	return &ReportResponse{
		ID:           r.ID,
		TargetType:   "episode",
		TargetID:     r.EpisodeID,
		ReportedByID: r.ReportedByID,
		Reason:       r.Reason,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
	}
}
