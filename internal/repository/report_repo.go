package repository

import (
	"errors"

	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EscalationResult reports which automatic transitions a filed report triggered
type EscalationResult struct {
	EpisodeQuarantined bool
	StoryReported      bool
}

// ReportRepository report storage and escalation. Filing and escalation
// recompute share one transaction with the target row locked, so two
// concurrent reports cannot both read a pre-threshold count.
type ReportRepository interface {
	FileStoryReport(report *domain.StoryReport, storyThreshold int) (*EscalationResult, error)
	FileEpisodeReport(report *domain.EpisodeReport, episodeThreshold, storyThreshold int) (*EscalationResult, error)

	// Recompute entry points are idempotent: already-escalated targets
	// are left untouched.
	RecomputeEpisodeEscalation(episodeID uint64, threshold int) (bool, error)
	RecomputeStoryEscalation(storyID uint64, threshold int) (bool, error)

	CountPendingStoryReports(storyID uint64) (int64, error)
	CountPendingEpisodeReports(episodeID uint64) (int64, error)
	CountPendingEpisodeReportsForStory(storyID uint64) (int64, error)

	ListStoryReports(storyID uint64) ([]*domain.StoryReport, error)
	ListEpisodeReports(episodeID uint64) ([]*domain.EpisodeReport, error)
	ListStoryReportsByStatus(status string, page, limit int) ([]*domain.StoryReport, int64, error)
	ListEpisodeReportsByStatus(status string, page, limit int) ([]*domain.EpisodeReport, int64, error)

	BulkUpdateStoryReportStatus(storyID uint64, from, to string) error
	BulkUpdateEpisodeReportStatus(episodeID uint64, from, to string) error
	DeleteEpisodeReports(episodeID uint64) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// forUpdate applies a row lock on drivers that support it. SQLite (used in
// tests) is single-writer and rejects FOR UPDATE syntax.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FileStoryReport appends a pending report and recomputes story escalation
// in the same transaction
func (r *reportRepository) FileStoryReport(report *domain.StoryReport, storyThreshold int) (*EscalationResult, error) {
	result := &EscalationResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var story domain.Story
		if err := forUpdate(tx).First(&story, report.StoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrStoryNotFound
			}
			return err
		}

		report.Status = domain.ReportPending
		if err := tx.Create(report).Error; err != nil {
			return err
		}

		escalated, err := recomputeStoryTx(tx, &story, storyThreshold)
		if err != nil {
			return err
		}
		result.StoryReported = escalated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FileEpisodeReport appends a pending report, recomputes episode escalation
// and then story escalation, all in one transaction
func (r *reportRepository) FileEpisodeReport(report *domain.EpisodeReport, episodeThreshold, storyThreshold int) (*EscalationResult, error) {
	result := &EscalationResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var episode domain.Episode
		if err := forUpdate(tx).First(&episode, report.EpisodeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrEpisodeNotFound
			}
			return err
		}

		report.Status = domain.ReportPending
		if err := tx.Create(report).Error; err != nil {
			return err
		}

		episodeEscalated, err := recomputeEpisodeTx(tx, &episode, episodeThreshold)
		if err != nil {
			return err
		}
		result.EpisodeQuarantined = episodeEscalated

		var version domain.Version
		if err := tx.First(&version, episode.VersionID).Error; err != nil {
			return err
		}
		var story domain.Story
		if err := forUpdate(tx).First(&story, version.StoryID).Error; err != nil {
			return err
		}

		storyEscalated, err := recomputeStoryTx(tx, &story, storyThreshold)
		if err != nil {
			return err
		}
		result.StoryReported = storyEscalated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recomputeEpisodeTx counts pending reports and quarantines the episode when
// the threshold is reached. No-op on already-quarantined episodes.
func recomputeEpisodeTx(tx *gorm.DB, episode *domain.Episode, threshold int) (bool, error) {
	var count int64
	if err := tx.Model(&domain.EpisodeReport{}).
		Where("episode_id = ? AND status = ?", episode.ID, domain.ReportPending).
		Count(&count).Error; err != nil {
		return false, err
	}

	if count < int64(threshold) || episode.Status == domain.EpisodeQuarantined {
		return false, nil
	}

	if err := tx.Model(&domain.Episode{}).Where("id = ?", episode.ID).
		Update("status", domain.EpisodeQuarantined).Error; err != nil {
		return false, err
	}
	episode.Status = domain.EpisodeQuarantined
	return true, nil
}

// recomputeStoryTx sums pending story reports with pending episode reports
// across the story and flags the story when the threshold is reached.
// No-op on stories already quarantined or reported.
func recomputeStoryTx(tx *gorm.DB, story *domain.Story, threshold int) (bool, error) {
	var storyCount int64
	if err := tx.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", story.ID, domain.ReportPending).
		Count(&storyCount).Error; err != nil {
		return false, err
	}

	var episodeCount int64
	if err := tx.Model(&domain.EpisodeReport{}).
		Joins("JOIN episodes ON episodes.id = episode_reports.episode_id").
		Joins("JOIN versions ON versions.id = episodes.version_id").
		Where("versions.story_id = ? AND episode_reports.status = ?", story.ID, domain.ReportPending).
		Count(&episodeCount).Error; err != nil {
		return false, err
	}

	total := storyCount + episodeCount
	if total < int64(threshold) ||
		story.Visibility == domain.StoryQuarantined ||
		story.Visibility == domain.StoryReported {
		return false, nil
	}

	if err := tx.Model(&domain.Story{}).Where("id = ?", story.ID).
		Update("visibility", domain.StoryReported).Error; err != nil {
		return false, err
	}
	story.Visibility = domain.StoryReported
	return true, nil
}

// RecomputeEpisodeEscalation re-runs the episode threshold check
func (r *reportRepository) RecomputeEpisodeEscalation(episodeID uint64, threshold int) (bool, error) {
	var escalated bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var episode domain.Episode
		if err := forUpdate(tx).First(&episode, episodeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrEpisodeNotFound
			}
			return err
		}
		var err error
		escalated, err = recomputeEpisodeTx(tx, &episode, threshold)
		return err
	})
	return escalated, err
}

// RecomputeStoryEscalation re-runs the story threshold check
func (r *reportRepository) RecomputeStoryEscalation(storyID uint64, threshold int) (bool, error) {
	var escalated bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var story domain.Story
		if err := forUpdate(tx).First(&story, storyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrStoryNotFound
			}
			return err
		}
		var err error
		escalated, err = recomputeStoryTx(tx, &story, threshold)
		return err
	})
	return escalated, err
}

// CountPendingStoryReports counts pending reports filed directly on a story
func (r *reportRepository) CountPendingStoryReports(storyID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", storyID, domain.ReportPending).
		Count(&count).Error
	return count, err
}

// CountPendingEpisodeReports counts pending reports on an episode
func (r *reportRepository) CountPendingEpisodeReports(episodeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.EpisodeReport{}).
		Where("episode_id = ? AND status = ?", episodeID, domain.ReportPending).
		Count(&count).Error
	return count, err
}

// CountPendingEpisodeReportsForStory counts pending episode reports across
// every episode of a story
func (r *reportRepository) CountPendingEpisodeReportsForStory(storyID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.EpisodeReport{}).
		Joins("JOIN episodes ON episodes.id = episode_reports.episode_id").
		Joins("JOIN versions ON versions.id = episodes.version_id").
		Where("versions.story_id = ? AND episode_reports.status = ?", storyID, domain.ReportPending).
		Count(&count).Error
	return count, err
}

// ListStoryReports retrieves every report filed on a story
func (r *reportRepository) ListStoryReports(storyID uint64) ([]*domain.StoryReport, error) {
	var reports []*domain.StoryReport
	err := r.db.Where("story_id = ?", storyID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// ListEpisodeReports retrieves every report filed on an episode
func (r *reportRepository) ListEpisodeReports(episodeID uint64) ([]*domain.EpisodeReport, error) {
	var reports []*domain.EpisodeReport
	err := r.db.Where("episode_id = ?", episodeID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// ListStoryReportsByStatus retrieves paginated story reports, optionally filtered
func (r *reportRepository) ListStoryReportsByStatus(status string, page, limit int) ([]*domain.StoryReport, int64, error) {
	var reports []*domain.StoryReport
	var total int64

	query := r.db.Model(&domain.StoryReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListEpisodeReportsByStatus retrieves paginated episode reports, optionally filtered
func (r *reportRepository) ListEpisodeReportsByStatus(status string, page, limit int) ([]*domain.EpisodeReport, int64, error) {
	var reports []*domain.EpisodeReport
	var total int64

	query := r.db.Model(&domain.EpisodeReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// BulkUpdateStoryReportStatus flips every report on a story from one status to another
func (r *reportRepository) BulkUpdateStoryReportStatus(storyID uint64, from, to string) error {
	return r.db.Model(&domain.StoryReport{}).
		Where("story_id = ? AND status = ?", storyID, from).
		Update("status", to).Error
}

// BulkUpdateEpisodeReportStatus flips every report on an episode from one status to another
func (r *reportRepository) BulkUpdateEpisodeReportStatus(episodeID uint64, from, to string) error {
	return r.db.Model(&domain.EpisodeReport{}).
		Where("episode_id = ? AND status = ?", episodeID, from).
		Update("status", to).Error
}

// DeleteEpisodeReports removes the whole report log of an episode
func (r *reportRepository) DeleteEpisodeReports(episodeID uint64) error {
	return r.db.Where("episode_id = ?", episodeID).Delete(&domain.EpisodeReport{}).Error
}
