package service

import (
	"github.com/storyforge/storyforge-backend/internal/common"
	"github.com/storyforge/storyforge-backend/internal/domain"
	"github.com/storyforge/storyforge-backend/internal/repository"
)

// ReportThresholds escalation policy constants, loaded from configuration
type ReportThresholds struct {
	// EpisodeQuarantine pending reports on one episode before it is
	// auto-quarantined
	EpisodeQuarantine int
	// StoryReported pending reports across a story (direct plus episode
	// reports) before the story is flagged
	StoryReported int
}

// DefaultReportThresholds matches the story-level policy of three strikes
func DefaultReportThresholds() ReportThresholds {
	return ReportThresholds{EpisodeQuarantine: 3, StoryReported: 3}
}

// FiledReport is the result of filing a report, including any automatic
// transitions the filing triggered
type FiledReport struct {
	Report             *domain.ReportResponse `json:"report"`
	EpisodeQuarantined bool                   `json:"episode_quarantined"`
	StoryReported      bool                   `json:"story_reported"`
}

// ReportService tallies reports and drives threshold escalation. Escalation
// runs synchronously inside the filing transaction; counts are always
// recomputed from the report log.
type ReportService interface {
	FileStoryReport(actor *domain.Actor, storyID uint64, req *domain.FileReportRequest) (*FiledReport, error)
	FileEpisodeReport(actor *domain.Actor, episodeID uint64, req *domain.FileReportRequest) (*FiledReport, error)

	RecomputeEpisodeEscalation(episodeID uint64) (bool, error)
	RecomputeStoryEscalation(storyID uint64) (bool, error)

	ListReports(actor *domain.Actor, targetType, status string, page, limit int) ([]*domain.ReportResponse, *common.Meta, error)
	ListStoryReports(actor *domain.Actor, storyID uint64) ([]*domain.ReportResponse, error)
	ListEpisodeReports(actor *domain.Actor, episodeID uint64) ([]*domain.ReportResponse, error)
}

type reportService struct {
	reports    repository.ReportRepository
	stories    repository.StoryRepository
	episodes   repository.EpisodeRepository
	policy     *AccessPolicy
	thresholds ReportThresholds
}

// NewReportService creates a new ReportService
func NewReportService(
	reports repository.ReportRepository,
	stories repository.StoryRepository,
	episodes repository.EpisodeRepository,
	policy *AccessPolicy,
	thresholds ReportThresholds,
) ReportService {
	if thresholds.EpisodeQuarantine < 1 {
		thresholds.EpisodeQuarantine = DefaultReportThresholds().EpisodeQuarantine
	}
	if thresholds.StoryReported < 1 {
		thresholds.StoryReported = DefaultReportThresholds().StoryReported
	}
	return &reportService{
		reports:    reports,
		stories:    stories,
		episodes:   episodes,
		policy:     policy,
		thresholds: thresholds,
	}
}

// FileStoryReport appends a pending report on a story and escalates when
// the threshold is crossed. Creators cannot report their own stories.
func (s *reportService) FileStoryReport(actor *domain.Actor, storyID uint64, req *domain.FileReportRequest) (*FiledReport, error) {
	if req.Reason == "" {
		return nil, common.ErrReasonRequired
	}
	story, err := s.stories.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.CreatorID == actor.ID {
		return nil, common.ErrSelfReport
	}

	report := &domain.StoryReport{
		StoryID:      story.ID,
		ReportedByID: actor.ID,
		Reason:       req.Reason,
	}
	result, err := s.reports.FileStoryReport(report, s.thresholds.StoryReported)
	if err != nil {
		return nil, err
	}
	return &FiledReport{
		Report:        report.ToResponse(),
		StoryReported: result.StoryReported,
	}, nil
}

// FileEpisodeReport appends a pending report on an episode; crossing the
// episode threshold quarantines the episode, and the story total is
// rechecked in the same transaction.
func (s *reportService) FileEpisodeReport(actor *domain.Actor, episodeID uint64, req *domain.FileReportRequest) (*FiledReport, error) {
	if req.Reason == "" {
		return nil, common.ErrReasonRequired
	}
	episode, err := s.episodes.FindByID(episodeID)
	if err != nil {
		return nil, err
	}
	if episode.CreatorID == actor.ID {
		return nil, common.ErrSelfReport
	}

	report := &domain.EpisodeReport{
		EpisodeID:    episode.ID,
		ReportedByID: actor.ID,
		Reason:       req.Reason,
	}
	result, err := s.reports.FileEpisodeReport(report, s.thresholds.EpisodeQuarantine, s.thresholds.StoryReported)
	if err != nil {
		return nil, err
	}
	return &FiledReport{
		Report:             report.ToResponse(),
		EpisodeQuarantined: result.EpisodeQuarantined,
		StoryReported:      result.StoryReported,
	}, nil
}

// RecomputeEpisodeEscalation re-runs the episode threshold check; a no-op
// on already-quarantined episodes
func (s *reportService) RecomputeEpisodeEscalation(episodeID uint64) (bool, error) {
	return s.reports.RecomputeEpisodeEscalation(episodeID, s.thresholds.EpisodeQuarantine)
}

// RecomputeStoryEscalation re-runs the story threshold check; a no-op on
// already-quarantined or already-reported stories
func (s *reportService) RecomputeStoryEscalation(storyID uint64) (bool, error) {
	return s.reports.RecomputeStoryEscalation(storyID, s.thresholds.StoryReported)
}

// ListReports retrieves paginated reports for review, admin only
func (s *reportService) ListReports(actor *domain.Actor, targetType, status string, page, limit int) ([]*domain.ReportResponse, *common.Meta, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var responses []*domain.ReportResponse
	var total int64
	switch targetType {
	case "episode":
		reports, count, err := s.reports.ListEpisodeReportsByStatus(status, page, limit)
		if err != nil {
			return nil, nil, err
		}
		total = count
		for _, r := range reports {
			responses = append(responses, r.ToResponse())
		}
	default:
		reports, count, err := s.reports.ListStoryReportsByStatus(status, page, limit)
		if err != nil {
			return nil, nil, err
		}
		total = count
		for _, r := range reports {
			responses = append(responses, r.ToResponse())
		}
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// ListStoryReports retrieves the full report log of a story, admin only
func (s *reportService) ListStoryReports(actor *domain.Actor, storyID uint64) ([]*domain.ReportResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.stories.FindByID(storyID); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListStoryReports(storyID)
	if err != nil {
		return nil, err
	}
	responses := make([]*domain.ReportResponse, len(reports))
	for i, r := range reports {
		responses[i] = r.ToResponse()
	}
	return responses, nil
}

// ListEpisodeReports retrieves the full report log of an episode, admin only
func (s *reportService) ListEpisodeReports(actor *domain.Actor, episodeID uint64) ([]*domain.ReportResponse, error) {
	if err := s.policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.episodes.FindByID(episodeID); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListEpisodeReports(episodeID)
	if err != nil {
		return nil, err
	}
	responses := make([]*domain.ReportResponse, len(reports))
	for i, r := range reports {
		responses[i] = r.ToResponse()
	}
	return responses, nil
}
