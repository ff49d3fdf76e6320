package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/models/dtos"
	"soultrack/followup/internal/models/entities"

	"golang.org/x/sync/errgroup"
)

// The dashboard polls every 5 seconds; one cached summary per scope serves
// all pollers in that window.
const reportCacheTTL = 5 * time.Second

type ReportService struct {
	reports    *repositories.ReportRepository
	visibility *VisibilityService
	cache      common.CacheInterface
	metrics    *metrics.MetricsRegistry
	now        func() time.Time
}

func NewReportService(reports *repositories.ReportRepository, visibility *VisibilityService, cache common.CacheInterface, metricsReg *metrics.MetricsRegistry) *ReportService {
	return &ReportService{
		reports:    reports,
		visibility: visibility,
		cache:      cache,
		metrics:    metricsReg,
		now:        time.Now,
	}
}

// Summary returns the dashboard aggregates for what session may see.
func (s *ReportService) Summary(ctx context.Context, session *auth.Session) (*dtos.ReportSummary, error) {
	scope := s.visibility.ScopeFor(session)
	if scope.Empty() {
		return emptySummary(s.now()), nil
	}

	key := string(constants.CachePrefixReportSummary) + scopeKey(scope)
	summary, loaded, err := common.GetOrSetTyped(s.cache, key, reportCacheTTL, func() (dtos.ReportSummary, error) {
		return s.buildSummary(ctx, scope)
	})
	if err != nil {
		return nil, storeError("failed to build report", err)
	}
	s.metrics.RecordCache(string(constants.CachePrefixReportSummary), !loaded)
	return &summary, nil
}

func (s *ReportService) buildSummary(ctx context.Context, scope entities.VisibilityScope) (dtos.ReportSummary, error) {
	summary := emptySummary(s.now())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.reports.FollowUpsByStatus(gctx, scope)
		summary.FollowUpsByStatus = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.reports.FollowUpsByCellule(gctx, scope)
		summary.FollowUpsByCell = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.reports.ContactsByStatus(gctx, scope)
		summary.ContactsByStatus = rows
		return err
	})
	g.Go(func() error {
		total, err := s.reports.Members(gctx, scope)
		summary.Members = total
		return err
	})

	if err := g.Wait(); err != nil {
		return dtos.ReportSummary{}, err
	}
	return *summary, nil
}

func emptySummary(now time.Time) *dtos.ReportSummary {
	return &dtos.ReportSummary{
		FollowUpsByStatus: []entities.StatusCodeCount{},
		FollowUpsByCell:   []entities.CelluleCount{},
		ContactsByStatus:  []entities.StatusCount{},
		GeneratedAt:       now.UTC(),
	}
}

// scopeKey is stable for equal scopes.
func scopeKey(scope entities.VisibilityScope) string {
	if scope.AllInBranch {
		return fmt.Sprintf("%d_%d_all", scope.ChurchID, scope.BranchID)
	}
	ids := make([]string, len(scope.CellGroupIDs))
	for i, id := range scope.CellGroupIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%d_%d_c%s_p%s", scope.ChurchID, scope.BranchID, strings.Join(ids, "-"), scope.CounselorID)
}
