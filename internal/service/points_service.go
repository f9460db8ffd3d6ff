package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
	"github.com/noah-isme/sma-activity-api/pkg/export"
)

type pointsRepository interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error)
	ListTotalPoints(ctx context.Context, studentID int64) ([]int, error)
	Create(ctx context.Context, record *models.PointsHistoryRecord) error
}

type totalsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// PointsConfig tunes the points aggregator.
type PointsConfig struct {
	CacheTTL time.Duration
}

// ExportFile is a rendered points ledger ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// PointsService owns the points ledger and the per-student aggregate.
type PointsService struct {
	repo      pointsRepository
	cache     totalsCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PointsConfig
}

// NewPointsService constructs a PointsService. cache may be nil.
func NewPointsService(repo pointsRepository, cache totalsCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PointsConfig) *PointsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PointsService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Cached totals are keyed by the student's ledger generation, which every
// write bumps. A total computed before a write lands under the old generation
// and is never read again.
func totalGenerationKey(studentID int64) string {
	return "points:gen:" + strconv.FormatInt(studentID, 10)
}

func totalCacheKey(studentID, generation int64) string {
	return "points:total:" + strconv.FormatInt(studentID, 10) + ":" + strconv.FormatInt(generation, 10)
}

// totalKey resolves the cache key for the student's current generation.
// It returns false when the generation cannot be read and the cache must be bypassed.
func (s *PointsService) totalKey(ctx context.Context, studentID int64) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	var generation int64
	if _, err := s.cache.Get(ctx, totalGenerationKey(studentID), &generation); err != nil {
		return "", false
	}
	return totalCacheKey(studentID, generation), true
}

// StudentTotal sums every ledger value recorded for the student. A student with
// no records, or one that does not exist, totals zero.
func (s *PointsService) StudentTotal(ctx context.Context, studentID int64) (*models.StudentTotal, bool, error) {
	if studentID <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}

	key, cacheable := s.totalKey(ctx, studentID)
	if cacheable {
		var cached models.StudentTotal
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	values, err := s.repo.ListTotalPoints(ctx, studentID)
	s.metrics.ObserveDBQuery("points_student_total", time.Since(start))
	if err != nil {
		s.logger.Error("failed to load points for total", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, false, appErrors.Internal(err, "failed to calculate total points")
	}

	total := &models.StudentTotal{StudentID: studentID, TotalPoints: sum(values)}
	if cacheable {
		_ = s.cache.Set(ctx, key, total, s.cfg.CacheTTL)
	}
	return total, false, nil
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// History returns the student's ledger newest first.
func (s *PointsService) History(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error) {
	if studentID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to fetch points history")
	}
	return records, nil
}

// Record appends a ledger entry and retires the student's cached total.
func (s *PointsService) Record(ctx context.Context, req models.CreatePointsRequest) (*models.PointsHistoryRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "student_id, event_id and a non-negative total_point are required")
	}

	record := &models.PointsHistoryRecord{StudentID: req.StudentID, EventID: req.EventID, TotalPoint: *req.TotalPoint}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record points", zap.Int64("student_id", req.StudentID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to record points")
	}

	if s.cache != nil {
		if _, err := s.cache.Incr(ctx, totalGenerationKey(req.StudentID)); err != nil {
			s.logger.Warn("failed to advance points cache generation", zap.Int64("student_id", req.StudentID), zap.Error(err))
			if key, ok := s.totalKey(ctx, req.StudentID); ok {
				_ = s.cache.Invalidate(ctx, key)
			}
		}
	}
	return record, nil
}

// Export renders the student's ledger with a closing total row.
func (s *PointsService) Export(ctx context.Context, studentID int64, format string) (*ExportFile, error) {
	renderer, err := export.ForFormat(export.Format(strings.ToLower(format)))
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv, pdf or xlsx")
	}

	records, err := s.History(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Points history for student %d", studentID),
		Headers: []string{"id", "event_id", "total_point", "created_at"},
		Rows:    make([][]string, 0, len(records)),
	}
	values := make([]int, 0, len(records))
	for _, r := range records {
		dataset.Rows = append(dataset.Rows, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.EventID, 10),
			strconv.Itoa(r.TotalPoint),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
		values = append(values, r.TotalPoint)
	}
	dataset.Footer = []string{"total", "", strconv.Itoa(sum(values))}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render points export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("points-student-%d.%s", studentID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
