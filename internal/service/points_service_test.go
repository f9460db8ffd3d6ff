package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type mockPointsRepo struct {
	records    []models.PointsHistoryRecord
	listErr    error
	createErr  error
	totalCalls int
	created    []models.PointsHistoryRecord
	afterTotal func()
}

func (m *mockPointsRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.PointsHistoryRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.PointsHistoryRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockPointsRepo) ListTotalPoints(ctx context.Context, studentID int64) ([]int, error) {
	m.totalCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	values := []int{}
	for _, r := range m.records {
		if r.StudentID == studentID {
			values = append(values, r.TotalPoint)
		}
	}
	if hook := m.afterTotal; hook != nil {
		m.afterTotal = nil
		hook()
	}
	return values, nil
}

func (m *mockPointsRepo) Create(ctx context.Context, record *models.PointsHistoryRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *record)
	m.created = append(m.created, *record)
	return nil
}

type memoryCache struct {
	totals      map[string]models.StudentTotal
	counters    map[string]int64
	invalidated []string
	incrErr     error
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	switch d := dest.(type) {
	case *int64:
		n, ok := c.counters[key]
		*d = n
		return ok, nil
	case *models.StudentTotal:
		v, ok := c.totals[key]
		if ok {
			*d = v
		}
		return ok, nil
	}
	return false, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.totals == nil {
		c.totals = map[string]models.StudentTotal{}
	}
	c.totals[key] = *value.(*models.StudentTotal)
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.totals, k)
	}
	c.invalidated = append(c.invalidated, keys...)
	return nil
}

func (c *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	if c.counters == nil {
		c.counters = map[string]int64{}
	}
	c.counters[key]++
	return c.counters[key], nil
}

func ledger(rows ...[2]int) []models.PointsHistoryRecord {
	out := make([]models.PointsHistoryRecord, 0, len(rows))
	for i, r := range rows {
		out = append(out, models.PointsHistoryRecord{ID: int64(i + 1), StudentID: int64(r[0]), EventID: 1, TotalPoint: r[1]})
	}
	return out
}

func TestStudentTotalSumsOnlyThatStudent(t *testing.T) {
	repo := &mockPointsRepo{records: ledger([2]int{1, 10}, [2]int{1, 15}, [2]int{2, 5})}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	total, hit, err := svc.StudentTotal(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, &models.StudentTotal{StudentID: 1, TotalPoints: 25}, total)
	assert.Equal(t, 1, repo.totalCalls)
}

func TestStudentTotalWithoutHistoryIsZero(t *testing.T) {
	svc := NewPointsService(&mockPointsRepo{}, nil, nil, nil, nil, PointsConfig{})

	total, _, err := svc.StudentTotal(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), total.StudentID)
	assert.Zero(t, total.TotalPoints)
}

func TestStudentTotalIgnoresInsertionOrder(t *testing.T) {
	orders := [][][2]int{
		{{3, 4}, {3, 0}, {3, 9}, {3, 7}},
		{{3, 7}, {3, 9}, {3, 4}, {3, 0}},
		{{3, 0}, {3, 7}, {3, 4}, {3, 9}},
	}
	for _, rows := range orders {
		svc := NewPointsService(&mockPointsRepo{records: ledger(rows...)}, nil, nil, nil, nil, PointsConfig{})
		total, _, err := svc.StudentTotal(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 20, total.TotalPoints)
	}
}

func TestStudentTotalStoreFailure(t *testing.T) {
	svc := NewPointsService(&mockPointsRepo{listErr: errors.New("connection refused")}, nil, NewMetricsService(), nil, nil, PointsConfig{})

	total, _, err := svc.StudentTotal(context.Background(), 1)
	assert.Nil(t, total)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.NotContains(t, appErr.Message, "connection refused")
}

func TestStudentTotalRejectsInvalidID(t *testing.T) {
	repo := &mockPointsRepo{}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	_, _, err := svc.StudentTotal(context.Background(), 0)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.totalCalls)
}

func TestStudentTotalUsesCacheUntilRecordAdded(t *testing.T) {
	repo := &mockPointsRepo{records: ledger([2]int{1, 10})}
	cache := &memoryCache{}
	svc := NewPointsService(repo, cache, nil, nil, nil, PointsConfig{CacheTTL: time.Minute})
	ctx := context.Background()

	_, hit, err := svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	total, hit, err := svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 10, total.TotalPoints)
	assert.Equal(t, 1, repo.totalCalls)

	five := 5
	_, err = svc.Record(ctx, models.CreatePointsRequest{StudentID: 1, EventID: 2, TotalPoint: &five})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cache.counters["points:gen:1"])
	assert.Contains(t, cache.totals, "points:total:1:0")

	total, hit, err = svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 15, total.TotalPoints)
}

func TestStudentTotalIgnoresTotalComputedBeforeConcurrentRecord(t *testing.T) {
	repo := &mockPointsRepo{records: ledger([2]int{1, 10})}
	cache := &memoryCache{}
	svc := NewPointsService(repo, cache, nil, nil, nil, PointsConfig{CacheTTL: time.Minute})
	ctx := context.Background()

	five := 5
	repo.afterTotal = func() {
		_, err := svc.Record(ctx, models.CreatePointsRequest{StudentID: 1, EventID: 2, TotalPoint: &five})
		require.NoError(t, err)
	}

	total, hit, err := svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 10, total.TotalPoints)

	total, hit, err = svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 15, total.TotalPoints)

	total, hit, err = svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 15, total.TotalPoints)
	assert.Equal(t, 2, repo.totalCalls)
}

func TestRecordDropsCurrentTotalWhenGenerationCannotAdvance(t *testing.T) {
	repo := &mockPointsRepo{records: ledger([2]int{1, 10})}
	cache := &memoryCache{}
	svc := NewPointsService(repo, cache, nil, nil, nil, PointsConfig{CacheTTL: time.Minute})
	ctx := context.Background()

	_, _, err := svc.StudentTotal(ctx, 1)
	require.NoError(t, err)

	cache.incrErr = errors.New("redis down")
	five := 5
	_, err = svc.Record(ctx, models.CreatePointsRequest{StudentID: 1, EventID: 2, TotalPoint: &five})
	require.NoError(t, err)
	assert.Equal(t, []string{"points:total:1:0"}, cache.invalidated)

	total, hit, err := svc.StudentTotal(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 15, total.TotalPoints)
}

func TestRecordRejectsNegativePoints(t *testing.T) {
	repo := &mockPointsRepo{}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	negative := -1
	_, err := svc.Record(context.Background(), models.CreatePointsRequest{StudentID: 1, EventID: 1, TotalPoint: &negative})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.created)
}

func TestRecordRejectsPointsBeyondColumnRange(t *testing.T) {
	repo := &mockPointsRepo{}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	_, err := svc.Record(context.Background(), models.CreatePointsRequest{StudentID: 1, EventID: 1, TotalPoint: intPtr(math.MaxInt32 + 1)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.created)
}

func TestRecordAllowsZeroPoints(t *testing.T) {
	repo := &mockPointsRepo{}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	zero := 0
	record, err := svc.Record(context.Background(), models.CreatePointsRequest{StudentID: 1, EventID: 1, TotalPoint: &zero})
	require.NoError(t, err)
	assert.Zero(t, record.TotalPoint)
}

func TestExportCSVIncludesTotalRow(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &mockPointsRepo{records: []models.PointsHistoryRecord{
		{ID: 2, StudentID: 1, EventID: 8, TotalPoint: 15, CreatedAt: created},
		{ID: 1, StudentID: 1, EventID: 7, TotalPoint: 10, CreatedAt: created},
	}}
	svc := NewPointsService(repo, nil, nil, nil, nil, PointsConfig{})

	file, err := svc.Export(context.Background(), 1, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "points-student-1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,event_id,total_point,created_at", lines[0])
	assert.Equal(t, "total,,25,", lines[3])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewPointsService(&mockPointsRepo{}, nil, nil, nil, nil, PointsConfig{})
	_, err := svc.Export(context.Background(), 1, "docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
