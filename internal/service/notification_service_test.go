package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
	"github.com/noah-isme/sma-activity-api/pkg/jobs"
)

type mockNotificationRepo struct {
	items   []models.Notification
	batches [][]int64
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.ID = int64(len(m.items) + 1)
	m.items = append(m.items, *n)
	return nil
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, userIDs []int64, title, message string) (int, error) {
	m.batches = append(m.batches, userIDs)
	return len(userIDs), nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	out := []models.Notification{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].IsRead = true
			return &m.items[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockRoleDirectory struct {
	ids map[models.UserRole][]int64
}

func (m *mockRoleDirectory) ListIDsByRole(ctx context.Context, role models.UserRole) ([]int64, error) {
	return m.ids[role], nil
}

type recordingQueue struct {
	jobs []jobs.Job[models.BroadcastRequest]
}

func (q *recordingQueue) Enqueue(job jobs.Job[models.BroadcastRequest]) (string, error) {
	q.jobs = append(q.jobs, job)
	return "job-1", nil
}

func TestCreateNotificationUnread(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil, nil, nil)

	n, err := svc.Create(context.Background(), models.CreateNotificationRequest{UserID: 2, Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	_, err = svc.Create(context.Background(), models.CreateNotificationRequest{UserID: 2, Title: "Hi"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Len(t, repo.items, 1)
}

func TestListAndMarkRead(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil, nil, nil)
	ctx := context.Background()
	_, _ = svc.Create(ctx, models.CreateNotificationRequest{UserID: 2, Title: "a", Message: "first"})
	_, _ = svc.Create(ctx, models.CreateNotificationRequest{UserID: 2, Title: "b", Message: "second"})

	items, err := svc.ListByUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Message)

	n, err := svc.MarkRead(ctx, items[0].ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	_, err = svc.MarkRead(ctx, 99)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ListByUser(ctx, 0)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBroadcastQueuesJob(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewNotificationService(&mockNotificationRepo{}, queue, nil, nil, nil)

	accepted, err := svc.Broadcast(context.Background(), models.BroadcastRequest{Role: models.RoleStudent, Title: "t", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", accepted.JobID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, BroadcastJobType, queue.jobs[0].Type)
}

func TestBroadcastWithoutQueue(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, nil, nil, nil, nil)
	_, err := svc.Broadcast(context.Background(), models.BroadcastRequest{Role: models.RoleStudent, Title: "t", Message: "m"})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestBroadcastDeliveredThroughQueue(t *testing.T) {
	repo := &mockNotificationRepo{}
	users := &mockRoleDirectory{ids: map[models.UserRole][]int64{models.RoleStudent: {4, 5, 6}}}
	done := make(chan struct{})
	handler := BroadcastJobHandler(repo, users, NewMetricsService(), nil)

	queue := jobs.NewQueue[models.BroadcastRequest]("notifications", func(ctx context.Context, job jobs.Job[models.BroadcastRequest]) error {
		defer close(done)
		return handler(ctx, job)
	}, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()

	svc := NewNotificationService(repo, queue, nil, nil, nil)
	_, err := svc.Broadcast(context.Background(), models.BroadcastRequest{Role: models.RoleStudent, Title: "t", Message: "m"})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast was not delivered")
	}
	require.Len(t, repo.batches, 1)
	assert.Equal(t, []int64{4, 5, 6}, repo.batches[0])
}
