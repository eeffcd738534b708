package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/sse"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu    sync.Mutex
	items []*notification.Notification
}

func (m *memRepo) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, n)
	return nil
}

func (m *memRepo) CreateBatch(_ context.Context, ns []*notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ns...)
	return nil
}

func (m *memRepo) GetByUserID(_ context.Context, userID string, _, _ int, unreadOnly bool) ([]*notification.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.Notification
	for _, n := range m.items {
		if n.RecipientID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) GetUnreadCount(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.items {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) MarkAsRead(_ context.Context, ids []string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		for _, id := range ids {
			if n.ID == id && n.RecipientID == userID {
				n.IsRead = true
			}
		}
	}
	return nil
}

func (m *memRepo) MarkAllAsRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *memRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func TestQueueNotification_PersistsAndPushes(t *testing.T) {
	repo := &memRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{FlushInterval: 10 * time.Millisecond, WorkerCount: 1})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := svc.Subscribe(ctx, "ana")
	defer cleanup()

	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "ana",
		Type:        notification.TypeRequestAwaiting,
		Title:       "Nova solicitação para análise",
		Message:     "Uma solicitação aguarda sua decisão.",
		Data:        map[string]interface{}{"request_id": "r1"},
	})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, notification.TypeRequestAwaiting, ev.Data.Type)
		assert.NotEmpty(t, ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	assert.Equal(t, 1, repo.count())
}

func TestStop_FlushesQueue(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour, WorkerCount: 2})

	reqs := make([]notification.CreateNotificationRequest, 5)
	for i := range reqs {
		reqs[i] = notification.CreateNotificationRequest{RecipientID: "maria", Type: notification.TypeRequestApproved}
	}
	require.NoError(t, svc.QueueBulkNotification(context.Background(), reqs))

	svc.Stop()
	svc.Stop()
	assert.Equal(t, 5, repo.count())
}

func TestQueueNotification_FullQueueInsertsDirectly(t *testing.T) {
	repo := &memRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 1, BatchSize: 100})
	s := svc.(*notificationServiceImpl)

	// Stop the workers first so the queue stays full.
	svc.Stop()
	s.queue <- notification.CreateNotificationRequest{RecipientID: "maria"}

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{RecipientID: "maria", Type: notification.TypeRequestRejected})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count())
}

func TestGetNotificationsAndMarkAsRead(t *testing.T) {
	repo := &memRepo{items: []*notification.Notification{
		{ID: "n1", RecipientID: "maria", Type: notification.TypeRequestApproved},
		{ID: "n2", RecipientID: "maria", Type: notification.TypeRequestRejected},
		{ID: "n3", RecipientID: "ana", Type: notification.TypeRequestAwaiting},
	}}
	svc := NewNotificationService(repo, sse.NewHub(), Config{})
	defer svc.Stop()
	ctx := context.Background()

	list, err := svc.GetNotifications(ctx, "maria", 0, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.UnreadCount)

	var errs validator.ValidationErrors
	require.ErrorAs(t, svc.MarkAsRead(ctx, "maria", notification.MarkAsReadRequest{}), &errs)

	require.NoError(t, svc.MarkAsRead(ctx, "maria", notification.MarkAsReadRequest{NotificationIDs: []string{"n1", "n3"}}))
	count, err := svc.GetUnreadCount(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.GetUnreadCount(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, "maria"))
	count, err = svc.GetUnreadCount(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
