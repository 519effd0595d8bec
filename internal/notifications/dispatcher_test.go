package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu         sync.Mutex
	nextID     uint
	rows       map[uint]*models.Notification
	failCreate bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1, rows: make(map[uint]*models.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("store unavailable")
	}
	n.ID = r.nextID
	r.nextID++
	cp := *n
	r.rows[cp.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID uint, _, _ int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			out = append(out, *row)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.IsRead = true
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, row := range r.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			row.IsRead = true
			changed++
		}
	}
	return changed, nil
}

type fakePusher struct {
	mu          sync.Mutex
	sent        map[uint][]any
	connections map[uint]int
}

func newFakePusher() *fakePusher {
	return &fakePusher{sent: make(map[uint][]any), connections: make(map[uint]int)}
}

func (p *fakePusher) SendToUser(userID uint, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[userID] = append(p.sent[userID], payload)
}

func (p *fakePusher) Connections(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connections[userID]
}

func (p *fakePusher) sentTo(userID uint) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[userID]
}

func newTestDispatcher() (*Dispatcher, *fakeNotificationRepo, *fakePusher) {
	repo := newFakeNotificationRepo()
	pusher := newFakePusher()
	return NewDispatcher(repo, nil, pusher, nil), repo, pusher
}

func TestNotify_PersistsAndPushes(t *testing.T) {
	t.Parallel()

	d, repo, pusher := newTestDispatcher()
	n, err := d.Notify(context.Background(), NotifyInput{
		Kind:        models.NotificationComment,
		RecipientID: 2,
		ActorID:     1,
		Title:       "New comment",
		Message:     "Ava commented on your article",
		Link:        "/articles/abc#comment-1",
		SourceID:    "1",
	})
	require.NoError(t, err)
	require.NotZero(t, n.ID, "returned notification carries its durable id")

	stored, err := repo.GetByID(context.Background(), n.ID)
	require.NoError(t, err)
	require.False(t, stored.IsRead)
	require.Equal(t, models.NotificationComment, stored.Kind)

	pushed := pusher.sentTo(2)
	require.Len(t, pushed, 1)
	msg, ok := pushed[0].(PushMessage)
	require.True(t, ok)
	require.Equal(t, n.ID, msg.ID)
	require.Equal(t, "/articles/abc#comment-1", msg.Link)
}

func TestNotify_DurableWithoutLiveConnections(t *testing.T) {
	t.Parallel()

	d, repo, _ := newTestDispatcher()
	n, err := d.Notify(context.Background(), NotifyInput{
		Kind:        models.NotificationLike,
		RecipientID: 5,
		ActorID:     1,
		Title:       "New like",
		Message:     "Ava liked your article",
	})
	require.NoError(t, err)

	// Retrievable through the listing even though nothing was connected.
	rows, total, err := repo.GetByRecipientID(context.Background(), 5, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, n.ID, rows[0].ID)
}

func TestNotify_PersistenceFailureSkipsPush(t *testing.T) {
	t.Parallel()

	d, repo, pusher := newTestDispatcher()
	repo.failCreate = true

	_, err := d.Notify(context.Background(), NotifyInput{
		Kind:        models.NotificationReply,
		RecipientID: 2,
		ActorID:     1,
	})
	require.ErrorIs(t, err, common.ErrPersistence)
	require.Empty(t, pusher.sentTo(2), "no push may happen when the durable write failed")
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDispatcher()
	ctx := context.Background()
	n, err := d.Notify(ctx, NotifyInput{Kind: models.NotificationComment, RecipientID: 2, ActorID: 1})
	require.NoError(t, err)

	t.Run("forbidden for other users", func(t *testing.T) {
		_, err := d.MarkRead(ctx, n.ID, 99)
		require.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := d.MarkRead(ctx, 12345, 2)
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("marks and is idempotent", func(t *testing.T) {
		marked, err := d.MarkRead(ctx, n.ID, 2)
		require.NoError(t, err)
		require.True(t, marked.IsRead)

		again, err := d.MarkRead(ctx, n.ID, 2)
		require.NoError(t, err)
		require.True(t, again.IsRead)
	})
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDispatcher()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := d.Notify(ctx, NotifyInput{Kind: models.NotificationLike, RecipientID: 4, ActorID: 1})
		require.NoError(t, err)
	}

	changed, err := d.MarkAllRead(ctx, 4)
	require.NoError(t, err)
	require.EqualValues(t, 3, changed)

	changed, err = d.MarkAllRead(ctx, 4)
	require.NoError(t, err)
	require.Zero(t, changed, "repeat call changes nothing")
}
