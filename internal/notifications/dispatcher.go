// Package notifications persists notification records and pushes them to the
// recipient's live connections. The durable write is the source of truth;
// live delivery is best effort and its failures never surface to callers.
package notifications

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/repositories"
	"github.com/nayonf/inkline/backend/pkg/firebase"
)

// Pusher is the live-delivery side of the connection registry. Satisfied by
// *realtime.Hub.
type Pusher interface {
	SendToUser(userID uint, payload any)
	Connections(userID uint) int
}

// NotifyInput carries everything a workflow knows about the event it wants to
// alert the recipient about. Callers are responsible for the
// "don't notify yourself" check before calling Notify.
type NotifyInput struct {
	Kind        string
	RecipientID uint
	ActorID     uint
	Title       string
	Message     string
	Link        string
	SourceID    string
}

// PushMessage is the wire shape delivered over live connections: the persisted
// notification including its durable id and read flag.
type PushMessage struct {
	ID        uint      `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	SourceID  string    `json:"source_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher is constructed once at process start and handed to every
// workflow that needs to alert users.
type Dispatcher struct {
	notifications repositories.NotificationRepository
	devices       repositories.DeviceTokenRepository
	hub           Pusher
	messenger     *firebase.Messenger // nil when FCM is not configured
}

// NewDispatcher creates a Dispatcher. messenger may be nil, in which case
// recipients without live connections simply see the notification on their
// next poll.
func NewDispatcher(notifRepo repositories.NotificationRepository, deviceRepo repositories.DeviceTokenRepository, hub Pusher, messenger *firebase.Messenger) *Dispatcher {
	return &Dispatcher{
		notifications: notifRepo,
		devices:       deviceRepo,
		hub:           hub,
		messenger:     messenger,
	}
}

// Notify persists the notification, then pushes it to the recipient's live
// connections. If persistence fails the whole operation fails with
// ErrPersistence and no push is attempted. Push failures are logged and
// swallowed; the returned notification carries its durable id regardless of
// live-delivery outcome.
func (d *Dispatcher) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	notification := &models.Notification{
		Kind:        input.Kind,
		ActorID:     input.ActorID,
		RecipientID: input.RecipientID,
		Title:       input.Title,
		Message:     input.Message,
		Link:        input.Link,
		SourceID:    input.SourceID,
		CreatedAt:   time.Now(),
	}

	if err := d.notifications.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	d.hub.SendToUser(notification.RecipientID, PushMessage{
		ID:        notification.ID,
		Kind:      notification.Kind,
		Title:     notification.Title,
		Message:   notification.Message,
		Link:      notification.Link,
		SourceID:  notification.SourceID,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
	})

	// The connection count is a snapshot: a handshake finishing between the
	// live send and this check can leave the user with neither delivery until
	// their next poll. Live push is best effort, so that window is tolerated.
	if d.messenger != nil && d.hub.Connections(notification.RecipientID) == 0 {
		go d.pushToDevices(notification)
	}

	return notification, nil
}

// pushToDevices sends the notification to the recipient's registered FCM
// tokens. Best effort on its own deadline, detached from the request context.
func (d *Dispatcher) pushToDevices(notification *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokens, err := d.devices.GetTokensByUserID(ctx, notification.RecipientID)
	if err != nil {
		log.Printf("notifications: loading device tokens for user %d failed: %v", notification.RecipientID, err)
		return
	}

	data := map[string]string{
		"id":        strconv.FormatUint(uint64(notification.ID), 10),
		"kind":      notification.Kind,
		"title":     notification.Title,
		"message":   notification.Message,
		"link":      notification.Link,
		"source_id": notification.SourceID,
	}
	for _, token := range tokens {
		if err := d.messenger.Send(ctx, token, data); err != nil {
			log.Printf("notifications: FCM push to user %d failed: %v", notification.RecipientID, err)
			if firebase.IsTokenNotRegistered(err) {
				if delErr := d.devices.DeleteToken(ctx, token); delErr != nil {
					log.Printf("notifications: removing stale device token failed: %v", delErr)
				}
			}
		}
	}
}

// MarkRead sets the read flag on one notification. Fails with ErrNotFound if
// it does not exist and ErrForbidden if it belongs to another user; marking an
// already-read notification again is a no-op success.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID, requestingUserID uint) (*models.Notification, error) {
	notification, err := d.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.RecipientID != requestingUserID {
		return nil, common.ErrForbidden
	}
	if notification.IsRead {
		return notification, nil
	}
	if err := d.notifications.MarkAsRead(ctx, notificationID); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

// MarkAllRead sets the read flag on all of the user's unread notifications and
// returns how many changed; repeated calls return 0.
func (d *Dispatcher) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return d.notifications.MarkAllAsRead(ctx, userID)
}
