package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/notifications"
	"github.com/nayonf/inkline/backend/internal/realtime"
	"github.com/stretchr/testify/require"
)

func newNotificationTestEnv(t *testing.T) (*NotificationHandler, *notifications.Dispatcher) {
	t.Helper()
	notifRepo := newFakeNotificationRepo()
	dispatcher := notifications.NewDispatcher(notifRepo, nil, realtime.NewHub(), nil)
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Name: "Ava"},
	}}
	return NewNotificationHandler(notifRepo, users, dispatcher), dispatcher
}

func notificationRequest(method, target string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID, Name: "user"})
	}
	return c, rec
}

func seedNotification(t *testing.T, dispatcher *notifications.Dispatcher, recipientID uint) *models.Notification {
	t.Helper()
	n, err := dispatcher.Notify(context.Background(), notifications.NotifyInput{
		Kind:        models.NotificationComment,
		RecipientID: recipientID,
		ActorID:     1,
		Title:       "New comment",
		Message:     "Ava commented on your article",
	})
	require.NoError(t, err)
	return n
}

func TestGetNotifications_ListsNewestFirst(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	first := seedNotification(t, dispatcher, 2)
	second := seedNotification(t, dispatcher, 2)

	c, rec := notificationRequest(http.MethodGet, "/notifications", 2)
	require.NoError(t, handler.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Notifications []EnrichedNotification `json:"notifications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Notifications, 2)
	require.Equal(t, second.ID, body.Data.Notifications[0].ID)
	require.Equal(t, first.ID, body.Data.Notifications[1].ID)
	require.Equal(t, "Ava", body.Data.Notifications[0].Actor.Name, "actor is enriched")
}

func TestGetNotifications_OversizedLimitClamped(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	seedNotification(t, dispatcher, 2)

	c, rec := notificationRequest(http.MethodGet, "/notifications?limit=500", 2)
	require.NoError(t, handler.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Meta struct {
			ItemsPerPage int `json:"itemsPerPage"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 50, body.Meta.ItemsPerPage, "oversized limit clamps to the maximum")
}

func TestGetNotifications_Unauthenticated(t *testing.T) {
	handler, _ := newNotificationTestEnv(t)

	c, _ := notificationRequest(http.MethodGet, "/notifications", 0)
	err := handler.GetNotifications(c)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
}

func TestMarkAsRead_OwnershipEnforced(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	n := seedNotification(t, dispatcher, 2)

	c, _ := notificationRequest(http.MethodPut, "/notifications/"+strconv.Itoa(int(n.ID))+"/read", 99)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(n.ID)))

	err := handler.MarkAsRead(c)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
}

func TestMarkAsRead_Succeeds(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	n := seedNotification(t, dispatcher, 2)

	c, rec := notificationRequest(http.MethodPut, "/notifications/1/read", 2)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(n.ID)))

	require.NoError(t, handler.MarkAsRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := dispatcher.MarkAllRead(context.Background(), 2)
	require.NoError(t, err)
	require.Zero(t, count, "nothing left unread")
}

func TestMarkAsRead_NotFound(t *testing.T) {
	handler, _ := newNotificationTestEnv(t)

	c, _ := notificationRequest(http.MethodPut, "/notifications/12345/read", 2)
	c.SetParamNames("id")
	c.SetParamValues("12345")

	err := handler.MarkAsRead(c)
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, err.(*echo.HTTPError).Code)
}

func TestMarkAllAsRead_ReturnsChangedCount(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	seedNotification(t, dispatcher, 2)
	seedNotification(t, dispatcher, 2)

	c, rec := notificationRequest(http.MethodPut, "/notifications/read-all", 2)
	require.NoError(t, handler.MarkAllAsRead(c))

	var body struct {
		Data struct {
			Updated int64 `json:"updated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 2, body.Data.Updated)

	// Second pass finds nothing unread.
	c, rec = notificationRequest(http.MethodPut, "/notifications/read-all", 2)
	require.NoError(t, handler.MarkAllAsRead(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Zero(t, body.Data.Updated)
}

func TestGetUnreadCount(t *testing.T) {
	handler, dispatcher := newNotificationTestEnv(t)
	seedNotification(t, dispatcher, 2)

	c, rec := notificationRequest(http.MethodGet, "/notifications/unread-count", 2)
	require.NoError(t, handler.GetUnreadCount(c))

	var body struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 1, body.Data.Count)
}
