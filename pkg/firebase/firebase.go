package firebase

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Messenger wraps the Firebase Cloud Messaging client used to push
// notifications to devices without a live socket connection.
type Messenger struct {
	FirebaseApp *firebase.App
	client      *messaging.Client
}

// InitMessenger initializes the Firebase application and messaging client
func InitMessenger(ctx context.Context, credentialsPath string) (*Messenger, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("Firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	log.Println("Firebase app and messaging client initialized successfully!")
	return &Messenger{FirebaseApp: firebaseApp, client: client}, nil
}

// Send delivers a data message to a single registration token.
func (m *Messenger) Send(ctx context.Context, token string, data map[string]string) error {
	_, err := m.client.Send(ctx, &messaging.Message{
		Token: token,
		Data:  data,
	})
	return err
}

// IsTokenNotRegistered reports whether the send failure means the device token
// is stale and should be dropped.
func IsTokenNotRegistered(err error) bool {
	return messaging.IsRegistrationTokenNotRegistered(err)
}
