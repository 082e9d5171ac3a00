package services

import (
	"context"
	"fmt"

	"makeusbetter-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Notification is a push payload addressed to a single device.
type Notification struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// Notifier delivers push notifications. Delivery is best-effort: callers
// treat a false return or an error as "not delivered" and move on.
type Notifier interface {
	Send(ctx context.Context, deviceToken string, n Notification) (bool, error)
}

// NewNotifier builds the configured push sender. Missing credentials
// yield a no-op sender rather than an error, so the rest of the app runs
// with push disabled.
func NewNotifier(cfg config.APNsConfig) (Notifier, error) {
	if cfg.KeyFile == "" {
		log.Warn().Msg("Push credentials not configured, notifications disabled")
		return NoopNotifier{}, nil
	}
	return NewAPNsNotifier(cfg)
}

// APNsNotifier sends notifications over APNs with token-based auth.
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier creates an APNs-backed notifier
func NewAPNsNotifier(cfg config.APNsConfig) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsNotifier{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

// Send delivers one notification and reports whether APNs accepted it.
func (n *APNsNotifier) Send(ctx context.Context, deviceToken string, notification Notification) (bool, error) {
	p := payload.NewPayload().
		AlertTitle(notification.Title).
		AlertBody(notification.Body).
		Sound("default").
		MutableContent()

	for key, value := range notification.Data {
		p.Custom(key, value)
	}
	if notification.ImageURL != "" {
		p.Custom("imageUrl", notification.ImageURL)
	}

	res, err := n.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     p,
	})
	if err != nil {
		return false, fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return false, fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return true, nil
}

// NoopNotifier drops every notification. Used when push credentials are
// absent.
type NoopNotifier struct{}

// Send reports the notification as not delivered.
func (NoopNotifier) Send(ctx context.Context, deviceToken string, n Notification) (bool, error) {
	log.Debug().Str("title", n.Title).Msg("Push disabled, dropping notification")
	return false, nil
}
