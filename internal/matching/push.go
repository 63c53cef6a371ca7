package matching

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// ─── Push port ───────────────────────────────────────────────────────────────

// PushMessage is one multicast job alert.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendResult is the per-token outcome of a multicast send.
type SendResult struct {
	Token string
	Err   error

	// Unregistered marks the token as permanently invalid; the caller
	// prunes the endpoint. Any other failure is treated as transient.
	Unregistered bool
}

// PushSender is the outbound delivery port.
type PushSender interface {
	// SendMulticast sends msg to every token in one request and reports
	// per-token outcomes. The pipeline sends at most once per booking;
	// retries are the transport's business.
	SendMulticast(ctx context.Context, tokens []string, msg PushMessage) ([]SendResult, error)
}

// ─── FCM adapter ─────────────────────────────────────────────────────────────

// FCMSender implements PushSender on Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender wraps an initialised messaging client.
func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

// SendMulticast issues one SendEachForMulticast call and maps each
// SendResponse back onto its token, flagging unregistered tokens.
func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, msg PushMessage) ([]SendResult, error) {
	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fcm multicast: %w", err)
	}

	results := make([]SendResult, len(resp.Responses))
	for i, r := range resp.Responses {
		results[i] = SendResult{
			Token:        tokens[i],
			Err:          r.Error,
			Unregistered: r.Error != nil && messaging.IsUnregistered(r.Error),
		}
	}
	return results, nil
}

// ─── Payload ─────────────────────────────────────────────────────────────────

// buildJobAlert assembles the multicast payload for one booking. The data
// block carries the base64 booking token twice (id and deep link) so the
// app resolves both to the same booking.
func buildJobAlert(bookingToken, serviceJSON, locationSummary string, totalCost float64, at time.Time) PushMessage {
	return PushMessage{
		Title: "🔔 ClickSolver Has a Job for You!",
		Body:  "💼 A user needs help! Accept now to support your ClickSolver family. 🤝",
		Data: map[string]string{
			"user_notification_id": bookingToken,
			"service":              serviceJSON,
			"location":             locationSummary,
			"click_action":         "FLUTTER_NOTIFICATION_CLICK",
			"cost":                 strconv.FormatFloat(totalCost, 'f', -1, 64),
			"targetUrl":            "/acceptance/" + bookingToken,
			"screen":               "Acceptance",
			"date":                 at.Format("Jan 02, 2006"),
			"time":                 at.Format("03:04 PM"),
			"type":                 "normal",
		},
	}
}
