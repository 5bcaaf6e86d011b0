package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/go-listing-notify/internal/config"
	"github.com/go-listing-notify/internal/domain"
	"google.golang.org/api/option"
)

// maxMulticast is the FCM limit on tokens per SendEachForMulticast call.
const maxMulticast = 500

// multicastSender is the subset of *messaging.Client used here.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Transport sends pushes through Firebase Cloud Messaging.
type Transport struct {
	client multicastSender
}

// NewTransport builds a Firebase app and messaging client from cfg. The client
// is owned by the returned Transport; nothing is registered globally.
func NewTransport(ctx context.Context, cfg config.Push) (*Transport, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &Transport{client: client}, nil
}

func (t *Transport) Send(ctx context.Context, msg domain.PushMessage) ([]domain.TokenResult, error) {
	results := make([]domain.TokenResult, 0, len(msg.Targets))
	for start := 0; start < len(msg.Targets); start += maxMulticast {
		end := min(start+maxMulticast, len(msg.Targets))
		chunk := msg.Targets[start:end]

		br, err := t.client.SendEachForMulticast(ctx, buildMessage(chunk, msg.PushContent))
		if err != nil {
			// Nothing delivered yet means the transport itself is down.
			if start == 0 {
				return nil, err
			}
			for _, tg := range chunk {
				results = append(results, domain.TokenResult{Token: tg.Token, Err: err})
			}
			continue
		}
		results = append(results, toResults(chunk, br)...)
	}
	return results, nil
}

func buildMessage(targets []domain.PushTarget, c domain.PushContent) *messaging.MulticastMessage {
	tokens := make([]string, len(targets))
	for i, tg := range targets {
		tokens[i] = tg.Token
	}
	m := &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   c.Data,
		Notification: &messaging.Notification{
			Title: c.Title,
			Body:  c.Body,
		},
	}
	if a := c.Hints.Android; a != nil && (a.Sound != "" || a.ChannelID != "") {
		m.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound:     a.Sound,
				ChannelID: a.ChannelID,
			},
		}
	}
	if i := c.Hints.IOS; i != nil && (i.Sound != "" || i.Badge != nil) {
		m.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: i.Sound,
					Badge: i.Badge,
				},
			},
		}
	}
	return m
}

func toResults(chunk []domain.PushTarget, br *messaging.BatchResponse) []domain.TokenResult {
	out := make([]domain.TokenResult, len(chunk))
	for i, tg := range chunk {
		out[i] = domain.TokenResult{Token: tg.Token}
		if br == nil || i >= len(br.Responses) || br.Responses[i] == nil {
			out[i].Err = fmt.Errorf("no response for token")
			continue
		}
		r := br.Responses[i]
		out[i].Success = r.Success
		out[i].MessageID = r.MessageID
		if !r.Success {
			out[i].Err = r.Error
			out[i].Unregistered = r.Error != nil && messaging.IsUnregistered(r.Error)
		}
	}
	return out
}
