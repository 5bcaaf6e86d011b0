package dispatch

import (
	"context"
	"fmt"

	"github.com/go-listing-notify/internal/domain"
	"go.uber.org/zap"
)

// LogTransport logs every push instead of sending it. Used for local development.
type LogTransport struct {
	Log *zap.Logger
}

func (t LogTransport) Send(_ context.Context, msg domain.PushMessage) ([]domain.TokenResult, error) {
	t.Log.Info("push (log transport)",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Int("tokens", len(msg.Targets)))
	out := make([]domain.TokenResult, len(msg.Targets))
	for i, tg := range msg.Targets {
		out[i] = domain.TokenResult{Token: tg.Token, Success: true, MessageID: fmt.Sprintf("log-%d", i)}
	}
	return out, nil
}

// Unavailable is installed when the configured transport could not be built at
// start-up. Every send fails as a whole, which callers absorb like any other
// transport outage.
type Unavailable struct {
	Err error
}

func (u Unavailable) Send(context.Context, domain.PushMessage) ([]domain.TokenResult, error) {
	return nil, fmt.Errorf("push transport unavailable: %w", u.Err)
}
