package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-listing-notify/internal/domain"
	"go.uber.org/zap"
)

type listingSubmitter interface {
	Submit(ctx context.Context, listing domain.ListingEvent) (*domain.SubmissionResult, error)
}

// ListingHandler decodes listing-created events and runs the fan-out for each.
func ListingHandler(svc listingSubmitter, log *zap.Logger) Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, _, value []byte) error {
		var ev domain.ListingEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode listing event: %w: %w", ErrPoison, err)
		}
		res, err := svc.Submit(ctx, ev)
		if err != nil {
			if errors.Is(err, domain.ErrBadRequest) {
				return fmt.Errorf("listing %q: %w: %w", ev.ListingID, ErrPoison, err)
			}
			return err
		}
		log.Info("listing event handled",
			zap.String("listing_id", res.ListingID),
			zap.Int("recipients", res.Recipients),
			zap.Int("sent", res.NotificationsSent),
			zap.Int("saved", res.NotificationsSaved))
		return nil
	}
}
