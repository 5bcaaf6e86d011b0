package resolver

import (
	"context"
	"fmt"

	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/pkg/validate"
	"go.uber.org/zap"
)

// Directory is the recipient source. It is read, never written.
type Directory interface {
	ListActive(ctx context.Context) ([]domain.Recipient, error)
}

type Service interface {
	// Resolve returns the recipients to alert for listing, in directory order.
	// An empty result is not an error.
	Resolve(ctx context.Context, listing domain.ListingEvent) ([]domain.Recipient, error)
}

type service struct {
	dir    Directory
	policy Policy
	log    *zap.Logger
}

// NewService returns a resolver. A nil policy means ActiveRecipients.
func NewService(dir Directory, policy Policy, log *zap.Logger) Service {
	if policy == nil {
		policy = ActiveRecipients
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{dir: dir, policy: policy, log: log.With(zap.String("component", "resolver"))}
}

func (s *service) Resolve(ctx context.Context, listing domain.ListingEvent) ([]domain.Recipient, error) {
	if err := validate.Struct(listing); err != nil {
		return nil, err
	}
	candidates, err := s.dir.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.Recipient, 0, len(candidates))
	for _, r := range candidates {
		if r.RecipientID == "" {
			continue
		}
		if _, dup := seen[r.RecipientID]; dup {
			continue
		}
		if !s.policy.Allow(listing, r) {
			continue
		}
		seen[r.RecipientID] = struct{}{}
		out = append(out, r)
	}
	s.log.Debug("recipients resolved",
		zap.String("listing_id", listing.ListingID),
		zap.Int("candidates", len(candidates)),
		zap.Int("recipients", len(out)))
	return out, nil
}
