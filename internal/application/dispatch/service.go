package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/obs"
	"go.uber.org/zap"
)

// maxTokenLen bounds accepted device tokens; FCM and APNs tokens are far shorter.
const maxTokenLen = 4096

var (
	androidSoundRe = regexp.MustCompile(`^[a-z0-9_]+$`)
	iosSoundRe     = regexp.MustCompile(`^[A-Za-z0-9_\-]+\.(wav|aiff|caf)$`)
)

// Transport delivers one push message to many tokens. It returns one result per
// target, in target order, or an error when the transport failed as a whole
// (network, credentials). Token-level failures must be reported as results.
type Transport interface {
	Send(ctx context.Context, msg domain.PushMessage) ([]domain.TokenResult, error)
}

type Service interface {
	// Dispatch sends content to the deduplicated targets. A non-nil error
	// wraps domain.ErrDispatch and means no token was delivered.
	Dispatch(ctx context.Context, targets []domain.PushTarget, content domain.PushContent) (domain.DispatchOutcome, error)
}

type service struct {
	transport Transport
	log       *zap.Logger
}

func NewService(transport Transport, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{transport: transport, log: log.With(zap.String("component", "dispatch"))}
}

func (s *service) Dispatch(ctx context.Context, targets []domain.PushTarget, content domain.PushContent) (domain.DispatchOutcome, error) {
	clean := Dedupe(targets)
	if len(clean) == 0 {
		return domain.DispatchOutcome{}, nil
	}

	content.Hints = s.sanitizeHints(content.Hints)
	msg := domain.PushMessage{Targets: clean, PushContent: content}

	results, err := s.transport.Send(ctx, msg)
	if err != nil {
		obs.PushBatchFailures.Inc()
		return domain.DispatchOutcome{Attempted: len(clean), Failed: len(clean)},
			fmt.Errorf("%w: %v", domain.ErrDispatch, err)
	}

	out := domain.DispatchOutcome{Attempted: len(clean), Results: results}
	for _, r := range results {
		switch {
		case r.Success:
			out.Succeeded++
			obs.PushTokens.WithLabelValues("success").Inc()
		case r.Unregistered:
			out.Failed++
			obs.PushTokens.WithLabelValues("unregistered").Inc()
		default:
			out.Failed++
			obs.PushTokens.WithLabelValues("failure").Inc()
		}
	}
	// A transport that under-reports leaves the remainder as failures.
	if missing := len(clean) - len(results); missing > 0 {
		out.Failed += missing
	}
	if out.Failed > 0 {
		s.log.Info("push partially delivered",
			zap.Int("attempted", out.Attempted),
			zap.Int("succeeded", out.Succeeded),
			zap.Int("failed", out.Failed))
	}
	return out, nil
}

// Dedupe trims tokens, drops empty or malformed ones and removes duplicates.
// The first occurrence of a token wins, including its platform.
func Dedupe(targets []domain.PushTarget) []domain.PushTarget {
	seen := make(map[string]struct{}, len(targets))
	out := make([]domain.PushTarget, 0, len(targets))
	for _, t := range targets {
		tok := strings.TrimSpace(t.Token)
		if !validToken(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, domain.PushTarget{Token: tok, Platform: t.Platform})
	}
	return out
}

func validToken(tok string) bool {
	if tok == "" || len(tok) > maxTokenLen {
		return false
	}
	return !strings.ContainsAny(tok, " \t\r\n")
}

// sanitizeHints drops a malformed platform hint without touching the others.
func (s *service) sanitizeHints(h domain.PlatformHints) domain.PlatformHints {
	if h.Android != nil && h.Android.Sound != "" && !androidSoundRe.MatchString(h.Android.Sound) {
		s.log.Warn("dropping malformed android sound hint", zap.String("sound", h.Android.Sound))
		a := *h.Android
		a.Sound = ""
		h.Android = &a
	}
	if h.IOS != nil {
		i := *h.IOS
		if i.Sound != "" && !iosSoundRe.MatchString(i.Sound) {
			s.log.Warn("dropping malformed ios sound hint", zap.String("sound", i.Sound))
			i.Sound = ""
		}
		if i.Badge != nil && *i.Badge < 0 {
			s.log.Warn("dropping negative ios badge hint", zap.Int("badge", *i.Badge))
			i.Badge = nil
		}
		h.IOS = &i
	}
	return h
}
