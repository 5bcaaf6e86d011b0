package submission

import (
	"context"
	"strings"
	"time"

	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/obs"
	"github.com/go-listing-notify/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const listingTitle = "New Vehicle Near You! 🚗"

type Service interface {
	// Submit fans a created listing out to its recipients. Dispatch and storage
	// failures are reported in the result, never as an error; only an invalid
	// listing is rejected.
	Submit(ctx context.Context, listing domain.ListingEvent) (*domain.SubmissionResult, error)
	// SendDirect pushes to one token and, when a recipient is given, records one notification.
	SendDirect(ctx context.Context, req domain.DirectSendRequest) (*domain.DirectSendResult, error)
}

type recipientResolver interface {
	Resolve(ctx context.Context, listing domain.ListingEvent) ([]domain.Recipient, error)
}

type pushDispatcher interface {
	Dispatch(ctx context.Context, targets []domain.PushTarget, content domain.PushContent) (domain.DispatchOutcome, error)
}

type notificationWriter interface {
	CreateMany(ctx context.Context, drafts []domain.NotificationDraft) (int, error)
	Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error)
}

type service struct {
	resolver        recipientResolver
	dispatcher      pushDispatcher
	notifications   notificationWriter
	hints           domain.PlatformHints
	dispatchTimeout time.Duration
	storeTimeout    time.Duration
	log             *zap.Logger
}

type ServiceDeps struct {
	Resolver        recipientResolver
	Dispatcher      pushDispatcher
	Notifications   notificationWriter
	AndroidSound    string
	IOSSound        string
	DispatchTimeout time.Duration
	StoreTimeout    time.Duration
	Log             *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		resolver:        deps.Resolver,
		dispatcher:      deps.Dispatcher,
		notifications:   deps.Notifications,
		dispatchTimeout: deps.DispatchTimeout,
		storeTimeout:    deps.StoreTimeout,
		log:             deps.Log,
	}
	if deps.AndroidSound != "" {
		s.hints.Android = &domain.AndroidHints{Sound: deps.AndroidSound}
	}
	if deps.IOSSound != "" {
		s.hints.IOS = &domain.IOSHints{Sound: deps.IOSSound}
	}
	if s.dispatchTimeout <= 0 {
		s.dispatchTimeout = 15 * time.Second
	}
	if s.storeTimeout <= 0 {
		s.storeTimeout = 15 * time.Second
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("component", "submission"))
	return s
}

func (s *service) Submit(ctx context.Context, listing domain.ListingEvent) (*domain.SubmissionResult, error) {
	if err := validate.Struct(listing); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { obs.SubmissionDuration.Observe(time.Since(start).Seconds()) }()

	log := s.log.With(zap.String("listing_id", listing.ListingID))
	res := &domain.SubmissionResult{ListingID: listing.ListingID}

	recipients, err := s.resolver.Resolve(ctx, listing)
	if err != nil {
		log.Error("resolve recipients failed", zap.Error(err))
		res.ResolveError = err.Error()
		return res, nil
	}
	res.Recipients = len(recipients)
	if len(recipients) == 0 {
		log.Info("no recipients for listing")
		return res, nil
	}

	content := listingContent(listing)
	content.Hints = s.hints
	drafts := make([]domain.NotificationDraft, 0, len(recipients))
	var targets []domain.PushTarget
	for _, r := range recipients {
		targets = append(targets, r.PushTargets()...)
		drafts = append(drafts, domain.NotificationDraft{
			RecipientID: r.RecipientID,
			Title:       content.Title,
			Body:        content.Body,
			Category:    domain.CategoryCarListing,
			Payload:     listingPayload(listing),
		})
	}

	s.fanOut(ctx,
		func(ctx context.Context) {
			out, err := s.dispatcher.Dispatch(ctx, targets, content)
			res.NotificationsSent = out.Succeeded
			if err != nil {
				log.Warn("push dispatch failed", zap.Int("tokens", len(targets)), zap.Error(err))
				res.DispatchError = err.Error()
			}
		},
		func(ctx context.Context) {
			saved, err := s.notifications.CreateMany(ctx, drafts)
			res.NotificationsSaved = saved
			if err != nil {
				log.Error("store notifications failed",
					zap.Int("saved", saved), zap.Int("recipients", len(drafts)), zap.Error(err))
				res.StoreError = err.Error()
			}
		},
	)

	log.Info("listing fan-out complete",
		zap.Int("recipients", res.Recipients),
		zap.Int("sent", res.NotificationsSent),
		zap.Int("saved", res.NotificationsSaved))
	return res, nil
}

func (s *service) SendDirect(ctx context.Context, req domain.DirectSendRequest) (*domain.DirectSendResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	content := domain.PushContent{Title: req.Title, Body: req.Body, Data: req.Payload, Hints: s.hints}
	targets := []domain.PushTarget{{Token: req.Token, Platform: req.Platform}}
	res := &domain.DirectSendResult{}

	store := func(ctx context.Context) {
		if req.RecipientID == "" {
			return
		}
		n, err := s.notifications.Create(ctx, domain.NotificationDraft{
			RecipientID: req.RecipientID,
			Title:       req.Title,
			Body:        req.Body,
			Category:    req.Category,
			Payload:     req.Payload,
		})
		if err != nil {
			s.log.Error("store direct notification failed", zap.String("recipient_id", req.RecipientID), zap.Error(err))
			res.StoreError = err.Error()
			return
		}
		res.Notification = n
	}
	dispatch := func(ctx context.Context) {
		out, err := s.dispatcher.Dispatch(ctx, targets, content)
		res.Sent = out.Succeeded > 0
		switch {
		case err != nil:
			res.DispatchError = err.Error()
		case len(out.Results) > 0 && out.Results[0].Err != nil:
			res.DispatchError = out.Results[0].Err.Error()
		case out.Attempted == 0:
			res.DispatchError = "invalid device token"
		}
	}

	s.fanOut(ctx, dispatch, store)
	return res, nil
}

// fanOut runs the dispatch and store branches concurrently and waits for both.
// Branches ignore caller cancellation and are bounded by their own timeouts.
func (s *service) fanOut(ctx context.Context, dispatch, store func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		dctx, cancel := context.WithTimeout(detached, s.dispatchTimeout)
		defer cancel()
		dispatch(dctx)
		return nil
	})
	g.Go(func() error {
		sctx, cancel := context.WithTimeout(detached, s.storeTimeout)
		defer cancel()
		store(sctx)
		return nil
	})
	_ = g.Wait()
}

func listingContent(l domain.ListingEvent) domain.PushContent {
	vehicle := strings.TrimSpace(strings.TrimSpace(l.Make) + " " + strings.TrimSpace(l.Model))
	if vehicle == "" {
		vehicle = "new vehicle"
	}
	data := listingPayload(l)
	data["category"] = domain.CategoryCarListing
	return domain.PushContent{
		Title: listingTitle,
		Body:  "A " + vehicle + " was listed nearby.",
		Data:  data,
	}
}

func listingPayload(l domain.ListingEvent) map[string]string {
	return map[string]string{
		"listingId": l.ListingID,
		"make":      l.Make,
		"model":     l.Model,
	}
}
