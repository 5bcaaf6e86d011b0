package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/obs"
	"github.com/go-listing-notify/internal/pkg/id"
	"github.com/go-listing-notify/internal/pkg/validate"
	"go.uber.org/zap"
)

type Service interface {
	// CreateMany validates and stores drafts, skipping invalid ones. It returns
	// the number of records actually written; on a partial backend failure the
	// count is still reported alongside an error wrapping domain.ErrStorage.
	CreateMany(ctx context.Context, drafts []domain.NotificationDraft) (int, error)
	Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error)
	List(ctx context.Context, recipientID string, page, pageSize int) (*domain.NotificationPage, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, recipientID, notificationID string) error
	DeleteAll(ctx context.Context, recipientID string) (int, error)
}

// Store is the persistence contract shared by every backend. Lookups by id
// always include the recipient, so a foreign record is indistinguishable from
// a missing one.
type Store interface {
	CreateMany(ctx context.Context, ns []domain.Notification) (int, error)
	Create(ctx context.Context, n *domain.Notification) error
	// List returns the window [offset, offset+limit) and the recipient's total.
	// A negative offset yields an empty window with the total.
	List(ctx context.Context, recipientID string, offset, limit int) ([]domain.Notification, int, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, recipientID, notificationID string) error
	DeleteAll(ctx context.Context, recipientID string) (int, error)
}

type service struct {
	store           Store
	log             *zap.Logger
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

type ServiceDeps struct {
	Store           Store
	Log             *zap.Logger
	Now             func() time.Time
	DefaultPageSize int
	MaxPageSize     int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:           deps.Store,
		log:             deps.Log,
		now:             deps.Now,
		defaultPageSize: deps.DefaultPageSize,
		maxPageSize:     deps.MaxPageSize,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultPageSize < 1 {
		s.defaultPageSize = 20
	}
	if s.maxPageSize < 1 {
		s.maxPageSize = 100
	}
	s.log = s.log.With(zap.String("component", "notification"))
	return s
}

func (s *service) CreateMany(ctx context.Context, drafts []domain.NotificationDraft) (int, error) {
	records := make([]domain.Notification, 0, len(drafts))
	skipped := 0
	for _, d := range drafts {
		if err := validate.Struct(d); err != nil {
			skipped++
			s.log.Warn("skipping invalid notification draft",
				zap.String("recipient_id", d.RecipientID), zap.Error(err))
			continue
		}
		records = append(records, s.newRecord(d))
	}
	if skipped > 0 {
		obs.NotificationsStored.WithLabelValues("invalid").Add(float64(skipped))
	}
	if len(records) == 0 {
		return 0, nil
	}

	saved, err := s.store.CreateMany(ctx, records)
	obs.NotificationsStored.WithLabelValues("saved").Add(float64(saved))
	if failed := len(records) - saved; failed > 0 {
		obs.NotificationsStored.WithLabelValues("failed").Add(float64(failed))
	}
	if err != nil {
		return saved, storageErr("create notifications", err)
	}
	return saved, nil
}

func (s *service) Create(ctx context.Context, draft domain.NotificationDraft) (*domain.Notification, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, err
	}
	n := s.newRecord(draft)
	if err := s.store.Create(ctx, &n); err != nil {
		obs.NotificationsStored.WithLabelValues("failed").Inc()
		return nil, storageErr("create notification", err)
	}
	obs.NotificationsStored.WithLabelValues("saved").Inc()
	return &n, nil
}

func (s *service) newRecord(d domain.NotificationDraft) domain.Notification {
	nid, at := id.NewStamped(s.now)
	category := d.Category
	if category == "" {
		category = domain.CategorySystem
	}
	return domain.Notification{
		NotificationID: nid,
		RecipientID:    d.RecipientID,
		Title:          d.Title,
		Body:           d.Body,
		Category:       category,
		Payload:        d.Payload,
		IsRead:         false,
		CreatedAt:      at.UTC(),
	}
}

func (s *service) List(ctx context.Context, recipientID string, page, pageSize int) (*domain.NotificationPage, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	// A page past the addressable range only needs the total.
	offset := -1
	if page-1 <= (math.MaxInt-pageSize)/pageSize {
		offset = (page - 1) * pageSize
	}
	data, total, err := s.store.List(ctx, recipientID, offset, pageSize)
	if err != nil {
		return nil, storageErr("list notifications", err)
	}
	if data == nil {
		data = []domain.Notification{}
	}
	return &domain.NotificationPage{Data: data, Pagination: domain.NewPagination(total, page, pageSize)}, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	n, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, storageErr("count unread", err)
	}
	return n, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	if err := checkIDs(recipientID, notificationID); err != nil {
		return nil, err
	}
	n, err := s.store.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return nil, storageErr("mark read", err)
	}
	return n, nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	n, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return n, storageErr("mark all read", err)
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, recipientID, notificationID string) error {
	if err := checkIDs(recipientID, notificationID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, recipientID, notificationID); err != nil {
		return storageErr("delete notification", err)
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context, recipientID string) (int, error) {
	if recipientID == "" {
		return 0, fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	n, err := s.store.DeleteAll(ctx, recipientID)
	if err != nil {
		return n, storageErr("delete all notifications", err)
	}
	s.log.Info("notifications cleared", zap.String("recipient_id", recipientID), zap.Int("deleted", n))
	return n, nil
}

func checkIDs(recipientID, notificationID string) error {
	if recipientID == "" {
		return fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	if !id.Valid(notificationID) {
		return fmt.Errorf("invalid notification id %q: %w", notificationID, domain.ErrBadRequest)
	}
	return nil
}

// storageErr passes domain errors through and tags anything else as a storage failure.
func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrBadRequest) || errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
