package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-listing-notify/internal/domain"
)

// NotificationStore keeps notifications in process memory. It is used by the
// memory backend and by tests.
type NotificationStore struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.Notification // recipient -> id -> record
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{data: make(map[string]map[string]domain.Notification)}
}

func (s *NotificationStore) CreateMany(_ context.Context, ns []domain.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range ns {
		s.put(n)
	}
	return len(ns), nil
}

func (s *NotificationStore) Create(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*n)
	return nil
}

func (s *NotificationStore) put(n domain.Notification) {
	byID, ok := s.data[n.RecipientID]
	if !ok {
		byID = make(map[string]domain.Notification)
		s.data[n.RecipientID] = byID
	}
	n.Payload = clonePayload(n.Payload)
	byID[n.NotificationID] = n
}

func (s *NotificationStore) List(_ context.Context, recipientID string, offset, limit int) ([]domain.Notification, int, error) {
	s.mu.RLock()
	all := make([]domain.Notification, 0, len(s.data[recipientID]))
	for _, n := range s.data[recipientID] {
		all = append(all, n)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].NotificationID > all[j].NotificationID
	})

	total := len(all)
	if offset < 0 || offset >= total || limit < 1 {
		return []domain.Notification{}, total, nil
	}
	end := offset + min(limit, total-offset)
	return all[offset:end], total, nil
}

func (s *NotificationStore) CountUnread(_ context.Context, recipientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.data[recipientID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.data[recipientID][notificationID]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	n.IsRead = true
	s.data[recipientID][notificationID] = n
	return &n, nil
}

func (s *NotificationStore) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified := 0
	for id, n := range s.data[recipientID] {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		s.data[recipientID][id] = n
		modified++
	}
	return modified, nil
}

func (s *NotificationStore) Delete(_ context.Context, recipientID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[recipientID][notificationID]; !ok {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	delete(s.data[recipientID], notificationID)
	return nil
}

func (s *NotificationStore) DeleteAll(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.data[recipientID])
	delete(s.data, recipientID)
	return n, nil
}

func clonePayload(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
