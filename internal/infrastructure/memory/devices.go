package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-listing-notify/internal/domain"
)

// DeviceStore is an in-memory device registry. It also serves as the
// recipient directory of the memory backend, see Directory.
type DeviceStore struct {
	mu      sync.RWMutex
	devices map[string]domain.Device // device id -> device
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{devices: make(map[string]domain.Device)}
}

func (s *DeviceStore) Put(_ context.Context, d *domain.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.DeviceID] = *d
	return nil
}

func (s *DeviceStore) Get(_ context.Context, deviceID string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[deviceID]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	return &d, nil
}

func (s *DeviceStore) GetByToken(_ context.Context, token string) (*domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d.Token == token {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("device with token: %w", domain.ErrNotFound)
}

func (s *DeviceStore) ListByRecipient(_ context.Context, recipientID string) ([]domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Device{}
	for _, d := range s.devices {
		if d.RecipientID == recipientID && d.Enable {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (s *DeviceStore) Delete(_ context.Context, recipientID, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[deviceID]
	if !ok || d.RecipientID != recipientID || !d.Enable {
		return fmt.Errorf("device %s: %w", deviceID, domain.ErrNotFound)
	}
	delete(s.devices, deviceID)
	return nil
}
