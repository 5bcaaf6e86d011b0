package memory

import (
	"context"
	"sync"

	"github.com/go-listing-notify/internal/domain"
)

// Directory is a fixed recipient list joined with the devices registered in a
// DeviceStore. Order of insertion is the directory order.
type Directory struct {
	mu         sync.RWMutex
	role       string
	recipients []domain.Recipient
	devices    *DeviceStore
}

// NewDirectory returns a directory that lists recipients with the given role.
// An empty role lists everyone.
func NewDirectory(role string, devices *DeviceStore) *Directory {
	return &Directory{role: role, devices: devices}
}

// Add appends recipients to the directory.
func (d *Directory) Add(rs ...domain.Recipient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recipients = append(d.recipients, rs...)
}

func (d *Directory) ListActive(ctx context.Context) ([]domain.Recipient, error) {
	d.mu.RLock()
	rs := make([]domain.Recipient, 0, len(d.recipients))
	for _, r := range d.recipients {
		if !r.Active() || (d.role != "" && r.Role != d.role) {
			continue
		}
		rs = append(rs, r)
	}
	d.mu.RUnlock()

	if d.devices == nil {
		return rs, nil
	}
	for i := range rs {
		devs, err := d.devices.ListByRecipient(ctx, rs[i].RecipientID)
		if err != nil {
			return nil, err
		}
		rs[i].Devices = devs
	}
	return rs, nil
}
