package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_ListOrderAndWindow(t *testing.T) {
	s := NewNotificationStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.CreateMany(ctx, []domain.Notification{
		{NotificationID: "01A", RecipientID: "r1", CreatedAt: base},
		{NotificationID: "01C", RecipientID: "r1", CreatedAt: base},
		{NotificationID: "01B", RecipientID: "r1", CreatedAt: base.Add(time.Second)},
		{NotificationID: "01D", RecipientID: "r2", CreatedAt: base},
	})
	require.NoError(t, err)

	page, total, err := s.List(ctx, "r1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "01B", page[0].NotificationID)
	assert.Equal(t, "01C", page[1].NotificationID)

	page, _, err = s.List(ctx, "r1", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, total, err = s.List(ctx, "r1", -20, 20)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, 3, total)

	page, _, err = s.List(ctx, "r1", 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestNotificationStore_OwnershipIsPartOfLookup(t *testing.T) {
	s := NewNotificationStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Notification{NotificationID: "n1", RecipientID: "r1"}))

	_, err := s.MarkRead(ctx, "r2", "n1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, "r2", "n1"), domain.ErrNotFound))

	unread, _ := s.CountUnread(ctx, "r1")
	assert.Equal(t, 1, unread)
}

func TestNotificationStore_PayloadCopied(t *testing.T) {
	s := NewNotificationStore()
	ctx := context.Background()
	p := map[string]string{"k": "v"}
	require.NoError(t, s.Create(ctx, &domain.Notification{NotificationID: "n1", RecipientID: "r1", Payload: p}))
	p["k"] = "changed"

	got, _, _ := s.List(ctx, "r1", 0, 1)
	assert.Equal(t, "v", got[0].Payload["k"])
}

func TestDirectory_JoinsEnabledDevices(t *testing.T) {
	ctx := context.Background()
	devs := NewDeviceStore()
	require.NoError(t, devs.Put(ctx, &domain.Device{DeviceID: "d1", RecipientID: "a", Token: "t1", Enable: true}))
	require.NoError(t, devs.Put(ctx, &domain.Device{DeviceID: "d2", RecipientID: "a", Token: "t2", Enable: false}))

	dir := NewDirectory("agent", devs)
	dir.Add(
		domain.Recipient{RecipientID: "a", Role: "agent", Enable: 1},
		domain.Recipient{RecipientID: "b", Role: "buyer", Enable: 1},
		domain.Recipient{RecipientID: "c", Role: "agent", Enable: 0},
	)

	rs, err := dir.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, []domain.PushTarget{{Token: "t1"}}, rs[0].PushTargets())
}

func TestDeviceStore_DeleteChecksOwner(t *testing.T) {
	ctx := context.Background()
	devs := NewDeviceStore()
	require.NoError(t, devs.Put(ctx, &domain.Device{DeviceID: "d1", RecipientID: "a", Token: "t1", Enable: true}))

	assert.True(t, errors.Is(devs.Delete(ctx, "b", "d1"), domain.ErrNotFound))
	assert.NoError(t, devs.Delete(ctx, "a", "d1"))
}
