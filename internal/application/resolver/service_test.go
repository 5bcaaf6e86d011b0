package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) ListActive(ctx context.Context) ([]domain.Recipient, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).([]domain.Recipient); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func recipient(id, region string, enable int, tokens ...string) domain.Recipient {
	r := domain.Recipient{RecipientID: id, Region: region, Enable: enable}
	for _, t := range tokens {
		r.Devices = append(r.Devices, domain.Device{Token: t, Enable: true})
	}
	return r
}

func listing() domain.ListingEvent {
	return domain.ListingEvent{ListingID: "l1", Make: "Ford", Model: "Focus", Region: "north"}
}

func TestResolve_MissingListingID(t *testing.T) {
	dir := &mockDirectory{}
	svc := NewService(dir, nil, nil)

	_, err := svc.Resolve(context.Background(), domain.ListingEvent{})

	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	dir.AssertNotCalled(t, "ListActive", mock.Anything)
}

func TestResolve_DefaultPolicy_KeepsTokenlessDropsInactive(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("ListActive", mock.Anything).Return([]domain.Recipient{
		recipient("a", "", 1, "t1"),
		recipient("b", "", 1),
		recipient("c", "", 0, "t3"),
	}, nil)
	svc := NewService(dir, nil, nil)

	got, err := svc.Resolve(context.Background(), listing())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RecipientID)
	assert.Equal(t, "b", got[1].RecipientID)
}

func TestResolve_DedupesPreservingOrder(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("ListActive", mock.Anything).Return([]domain.Recipient{
		recipient("b", "", 1),
		recipient("a", "", 1),
		recipient("b", "", 1, "late"),
		recipient("", "", 1),
	}, nil)
	svc := NewService(dir, nil, nil)

	got, err := svc.Resolve(context.Background(), listing())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].RecipientID)
	assert.Empty(t, got[0].Devices)
	assert.Equal(t, "a", got[1].RecipientID)
}

func TestResolve_ComposedPolicy(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("ListActive", mock.Anything).Return([]domain.Recipient{
		recipient("a", "north", 1, "t1"),
		recipient("b", "north", 1),
		recipient("c", "South", 1, "t3"),
		recipient("d", "NORTH", 1, "t4"),
	}, nil)
	svc := NewService(dir, All(ActiveRecipients, WithDeviceToken, SameRegion), nil)

	got, err := svc.Resolve(context.Background(), listing())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RecipientID)
	assert.Equal(t, "d", got[1].RecipientID)
}

func TestResolve_EmptyDirectory(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("ListActive", mock.Anything).Return([]domain.Recipient{}, nil)
	svc := NewService(dir, nil, nil)

	got, err := svc.Resolve(context.Background(), listing())

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_DirectoryError(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("ListActive", mock.Anything).Return(nil, domain.ErrStorage)
	svc := NewService(dir, nil, nil)

	_, err := svc.Resolve(context.Background(), listing())

	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestSameRegion_NoListingRegionMatchesAll(t *testing.T) {
	assert.True(t, SameRegion.Allow(domain.ListingEvent{ListingID: "x"}, recipient("a", "west", 1)))
}
