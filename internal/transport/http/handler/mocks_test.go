package handler

import (
	"context"

	"github.com/go-listing-notify/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) CreateMany(ctx context.Context, drafts []domain.NotificationDraft) (int, error) {
	args := m.Called(ctx, drafts)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) Create(ctx context.Context, d domain.NotificationDraft) (*domain.Notification, error) {
	args := m.Called(ctx, d)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) List(ctx context.Context, recipientID string, page, pageSize int) (*domain.NotificationPage, error) {
	args := m.Called(ctx, recipientID, page, pageSize)
	if p, _ := args.Get(0).(*domain.NotificationPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) MarkRead(ctx context.Context, recipientID, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, recipientID, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) Delete(ctx context.Context, recipientID, notificationID string) error {
	return m.Called(ctx, recipientID, notificationID).Error(0)
}

func (m *mockNotifSvc) DeleteAll(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

type mockDeviceSvc struct{ mock.Mock }

func (m *mockDeviceSvc) RegisterToken(ctx context.Context, recipientID string, req domain.RegisterTokenRequest) (*domain.Device, error) {
	args := m.Called(ctx, recipientID, req)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeviceSvc) List(ctx context.Context, recipientID string) ([]domain.Device, error) {
	args := m.Called(ctx, recipientID)
	ds, _ := args.Get(0).([]domain.Device)
	return ds, args.Error(1)
}

func (m *mockDeviceSvc) Delete(ctx context.Context, recipientID, deviceID string) error {
	return m.Called(ctx, recipientID, deviceID).Error(0)
}

type mockSubmissionSvc struct{ mock.Mock }

func (m *mockSubmissionSvc) Submit(ctx context.Context, l domain.ListingEvent) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, l)
	if r, _ := args.Get(0).(*domain.SubmissionResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubmissionSvc) SendDirect(ctx context.Context, req domain.DirectSendRequest) (*domain.DirectSendResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*domain.DirectSendResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
