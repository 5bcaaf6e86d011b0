package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-listing-notify/internal/domain"
	"github.com/go-listing-notify/internal/pkg/id"
	"github.com/go-listing-notify/internal/pkg/validate"
	"go.uber.org/zap"
)

type Service interface {
	// RegisterToken attaches a push token to recipientID. A token already known
	// under another recipient is moved, since one token reaches one device.
	RegisterToken(ctx context.Context, recipientID string, req domain.RegisterTokenRequest) (*domain.Device, error)
	List(ctx context.Context, recipientID string) ([]domain.Device, error)
	Delete(ctx context.Context, recipientID, deviceID string) error
}

type deviceStore interface {
	GetByToken(ctx context.Context, token string) (*domain.Device, error)
	Put(ctx context.Context, d *domain.Device) error
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.Device, error)
	Delete(ctx context.Context, recipientID, deviceID string) error
}

type service struct {
	repo deviceStore
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo deviceStore, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, log: log.With(zap.String("component", "device")), now: time.Now}
}

func (s *service) RegisterToken(ctx context.Context, recipientID string, req domain.RegisterTokenRequest) (*domain.Device, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if recipientID == "" {
		return nil, fmt.Errorf("recipient id required: %w", domain.ErrBadRequest)
	}
	if strings.ContainsAny(req.Token, " \t\r\n") {
		return nil, fmt.Errorf("token must not contain whitespace: %w", domain.ErrBadRequest)
	}
	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformAndroid
	}
	now := s.now().UTC()

	existing, err := s.repo.GetByToken(ctx, req.Token)
	switch {
	case err == nil:
		if existing.RecipientID != recipientID {
			s.log.Info("push token moved to new recipient",
				zap.String("device_id", existing.DeviceID),
				zap.String("from", existing.RecipientID),
				zap.String("to", recipientID))
		}
		existing.RecipientID = recipientID
		existing.Platform = platform
		existing.Enable = true
		existing.UpdatedAt = now
		if err := s.repo.Put(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, err
	}

	d := &domain.Device{
		DeviceID:    id.New(),
		RecipientID: recipientID,
		Token:       req.Token,
		Platform:    platform,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) List(ctx context.Context, recipientID string) ([]domain.Device, error) {
	devices, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []domain.Device{}
	}
	return devices, nil
}

func (s *service) Delete(ctx context.Context, recipientID, deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("device id required: %w", domain.ErrBadRequest)
	}
	return s.repo.Delete(ctx, recipientID, deviceID)
}
