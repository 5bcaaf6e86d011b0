package http

import (
	"context"

	"github.com/go-listing-notify/internal/application/device"
	"github.com/go-listing-notify/internal/application/notification"
	"github.com/go-listing-notify/internal/application/submission"
	jwtinfra "github.com/go-listing-notify/internal/infrastructure/jwt"
	"go.uber.org/zap"
)

// Deps holds the application services the router exposes.
type Deps struct {
	Notifications notification.Service
	Devices       device.Service
	Submissions   submission.Service
	JWTProvider   *jwtinfra.Provider
	// Health probes the store backend for /v1/health-check/ready. Nil means always ready.
	Health func(ctx context.Context) error
	Log    *zap.Logger
}
