// Package handlers exposes the HTTP surface: routing, request decoding,
// bearer authentication, and the mapping from service errors to statuses.
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"taskd/internal/service"
	"taskd/internal/token"
	"taskd/pkg/bus"
	gos3 "taskd/pkg/s3"
)

const (
	loginTopic         = "taskd.auth.login"
	todoCreatedTopic   = "taskd.todos.created"
	todoCompletedTopic = "taskd.todos.completed"

	attachmentURLExpiry = 15 * time.Minute
)

// Config controls runtime behaviour for the HTTP handlers.
type Config struct {
	AllowedOrigins   []string
	RateLimitPerMin  int
	AttachmentBucket string
}

// API wires the services, token verifier, and optional side channels
// (event bus, object store) behind the HTTP handlers.
type API struct {
	auth   *service.Auth
	users  *service.Users
	todos  *service.Todos
	tokens *token.Manager
	bus    *bus.Bus
	s3     *gos3.Client
	ready  func(context.Context) error
	config Config
}

// Options collects the dependencies for New. Bus and S3 are optional; the
// endpoints depending on them degrade gracefully when absent.
type Options struct {
	Auth   *service.Auth
	Users  *service.Users
	Todos  *service.Todos
	Tokens *token.Manager
	Bus    *bus.Bus
	S3     *gos3.Client
	Ready  func(context.Context) error
	Config Config
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(opts Options) (*API, error) {
	if opts.Auth == nil || opts.Users == nil || opts.Todos == nil {
		return nil, errors.New("auth, users, and todos services are required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token manager is required")
	}

	if opts.Config.RateLimitPerMin <= 0 {
		opts.Config.RateLimitPerMin = 100
	}

	return &API{
		auth:   opts.Auth,
		users:  opts.Users,
		todos:  opts.Todos,
		tokens: opts.Tokens,
		bus:    opts.Bus,
		s3:     opts.S3,
		ready:  opts.Ready,
		config: opts.Config,
	}, nil
}

// publishEvent emits a fire-and-forget event; bus failures are logged and
// never fail the request.
func (a *API) publishEvent(ctx context.Context, subject string, payload any) {
	if a.bus == nil || subject == "" {
		return
	}
	if err := a.bus.Publish(ctx, subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}
