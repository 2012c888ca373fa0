package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/eventboard/internal/application"
)

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// TestTokenSecret signs tokens minted by factory-built services.
const TestTokenSecret = "testfixtures-secret"

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// NewTokenManager builds a token manager on the factory clock. Zero ttl and
// tolerance fall back to one hour and 300 seconds.
func (f *ServiceFactory) NewTokenManager(ttl, tolerance time.Duration) (*application.TokenManager, error) {
	if tolerance == 0 {
		tolerance = application.DefaultClockTolerance
	}
	return application.NewTokenManager(application.TokenConfig{
		Secret:         TestTokenSecret,
		TTL:            ttl,
		ClockTolerance: tolerance,
		Now:            f.Clock.NowFunc(),
	})
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials application.CredentialStore
	Tokens      *application.TokenManager
	AdminEmails []string
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
// Passwords are hashed with FastArgon2idParams.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) (*application.AuthService, error) {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	tokens := deps.Tokens
	if tokens == nil {
		var err error
		tokens, err = f.NewTokenManager(0, 0)
		if err != nil {
			return nil, err
		}
	}
	return application.NewAuthService(application.AuthServiceDeps{
		Credentials: deps.Credentials,
		Passwords:   application.NewPasswordHasher(FastArgon2idParams),
		Tokens:      tokens,
		Admins:      application.NewAdminPolicy(deps.AdminEmails),
		IDGenerator: idGen,
		Now:         now,
		Logger:      deps.Logger,
	}), nil
}

// EventServiceDeps captures dependencies for constructing an event service.
type EventServiceDeps struct {
	Events      application.EventStore
	IDGenerator func() string
	Logger      *slog.Logger
}

// NewEventService builds an event service using the supplied dependencies.
func (f *ServiceFactory) NewEventService(deps EventServiceDeps) *application.EventService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	return application.NewEventService(deps.Events, idGen, deps.Logger)
}

// SubscriptionServiceDeps captures dependencies for constructing a
// subscription service.
type SubscriptionServiceDeps struct {
	Subscriptions application.SubscriptionStore
	Events        application.EventStore
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewSubscriptionService builds a subscription service using the supplied
// dependencies.
func (f *ServiceFactory) NewSubscriptionService(deps SubscriptionServiceDeps) *application.SubscriptionService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSubscriptionService(deps.Subscriptions, deps.Events, now, deps.Logger)
}
