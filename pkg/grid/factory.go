package grid

import (
	"context"
	"fmt"
	"time"

	"github.com/sclevine/agouti"

	"digital.vasic.crossbrowser/pkg/capability"
	"digital.vasic.crossbrowser/pkg/logging"
)

// Dialer opens a remote session at hubURL with the given native
// capabilities.
type Dialer interface {
	Dial(
		ctx context.Context,
		hubURL string,
		caps agouti.Capabilities,
		descriptorID string,
	) (Session, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(
	ctx context.Context,
	hubURL string,
	caps agouti.Capabilities,
	descriptorID string,
) (Session, error)

func (f DialerFunc) Dial(
	ctx context.Context,
	hubURL string,
	caps agouti.Capabilities,
	descriptorID string,
) (Session, error) {
	return f(ctx, hubURL, caps, descriptorID)
}

// Factory creates sessions on one grid.
type Factory struct {
	config Config
	dialer Dialer
	logger logging.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithDialer replaces the default agouti dialer.
func WithDialer(d Dialer) FactoryOption {
	return func(f *Factory) {
		f.dialer = d
	}
}

// WithLogger sets the logger used by the factory and the sessions
// it opens.
func WithLogger(l logging.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = l
	}
}

// NewFactory creates a Factory. Zero config fields take defaults.
func NewFactory(cfg Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		config: cfg.WithDefaults(),
		logger: logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNull(f.logger)
	if f.dialer == nil {
		f.dialer = NewAgoutiDialer(f.config.CommandTimeout, f.logger)
	}
	return f
}

// Config returns the factory's grid configuration.
func (f *Factory) Config() Config { return f.config }

// Create opens a session for req and applies the implicit wait.
// Every failure is returned as a *SessionCreationError.
func (f *Factory) Create(
	ctx context.Context,
	req capability.Request,
) (Session, error) {
	adapter := AdapterFor(req.BrowserName())
	caps := adapter.Capabilities(req)

	fail := func(err error) error {
		f.logger.Error("session creation failed",
			logging.DescriptorField(req.DescriptorID()),
			logging.StringField("hub", f.config.RedactedHubURL()),
			logging.ErrorField(err),
		)
		return &SessionCreationError{
			DescriptorID: req.DescriptorID(),
			Browser:      adapter.Name(),
			Err:          err,
		}
	}

	start := time.Now()
	s, err := f.dialer.Dial(ctx, f.config.HubURL(), caps, req.DescriptorID())
	if err != nil {
		return nil, fail(err)
	}

	if err := s.SetImplicitWait(f.config.ImplicitWait); err != nil {
		_ = s.Quit()
		return nil, fail(fmt.Errorf("set implicit wait: %w", err))
	}

	f.logger.Info("session created",
		logging.DescriptorField(req.DescriptorID()),
		logging.SessionField(s.ID()),
		logging.StringField("adapter", adapter.Name()),
		logging.DurationField("elapsed", time.Since(start)),
	)
	return s, nil
}
