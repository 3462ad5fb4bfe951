package guard

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
)

// PersistSource reads the "trust this device" flag.
type PersistSource interface {
	Persist(ctx context.Context) (bool, error)
}

// Bootstrap restores the session of a trusted device at process start.
type Bootstrap struct {
	store     *session.Store
	refresher client.Refresher
	persist   PersistSource
	indicator Indicator
	logger    logging.Logger

	mu    sync.Mutex
	state State
}

// NewBootstrap returns a guard in StateBootstrapping. indicator and logger
// may be nil.
func NewBootstrap(store *session.Store, refresher client.Refresher, persist PersistSource,
	indicator Indicator, logger logging.Logger) *Bootstrap {
	if indicator == nil {
		indicator = nopIndicator{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bootstrap{
		store:     store,
		refresher: refresher,
		persist:   persist,
		indicator: indicator,
		logger:    logger,
		state:     StateBootstrapping,
	}
}

// State returns the current state.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bootstrap) ready(ctx context.Context, reason string) State {
	b.mu.Lock()
	b.state = StateReady
	b.mu.Unlock()
	b.logger.Debug(ctx, "bootstrap ready", "reason", reason)
	return StateReady
}

// Run performs the start-up check and always ends in StateReady. When the
// session holds no token and the device is trusted it attempts one silent
// refresh; its outcome only shows up in the session.
func (b *Bootstrap) Run(ctx context.Context) State {
	if b.State() == StateReady {
		return StateReady
	}
	if b.store.AccessToken() != "" {
		return b.ready(ctx, "token present")
	}

	persist, err := b.persist.Persist(ctx)
	if err != nil {
		b.logger.Warn(ctx, "could not read persist flag", "error", err)
	}
	if !persist {
		return b.ready(ctx, "device not trusted")
	}

	b.indicator.Start("Restoring session")
	defer b.indicator.Stop()

	b.store.SetAuthenticating(true)
	if _, err := b.refresher.Refresh(ctx); err != nil {
		b.logger.Debug(ctx, "silent restore failed", "error", err)
	}
	b.store.SetAuthenticating(false)

	return b.ready(ctx, "restore attempted")
}
