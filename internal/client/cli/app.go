package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/config"
	"github.com/dmitrijs2005/pharmsim/internal/client/guard"
	"github.com/dmitrijs2005/pharmsim/internal/client/services"
	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/storage"
	"github.com/dmitrijs2005/pharmsim/internal/logging"
)

// DeviceForgetter wipes everything this device remembers about the user.
type DeviceForgetter interface {
	ForgetDevice(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       *session.Store
	authService services.AuthService
	resources   client.Resources
	bootstrap   *guard.Bootstrap
	guard       *guard.RouteGuard
	device      DeviceForgetter
	closeFn     func() error

	reader         *bufio.Reader
	out            io.Writer
	interactive    bool
	explicitLogout atomic.Bool
}

// NewApp opens local state and wires the API clients, session store and
// guards. The authenticated client is installed here, once.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.StatePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	jar, err := client.NewPersistentJar(ctx, repos.Cookies, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	raw := &http.Client{Jar: jar, Timeout: c.RequestTimeout}
	store := session.NewStore()
	as := services.NewAuthService(client.NewAuthAPI(c.APIBaseURL, raw), store,
		session.NewPersistStore(repos.Metadata), jar, logger, c.RefreshTimeout)
	authed := client.NewAuthenticatedHTTPClient(raw, store, as, logger)

	var ind guard.Indicator
	if term.IsTerminal(int(os.Stdout.Fd())) {
		ind = &spinnerIndicator{}
	}

	return &App{
		config:      c,
		logger:      logger,
		store:       store,
		authService: as,
		resources:   client.NewResourceClient(c.APIBaseURL, authed),
		bootstrap:   guard.NewBootstrap(store, as, as, ind, logger),
		guard:       guard.NewRouteGuard(store, as, ind, logger),
		device:      repos,
		closeFn:     repos.Close,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Close releases local state.
func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

// Start runs the bootstrap guard: a trusted device silently restores its
// session before any view is opened.
func (a *App) Start(ctx context.Context) {
	a.bootstrap.Run(ctx)
	a.warnTempPassword(a.store.Get())
}

func (a *App) isLoggedIn() bool {
	return a.store.Get().IsAuthenticated
}

func displayName(s session.Session) string {
	switch {
	case s.Email != "":
		return s.Email
	case s.StudentNo != "":
		return s.StudentNo
	default:
		return "unknown user"
	}
}

func (a *App) getStatus() string {
	s := a.store.Get()
	if !s.IsAuthenticated {
		return ""
	}
	return fmt.Sprintf("(%s %s)", displayName(s), strings.Join(s.Roles, ","))
}
