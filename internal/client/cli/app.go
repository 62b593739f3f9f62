package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/client/api"
	"github.com/dmitrijs2005/rentfinder/internal/client/config"
	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/dmitrijs2005/rentfinder/internal/filex"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Service is the part of the API client the commands use.
type Service interface {
	Session() *models.Session
	Ping(ctx context.Context) error
	Areas(ctx context.Context) ([]string, error)

	Register(ctx context.Context, in api.RegisterInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)

	Home(ctx context.Context) (*models.HomeView, error)
	Browse(ctx context.Context) (*models.SearchView, error)
	Search(ctx context.Context, p models.SearchParams) (*models.SearchView, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	Profile(ctx context.Context) (*models.Account, error)
	Detail(ctx context.Context, id string) (*models.Detail, error)
	EditView(ctx context.Context, id string) (*models.EditView, error)
	AddHouse(ctx context.Context, in models.ListingInput, images []filex.File) (string, error)
	UpdateHouse(ctx context.Context, id string, p models.ListingPatch) (*models.Listing, error)
	SetStatus(ctx context.Context, id string, status models.ListingStatus) (*models.StatusView, error)
	DeleteHouse(ctx context.Context, id string) error
}

type App struct {
	config *config.Config
	api    Service
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	l := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	apiClient, err := api.New(c.ServerURL, c.RequestTimeout, l)
	if err != nil {
		return nil, err
	}

	return newApp(c, apiClient, l, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, s Service, l logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    s,
		logger: l.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run starts the connectivity watcher and the REPL. It returns when the user
// exits or input ends; the session is logged out on the way.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintf(a.out, "Welcome to RentFinder (server %s, type 'help' for commands)\n", a.config.ServerURL)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)

	if a.isLoggedIn() {
		logoutCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), a.config.RequestTimeout)
		defer stop()
		if err := a.api.Logout(logoutCtx); err != nil {
			a.logger.Warn(ctx, "logout on exit failed", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.Session() != nil
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) getStatus() string {
	s := ""
	if sess := a.api.Session(); sess != nil && sess.Account != nil {
		s = fmt.Sprintf("%s/%s ", sess.Account.Name, sess.Account.Role)
	}
	if m := a.getMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(pingCtx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher probes the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
