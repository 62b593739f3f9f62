// Package server initializes and runs the RentFinder HTTP server. It selects
// the store, session registry, upload backend, mailer and event publisher
// from configuration and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/config"
	"github.com/dmitrijs2005/rentfinder/internal/server/events"
	"github.com/dmitrijs2005/rentfinder/internal/server/mailer"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentfinder/internal/server/rest"
	"github.com/dmitrijs2005/rentfinder/internal/server/services"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
)

const metricsNamespace = "rentfinder"

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	registry  sessions.Registry
	publisher events.Publisher
	server    *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	repos, err := repomanager.New(ctx, c.StoreDSN, c.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry, err := newRegistry(ctx, c)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("session registry init error: %w", err)
	}

	uploader, err := newUploader(ctx, c)
	if err != nil {
		_ = registry.Close()
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("upload backend init error: %w", err)
	}

	publisher, err := newPublisher(c)
	if err != nil {
		_ = registry.Close()
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("event publisher init error: %w", err)
	}

	m := metrics.New(metricsNamespace)
	is := services.NewIdentityService(repos, registry, uploader, newMailer(c, logger), m, logger, c)
	ls := services.NewListingService(repos, uploader, publisher, m, logger)

	return &App{
		config:    c,
		logger:    logger,
		repos:     repos,
		registry:  registry,
		publisher: publisher,
		server:    rest.NewHTTPServer(c, logger, is, ls, m),
	}, nil
}

func newRegistry(ctx context.Context, c *config.Config) (sessions.Registry, error) {
	if c.RedisAddress == "" {
		return sessions.NewMemoryRegistry(), nil
	}
	return sessions.NewRedisRegistry(ctx, c.RedisAddress, c.RedisPassword, c.RedisDB)
}

func newUploader(ctx context.Context, c *config.Config) (media.Uploader, error) {
	switch c.UploadBackend {
	case config.UploadBackendEndpoint:
		if c.UploadEndpoint == "" {
			return nil, fmt.Errorf("upload endpoint is not set")
		}
		return media.NewEndpointUploader(c.UploadEndpoint, c.UploadPreset, c.UploadTimeout), nil
	case config.UploadBackendS3:
		return media.NewS3Uploader(ctx, media.S3Options{
			Region:        c.S3Region,
			User:          c.S3RootUser,
			Password:      c.S3RootPassword,
			Bucket:        c.S3Bucket,
			Endpoint:      c.S3BaseEndpoint,
			PublicBaseURL: c.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown upload backend %q", c.UploadBackend)
	}
}

func newPublisher(c *config.Config) (events.Publisher, error) {
	if c.NATSURL == "" {
		return events.Noop{}, nil
	}
	return events.NewNATSPublisher(c.NATSURL)
}

func newMailer(c *config.Config, logger logging.Logger) mailer.Mailer {
	if c.SMTPHost == "" {
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.SMTPFrom, c.ResetTokenValidityDuration)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or the server fails, then
// releases the store, registry and publisher.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(context.WithoutCancel(ctx))
}

func (app *App) close(ctx context.Context) {
	app.publisher.Close()
	if err := app.registry.Close(); err != nil {
		app.logger.Warn(ctx, "session registry close failed", "error", err)
	}
	if err := app.repos.Close(ctx); err != nil {
		app.logger.Warn(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
