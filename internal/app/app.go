// Package app wires configured components into an orchestrator for the
// legaldocs binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/internal/config"
	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/browser"
	"github.com/goliatone/go-legaldocs/pkg/cache"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/store"
)

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Config       config.Config
	Orchestrator *orchestrator.Orchestrator
	Documents    *store.Repository
	Storage      packager.Storage
	Cache        cache.Cache
	Pool         *browser.Pool

	logger  *zap.Logger
	closers []func() error
}

// Build opens storage, the document store, the cache and the browser pool
// described by cfg.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, logger: logger}

	if err := a.openStorage(ctx); err != nil {
		return nil, a.fail(err)
	}
	if err := a.openStore(); err != nil {
		return nil, a.fail(err)
	}
	if err := a.openCache(ctx); err != nil {
		return nil, a.fail(err)
	}
	if cfg.Browser.Enabled {
		a.Pool = browser.NewPool(
			browser.WithLauncher(browser.RodLauncher{
				Bin:        cfg.Browser.Bin,
				NoSandbox:  cfg.Browser.NoSandbox,
				ControlURL: cfg.Browser.ControlURL,
			}),
			browser.WithPageTimeout(cfg.Browser.Timeout),
			browser.WithLogger(logger.Named("browser")),
		)
		a.closers = append(a.closers, a.Pool.Close)
	}

	engine := records.PDFEngine(cfg.Render.PDFEngine)
	if engine == records.PDFEngineBrowser && a.Pool == nil {
		logger.Warn("browser disabled, pdf falls back to the layout engine")
		engine = records.PDFEngineLayout
	}

	options := []orchestrator.Option{
		orchestrator.WithAssembler(assembler.New(
			assembler.WithSettings(cfg.Jurisdiction.Settings()),
			assembler.WithLogger(logger.Named("assembler")),
		)),
		orchestrator.WithStorage(a.Storage),
		orchestrator.WithDocumentStore(a.Documents),
		orchestrator.WithCache(a.Cache, cfg.Redis.TTL),
		orchestrator.WithPDFEngine(engine),
		orchestrator.WithDefaultFormats(cfg.Formats()...),
		orchestrator.WithLogger(logger.Named("orchestrator")),
	}
	if a.Pool != nil {
		options = append(options, orchestrator.WithBrowserPool(a.Pool))
	}
	orch, err := orchestrator.New(options...)
	if err != nil {
		return nil, a.fail(err)
	}
	a.Orchestrator = orch
	logger.Info("pipeline ready",
		zap.Strings("renderers", orch.Registry().List()),
		zap.String("pdf_engine", string(engine)),
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case config.StorageS3:
		s3cfg := a.Config.Storage.S3
		s, err := packager.NewS3StorageFromConfig(ctx, packager.S3Config{
			Region:   s3cfg.Region,
			Bucket:   s3cfg.Bucket,
			Prefix:   s3cfg.Prefix,
			Endpoint: s3cfg.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("app: s3 storage: %w", err)
		}
		a.Storage = s
	default:
		s, err := packager.NewLocalStorage(a.Config.Storage.Root)
		if err != nil {
			return fmt.Errorf("app: local storage: %w", err)
		}
		a.Storage = s
	}
	return nil
}

func (a *App) openStore() error {
	dsn := a.Config.Database.DSN
	if a.Config.Database.Driver == config.DatabaseSQLite && isSQLiteFile(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return fmt.Errorf("app: database dir: %w", err)
		}
	}
	db, err := store.Open(a.Config.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.closers = append(a.closers, func() error { return store.Close(db) })
	a.Documents = store.NewRepository(db)
	return nil
}

func (a *App) openCache(ctx context.Context) error {
	if a.Config.Redis.Addr == "" {
		a.Cache = cache.NewMemory(nil)
		return nil
	}
	rc, err := cache.DialRedis(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.closers = append(a.closers, rc.Close)
	a.Cache = rc
	return nil
}

// HealthCheck pings the browser when one is configured.
func (a *App) HealthCheck(ctx context.Context) error {
	if a.Pool == nil {
		return nil
	}
	return a.Pool.Healthy(ctx)
}

// Close releases every opened component.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) fail(err error) error {
	if cerr := a.Close(); cerr != nil {
		a.logger.Warn("cleanup after failed build", zap.Error(cerr))
	}
	return err
}

func isSQLiteFile(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}
