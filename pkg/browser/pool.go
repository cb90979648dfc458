// Package browser manages the shared headless browser used to print HTML to
// PDF. The browser is expensive to start, so a single Pool keeps one engine
// warm across calls and hands out one page per render.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrPoolClosed is returned by Do after Close.
	ErrPoolClosed = errors.New("browser: pool closed")
	// ErrEngineFailure marks failures of the browser process itself. Callers
	// may recycle the pool and retry.
	ErrEngineFailure = errors.New("browser: engine failure")
)

// Page is a single browser tab.
type Page interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Engine is a running browser process.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Ping(ctx context.Context) error
	Close() error
}

// Launcher starts engines.
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Engine, error)

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context) (Engine, error) { return f(ctx) }

// Stats reports pool lifecycle counters.
type Stats struct {
	Running  bool
	Launches int
	Recycles int
	Pages    int
}

// Option configures a Pool.
type Option func(*Pool)

// WithLauncher overrides the default go-rod launcher.
func WithLauncher(l Launcher) Option {
	return func(p *Pool) {
		if l != nil {
			p.launcher = l
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPageTimeout bounds the time a callback may hold a page.
func WithPageTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// Pool owns the shared engine. Page creation is serialized; rendering on an
// acquired page happens outside the lock.
type Pool struct {
	launcher Launcher
	logger   *zap.Logger
	timeout  time.Duration

	mu     sync.Mutex
	engine Engine
	closed bool
	stats  Stats
}

// NewPool constructs a pool. The engine is not started until the first Do.
func NewPool(options ...Option) *Pool {
	p := &Pool{
		launcher: RodLauncher{},
		logger:   zap.NewNop(),
		timeout:  60 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Do acquires a page, runs fn with it and closes the page on every exit path,
// including a panic in fn. Failures of the engine wrap ErrEngineFailure.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context, page Page) error) error {
	if fn == nil {
		return errors.New("browser: callback is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	page, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(page)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := fn(ctx, page); err != nil {
		if IsEngineFailure(err) {
			return fmt.Errorf("%w: %w", ErrEngineFailure, err)
		}
		return err
	}
	return nil
}

func (p *Pool) acquire(ctx context.Context) (Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.engine == nil {
		start := time.Now()
		engine, err := p.launcher.Launch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: launch: %w", ErrEngineFailure, err)
		}
		p.engine = engine
		p.stats.Launches++
		p.logger.Info("browser started", zap.Int("launches", p.stats.Launches), zap.Duration("duration", time.Since(start)))
	}

	page, err := p.engine.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: new page: %w", ErrEngineFailure, err)
	}
	p.stats.Pages++
	return page, nil
}

func (p *Pool) release(page Page) {
	if err := page.Close(); err != nil {
		p.logger.Warn("browser page close failed", zap.Error(err))
	}
}

// Recycle stops the current engine. The next Do starts a fresh one.
func (p *Pool) Recycle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recycleLocked("requested")
}

func (p *Pool) recycleLocked(reason string) {
	if p.engine == nil {
		return
	}
	if err := p.engine.Close(); err != nil {
		p.logger.Warn("browser close failed", zap.Error(err))
	}
	p.engine = nil
	p.stats.Recycles++
	p.logger.Info("browser recycled", zap.String("reason", reason), zap.Int("recycles", p.stats.Recycles))
}

// Healthy pings the running engine and recycles it when the ping fails. An
// engine that was never started is reported healthy.
func (p *Pool) Healthy(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	if p.engine == nil {
		return nil
	}
	if err := p.engine.Ping(ctx); err != nil {
		p.recycleLocked("health check")
		return fmt.Errorf("%w: ping: %w", ErrEngineFailure, err)
	}
	return nil
}

// Stats returns a snapshot of the lifecycle counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Running = p.engine != nil
	return s
}

// Close stops the engine. Later calls to Do return ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.engine == nil {
		return nil
	}
	err := p.engine.Close()
	p.engine = nil
	return err
}

var crashMarkers = []string{
	"target closed",
	"session closed",
	"no target with given id",
	"websocket",
	"use of closed network connection",
	"connection reset",
	"crashed",
	"detached",
	"eof",
}

// IsEngineFailure reports whether err signals a crashed or detached browser
// rather than a problem with the printed document.
func IsEngineFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEngineFailure) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range crashMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
