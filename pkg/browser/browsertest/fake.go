// Package browsertest provides an in-memory browser engine for tests that
// exercise the PDF pipeline without Chrome.
package browsertest

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-legaldocs/pkg/browser"
)

// PDFPrefix starts every document printed by the fake engine. The printed HTML
// follows it verbatim.
const PDFPrefix = "%PDF-1.4 fake\n"

// ErrCrashed is the failure injected by CrashNext.
var ErrCrashed = errors.New("target closed: browser crashed")

// Launcher starts fake engines and records lifecycle events.
type Launcher struct {
	mu        sync.Mutex
	launches  int
	crashes   int
	launchErr error
	engines   []*Engine
	printed   []string
}

// NewLauncher returns a launcher whose engines print successfully.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// CrashNext makes the next n prints fail as if the browser crashed.
func (l *Launcher) CrashNext(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.crashes = n
}

// FailLaunch makes every launch fail with err. Pass nil to restore.
func (l *Launcher) FailLaunch(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launchErr = err
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context) (browser.Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.launches++
	e := &Engine{owner: l}
	l.engines = append(l.engines, e)
	return e, nil
}

// Launches returns how many engines were started.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

// Printed returns the HTML of every successful print, in order.
func (l *Launcher) Printed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.printed...)
}

// OpenPages counts pages that were created but not closed, over all engines.
func (l *Launcher) OpenPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.engines {
		n += e.open
	}
	return n
}

// Engine is a fake browser process.
type Engine struct {
	owner   *Launcher
	open    int
	closed  bool
	pingErr error
}

// NewPage implements browser.Engine.
func (e *Engine) NewPage(ctx context.Context) (browser.Page, error) {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	if e.closed {
		return nil, errors.New("websocket: close sent")
	}
	e.open++
	return &page{engine: e}, nil
}

// Ping implements browser.Engine.
func (e *Engine) Ping(ctx context.Context) error {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	if e.closed {
		return errors.New("websocket: close sent")
	}
	return e.pingErr
}

// FailPing makes Ping return err.
func (e *Engine) FailPing(err error) {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.pingErr = err
}

// Close implements browser.Engine.
func (e *Engine) Close() error {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.closed = true
	return nil
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	return e.closed
}

// Engines returns every engine launched so far.
func (l *Launcher) Engines() []*Engine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Engine(nil), l.engines...)
}

type page struct {
	engine *Engine
	closed bool
}

func (p *page) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := p.engine.owner
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.crashes > 0 {
		l.crashes--
		return nil, ErrCrashed
	}
	l.printed = append(l.printed, html)
	return []byte(PDFPrefix + html), nil
}

func (p *page) Close() error {
	l := p.engine.owner
	l.mu.Lock()
	defer l.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.engine.open--
	}
	return nil
}
