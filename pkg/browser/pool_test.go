package browser_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/browser"
	"github.com/goliatone/go-legaldocs/pkg/browser/browsertest"
)

func newPool(t *testing.T) (*browser.Pool, *browsertest.Launcher) {
	t.Helper()
	l := browsertest.NewLauncher()
	p := browser.NewPool(browser.WithLauncher(l))
	t.Cleanup(func() { _ = p.Close() })
	return p, l
}

func printHTML(ctx context.Context, p *browser.Pool, html string) ([]byte, error) {
	var out []byte
	err := p.Do(ctx, func(ctx context.Context, page browser.Page) error {
		var err error
		out, err = page.PrintPDF(ctx, html)
		return err
	})
	return out, err
}

func TestPool_LazyStartAndWarmReuse(t *testing.T) {
	p, l := newPool(t)
	if l.Launches() != 0 || p.Stats().Running {
		t.Fatalf("pool must not start before first use")
	}
	for i := 0; i < 3; i++ {
		if _, err := printHTML(context.Background(), p, "<p>x</p>"); err != nil {
			t.Fatalf("print %d: %v", i, err)
		}
	}
	want := browser.Stats{Running: true, Launches: 1, Pages: 3}
	if diff := cmp.Diff(want, p.Stats()); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if l.OpenPages() != 0 {
		t.Fatalf("pages left open: %d", l.OpenPages())
	}
}

func TestPool_ClosesPageOnPanic(t *testing.T) {
	p, l := newPool(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = p.Do(context.Background(), func(context.Context, browser.Page) error {
			panic("boom")
		})
	}()
	if l.OpenPages() != 0 {
		t.Fatalf("page not closed after panic")
	}
}

func TestPool_CrashIsEngineFailureAndRecycleRelaunches(t *testing.T) {
	p, l := newPool(t)
	l.CrashNext(1)

	_, err := printHTML(context.Background(), p, "<p>x</p>")
	if !errors.Is(err, browser.ErrEngineFailure) {
		t.Fatalf("expected engine failure, got %v", err)
	}
	if l.OpenPages() != 0 {
		t.Fatalf("page not closed after failure")
	}

	p.Recycle()
	if engines := l.Engines(); len(engines) != 1 || !engines[0].Closed() {
		t.Fatalf("recycle must close the running engine")
	}
	if _, err := printHTML(context.Background(), p, "<p>x</p>"); err != nil {
		t.Fatalf("print after recycle: %v", err)
	}
	if got := p.Stats(); got.Launches != 2 || got.Recycles != 1 {
		t.Fatalf("stats = %+v", got)
	}
}

func TestPool_DocumentErrorsAreNotEngineFailures(t *testing.T) {
	p, _ := newPool(t)
	docErr := errors.New("invalid page size")
	err := p.Do(context.Background(), func(context.Context, browser.Page) error { return docErr })
	if !errors.Is(err, docErr) || errors.Is(err, browser.ErrEngineFailure) {
		t.Fatalf("unexpected classification: %v", err)
	}
}

func TestPool_LaunchFailure(t *testing.T) {
	p, l := newPool(t)
	l.FailLaunch(errors.New("chrome not found"))
	_, err := printHTML(context.Background(), p, "x")
	if !errors.Is(err, browser.ErrEngineFailure) {
		t.Fatalf("expected engine failure, got %v", err)
	}
	l.FailLaunch(nil)
	if _, err := printHTML(context.Background(), p, "x"); err != nil {
		t.Fatalf("launch should be retried on next use: %v", err)
	}
}

func TestPool_HealthyRecyclesOnFailedPing(t *testing.T) {
	p, l := newPool(t)
	if err := p.Healthy(context.Background()); err != nil {
		t.Fatalf("idle pool should be healthy: %v", err)
	}
	if _, err := printHTML(context.Background(), p, "x"); err != nil {
		t.Fatalf("print: %v", err)
	}
	l.Engines()[0].FailPing(errors.New("no response"))
	if err := p.Healthy(context.Background()); !errors.Is(err, browser.ErrEngineFailure) {
		t.Fatalf("expected ping failure, got %v", err)
	}
	if p.Stats().Running {
		t.Fatalf("failed health check must recycle the engine")
	}
}

func TestPool_ClosedPoolRejectsWork(t *testing.T) {
	p, _ := newPool(t)
	if _, err := printHTML(context.Background(), p, "x"); err != nil {
		t.Fatalf("print: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := printHTML(context.Background(), p, "x"); !errors.Is(err, browser.ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ConcurrentCallsShareOneEngine(t *testing.T) {
	p, l := newPool(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := printHTML(context.Background(), p, "<p>concurrent</p>")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("print: %v", err)
		}
	}
	if l.Launches() != 1 || l.OpenPages() != 0 || len(l.Printed()) != 8 {
		t.Fatalf("launches=%d open=%d printed=%d", l.Launches(), l.OpenPages(), len(l.Printed()))
	}
}

func TestIsEngineFailure(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"target closed", true},
		{"read tcp: use of closed network connection", true},
		{"Page crashed!", true},
		{"invalid print range", false},
	}
	for _, tc := range cases {
		if got := browser.IsEngineFailure(errors.New(tc.msg)); got != tc.want {
			t.Fatalf("IsEngineFailure(%q) = %v", tc.msg, got)
		}
	}
}
