package browser

import (
	"context"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodLauncher starts Chrome through go-rod. When ControlURL is set it connects
// to an already running browser instead of launching one.
type RodLauncher struct {
	Bin        string
	NoSandbox  bool
	ControlURL string
}

// Launch implements Launcher. The browser process outlives ctx.
func (l RodLauncher) Launch(ctx context.Context) (Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	controlURL := l.ControlURL
	var lnch *launcher.Launcher
	if controlURL == "" {
		lnch = launcher.New().Headless(true).NoSandbox(l.NoSandbox)
		if l.Bin != "" {
			lnch = lnch.Bin(l.Bin)
		}
		u, err := lnch.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch chrome: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if lnch != nil {
			lnch.Kill()
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return &rodEngine{browser: b, launcher: lnch}, nil
}

type rodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (e *rodEngine) NewPage(ctx context.Context) (Page, error) {
	page, err := e.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: page}, nil
}

func (e *rodEngine) Ping(ctx context.Context) error {
	_, err := e.browser.Context(ctx).Version()
	return err
}

func (e *rodEngine) Close() error {
	err := e.browser.Close()
	if e.launcher != nil {
		e.launcher.Kill()
	}
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	page := p.page.Context(ctx)
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("browser: set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("browser: wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("browser: print: %w", err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("browser: read pdf: %w", err)
	}
	return data, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
