// Package browserpdf renders content trees to HTML and prints them to PDF
// through the shared headless browser.
package browserpdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-legaldocs/pkg/browser"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
	rendertemplate "github.com/goliatone/go-legaldocs/pkg/render/template"
	"github.com/goliatone/go-legaldocs/pkg/render/template/gotemplate"
)

// Name is the registry name of the renderer.
const Name = "browserpdf"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	pool      *browser.Pool
	templates rendertemplate.TemplateRenderer
}

// New constructs the renderer. The pool is shared with every other caller
// printing through the browser.
func New(pool *browser.Pool, options ...Option) (*Renderer, error) {
	if pool == nil {
		return nil, errors.New("browserpdf renderer: browser pool is required")
	}
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("browserpdf renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{pool: pool, templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) Format() records.Format {
	return records.FormatPDF
}

func (r *Renderer) ContentType() string {
	return records.FormatPDF.MimeType()
}

type viewNode struct {
	content.Node
	Heading string `json:"heading,omitempty"`
}

type view struct {
	Kind  string     `json:"kind"`
	Title string     `json:"title"`
	Nodes []viewNode `json:"nodes"`
}

// RenderHTML returns the HTML document printed by Render. Free text is
// escaped by the template engine.
func (r *Renderer) RenderHTML(tree content.Tree) (string, error) {
	if err := render.Check(r, tree); err != nil {
		return "", err
	}
	v := view{Kind: tree.Kind, Title: tree.Title, Nodes: make([]viewNode, len(tree.Nodes))}
	for i, n := range tree.Nodes {
		v.Nodes[i] = viewNode{Node: n}
		if n.Type == content.NodeArticle {
			v.Nodes[i].Heading = content.ArticleHeading(n)
		}
	}
	html, err := r.templates.RenderTemplate("document", v)
	if err != nil {
		return "", render.Fail(r, false, err)
	}
	return html, nil
}

// Render prints the tree through one browser page. Failures of the browser
// process are retryable after a pool recycle.
func (r *Renderer) Render(ctx context.Context, tree content.Tree) (render.Output, error) {
	if err := ctx.Err(); err != nil {
		return render.Output{}, err
	}
	html, err := r.RenderHTML(tree)
	if err != nil {
		return render.Output{}, err
	}

	var data []byte
	err = r.pool.Do(ctx, func(ctx context.Context, page browser.Page) error {
		var perr error
		data, perr = page.PrintPDF(ctx, html)
		return perr
	})
	if err != nil {
		return render.Output{}, render.Fail(r, browser.IsEngineFailure(err), err)
	}
	return render.NewOutput(records.FormatPDF, data), nil
}
