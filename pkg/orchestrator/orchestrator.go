package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/browser"
	"github.com/goliatone/go-legaldocs/pkg/cache"
	"github.com/goliatone/go-legaldocs/pkg/composer"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
	"github.com/goliatone/go-legaldocs/pkg/renderers/browserpdf"
	"github.com/goliatone/go-legaldocs/pkg/renderers/docx"
	"github.com/goliatone/go-legaldocs/pkg/renderers/layoutpdf"
	"github.com/goliatone/go-legaldocs/pkg/renderers/sheet"
	"github.com/goliatone/go-legaldocs/pkg/renderers/text"
	"github.com/goliatone/go-legaldocs/pkg/store"
)

// DefaultCacheTTL bounds how long a cached artifact is reused.
const DefaultCacheTTL = 24 * time.Hour

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithAssembler injects a custom assembler.
func WithAssembler(a *assembler.Assembler) Option {
	return func(o *Orchestrator) {
		o.assembler = a
	}
}

// WithComposer injects a composer registry.
func WithComposer(c *composer.Registry) Option {
	return func(o *Orchestrator) {
		o.composer = c
	}
}

// WithCatalog composes with catalog instead of the embedded clauses. Ignored
// when WithComposer is supplied.
func WithCatalog(catalog *boilerplate.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = catalog
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithBrowserPool enables browser PDF rendering through pool. The pool is
// also recycled when a render reports a retryable failure.
func WithBrowserPool(pool *browser.Pool) Option {
	return func(o *Orchestrator) {
		o.pool = pool
	}
}

// WithPDFEngine sets the engine used when a request does not name one.
func WithPDFEngine(engine records.PDFEngine) Option {
	return func(o *Orchestrator) {
		o.pdfEngine = engine
	}
}

// WithDefaultFormats sets the formats used when a request lists none.
func WithDefaultFormats(formats ...records.Format) Option {
	return func(o *Orchestrator) {
		if len(formats) > 0 {
			o.defaultFormats = append([]records.Format(nil), formats...)
		}
	}
}

// WithPackager injects the packager.
func WithPackager(p *packager.Packager) Option {
	return func(o *Orchestrator) {
		o.packager = p
	}
}

// WithStorage packages into storage with a default packager.
func WithStorage(s packager.Storage) Option {
	return func(o *Orchestrator) {
		o.storage = s
	}
}

// WithCache enables artifact reuse for identical trees.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// WithDocumentStore records every packaged artifact in repo.
func WithDocumentStore(repo DocumentStore) Option {
	return func(o *Orchestrator) {
		o.documents = repo
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source handed to default components.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// DocumentStore persists artifact metadata. *store.Repository satisfies it.
type DocumentStore interface {
	Insert(ctx context.Context, userID, companyID string, artifact records.GeneratedArtifact) (store.Document, error)
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
}

// Orchestrator coordinates the full pipeline from a loose request to stored
// artifacts. Missing dependencies are initialised with the built-in
// implementations so callers can start with a single constructor call.
type Orchestrator struct {
	assembler      *assembler.Assembler
	composer       *composer.Registry
	catalog        *boilerplate.Catalog
	registry       *render.Registry
	pool           *browser.Pool
	pdfEngine      records.PDFEngine
	defaultFormats []records.Format
	packager       *packager.Packager
	storage        packager.Storage
	cache          cache.Cache
	cacheTTL       time.Duration
	documents      DocumentStore
	logger         *zap.Logger
	now            func() time.Time
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		defaultFormats: []records.Format{records.FormatPDF},
		logger:         zap.NewNop(),
		now:            time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if err := o.applyDefaults(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults() error {
	if o.assembler == nil {
		o.assembler = assembler.New(
			assembler.WithClock(o.now),
			assembler.WithLogger(o.logger.Named("assembler")),
		)
	}
	if o.composer == nil {
		catalog := o.catalog
		if catalog == nil {
			var err error
			if catalog, err = boilerplate.Default(); err != nil {
				return fmt.Errorf("orchestrator: clause catalog: %w", err)
			}
		}
		reg, err := composer.Default(catalog)
		if err != nil {
			return fmt.Errorf("orchestrator: composer: %w", err)
		}
		o.composer = reg
	}
	if o.registry == nil {
		reg, err := o.defaultRegistry()
		if err != nil {
			return err
		}
		o.registry = reg
	}
	if o.pdfEngine == "" {
		o.pdfEngine = records.PDFEngineLayout
		if o.pool != nil {
			o.pdfEngine = records.PDFEngineBrowser
		}
	}
	if o.packager == nil {
		if o.storage == nil {
			dir := filepath.Join(os.TempDir(), "legaldocs")
			local, err := packager.NewLocalStorage(dir)
			if err != nil {
				return fmt.Errorf("orchestrator: default storage: %w", err)
			}
			o.storage = local
		}
		p, err := packager.New(o.storage,
			packager.WithClock(o.now),
			packager.WithLogger(o.logger.Named("packager")),
		)
		if err != nil {
			return fmt.Errorf("orchestrator: packager: %w", err)
		}
		o.packager = p
	}
	if o.cache != nil && o.cacheTTL <= 0 {
		o.cacheTTL = DefaultCacheTTL
	}
	return nil
}

func (o *Orchestrator) defaultRegistry() (*render.Registry, error) {
	reg := render.NewRegistry()
	if o.pool != nil {
		r, err := browserpdf.New(o.pool)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: browser renderer: %w", err)
		}
		if err := reg.Register(r); err != nil {
			return nil, err
		}
	}
	for _, r := range []render.Renderer{
		layoutpdf.New(layoutpdf.WithClock(o.now)),
		docx.New(),
		text.New(),
		sheet.New(),
	} {
		if err := reg.Register(r); err != nil {
			return nil, fmt.Errorf("orchestrator: register %s: %w", r.Name(), err)
		}
	}
	return reg, nil
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Packager exposes the packager used for artifacts.
func (o *Orchestrator) Packager() *packager.Packager {
	return o.packager
}

// Kinds lists the document kinds the composer can produce.
func (o *Orchestrator) Kinds() []records.DocumentKind {
	return o.composer.Kinds()
}
