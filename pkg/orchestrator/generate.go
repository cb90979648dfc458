package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/pkg/cache"
	"github.com/goliatone/go-legaldocs/pkg/composer"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// maxAttempts is the number of render attempts for a retryable failure:
// the first try plus one after recycling the browser.
const maxAttempts = 2

// ErrUnsupportedFormat marks a requested format no renderer produces.
var ErrUnsupportedFormat = errors.New("orchestrator: unsupported format")

// GenerateDocument assembles the input once, composes the tree once and then
// renders and packages every requested format. Validation and composition
// problems are returned as the error; render and packaging problems are
// reported per format in Result.Failures.
func (o *Orchestrator) GenerateDocument(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	result := Result{Kind: req.Kind, Artifacts: []records.GeneratedArtifact{}}

	if _, err := o.composer.Get(req.Kind); err != nil {
		if !errors.Is(err, composer.ErrUnknownKind) {
			return result, err
		}
		verr := docerr.NewValidation()
		verr.Add("kind", fmt.Sprintf("unknown document kind %q", req.Kind))
		return result, verr
	}

	start := time.Now()
	bundle, err := o.assembler.Assemble(ctx, req.Input)
	if err != nil {
		o.logger.Info("document rejected",
			zap.String("kind", string(req.Kind)),
			zap.String("category", docerr.Category(err)),
			zap.Error(err),
		)
		return result, err
	}
	tree, err := o.composer.Compose(req.Kind, bundle)
	if err != nil {
		o.logger.Warn("composition failed",
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
		return result, err
	}

	for _, format := range o.formats(req.Formats) {
		artifact, failure := o.produce(ctx, req, bundle.Company.Denomination, tree, format)
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			continue
		}
		result.Artifacts = append(result.Artifacts, artifact)
	}

	o.logger.Info("document generated",
		zap.String("kind", string(req.Kind)),
		zap.String("company", req.CompanyID),
		zap.Int("artifacts", len(result.Artifacts)),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// GenerateMultipleDocuments runs GenerateDocument for each kind in turn. A
// failing kind never stops the batch and every kind appears in the result.
func (o *Orchestrator) GenerateMultipleDocuments(ctx context.Context, req BatchRequest) BatchResult {
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = o.Kinds()
	}

	out := BatchResult{Documents: make([]KindResult, 0, len(kinds))}
	seen := make(map[records.DocumentKind]struct{}, len(kinds))
	for _, kind := range kinds {
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}

		res, err := o.GenerateDocument(ctx, Request{
			CompanyID: req.CompanyID,
			UserID:    req.UserID,
			Kind:      kind,
			Formats:   req.Formats,
			PDFEngine: req.PDFEngine,
			Input:     req.Input,
		})
		if err != nil {
			out.Documents = append(out.Documents, KindResult{Kind: kind, Error: Describe(err), Err: err})
			continue
		}
		r := res
		out.Documents = append(out.Documents, KindResult{Kind: kind, Result: &r})
	}

	o.logger.Info("batch generated",
		zap.Int("kinds", len(out.Documents)),
		zap.Int("failed", out.Failed()),
	)
	return out
}

// formats normalises the requested list, dropping blanks and duplicates
// while keeping the first-seen order.
func (o *Orchestrator) formats(requested []records.Format) []records.Format {
	if len(requested) == 0 {
		requested = o.defaultFormats
	}
	seen := make(map[records.Format]struct{}, len(requested))
	out := make([]records.Format, 0, len(requested))
	for _, f := range requested {
		f = records.Format(strings.ToLower(strings.TrimSpace(string(f))))
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// produce renders, packages and records one format. It returns either an
// artifact or a failure, never both.
func (o *Orchestrator) produce(ctx context.Context, req Request, denomination string, tree content.Tree, format records.Format) (records.GeneratedArtifact, *FormatFailure) {
	engine := req.PDFEngine
	if engine == "" {
		engine = o.pdfEngine
	}
	renderer, err := o.registry.ForFormat(format, engine)
	if err != nil {
		err = &docerr.RenderError{Format: string(format), Err: fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)}
		return records.GeneratedArtifact{}, failure(format, "", 0, err)
	}

	key := o.cacheKey(req.CompanyID, req.UserID, format, renderer.Name(), tree)
	if artifact, ok := o.cached(ctx, key); ok {
		return artifact, nil
	}

	out, attempts, err := o.render(ctx, req.Kind, renderer, tree)
	if err != nil {
		return records.GeneratedArtifact{}, failure(format, renderer.Name(), attempts, err)
	}

	artifact, err := o.packager.Package(ctx, packager.PackageInput{
		CompanyID:    req.CompanyID,
		Denomination: denomination,
		Kind:         req.Kind,
		Format:       format,
		Renderer:     renderer.Name(),
		Output:       out,
	})
	if err != nil {
		return records.GeneratedArtifact{}, failure(format, renderer.Name(), attempts, err)
	}

	if o.documents != nil {
		if _, err := o.documents.Insert(ctx, req.UserID, req.CompanyID, artifact); err != nil {
			err = &docerr.PackagingError{Path: artifact.Path, Err: err}
			return records.GeneratedArtifact{}, failure(format, renderer.Name(), attempts, err)
		}
	}

	if key != "" {
		if err := o.cache.Put(ctx, key, artifact, o.cacheTTL); err != nil {
			o.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return artifact, nil
}

// render runs renderer, recycling the browser and retrying once when the
// failure is retryable. Errors always come back as a docerr.RenderError.
func (o *Orchestrator) render(ctx context.Context, kind records.DocumentKind, renderer render.Renderer, tree content.Tree) (render.Output, int, error) {
	for attempt := 1; ; attempt++ {
		start := time.Now()
		out, err := invoke(ctx, renderer, tree)
		fields := []zap.Field{
			zap.String("kind", string(kind)),
			zap.String("format", string(renderer.Format())),
			zap.String("renderer", renderer.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("duration", time.Since(start)),
		}
		if err == nil {
			o.logger.Debug("rendered", append(fields, zap.Int("bytes", len(out.Data)))...)
			return out, attempt, nil
		}

		err = render.Fail(renderer, false, err)
		if !docerr.IsRetryable(err) || attempt >= maxAttempts {
			o.logger.Error("render failed", append(fields, zap.Error(err))...)
			return render.Output{}, attempt, err
		}

		o.logger.Warn("render failed, recycling browser", append(fields, zap.Error(err))...)
		if o.pool != nil {
			o.pool.Recycle()
		}
	}
}

// invoke calls renderer, turning a panic into a permanent RenderError so a
// broken renderer fails its format instead of the whole batch.
func invoke(ctx context.Context, renderer render.Renderer, tree content.Tree) (out render.Output, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = render.Output{}
			err = render.Failf(renderer, "renderer panicked: %v", rec)
		}
	}()
	return renderer.Render(ctx, tree)
}

func (o *Orchestrator) cacheKey(companyID, userID string, format records.Format, renderer string, tree content.Tree) string {
	if o.cache == nil {
		return ""
	}
	key, err := cache.Key(companyID, userID, format, renderer, tree)
	if err != nil {
		o.logger.Warn("cache key failed", zap.Error(err))
		return ""
	}
	return key
}

func (o *Orchestrator) cached(ctx context.Context, key string) (records.GeneratedArtifact, bool) {
	if key == "" {
		return records.GeneratedArtifact{}, false
	}
	artifact, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return records.GeneratedArtifact{}, false
	}
	if ok {
		o.logger.Debug("cache hit", zap.String("key", key), zap.String("artifact", artifact.ID))
	}
	return artifact, ok
}

func failure(format records.Format, renderer string, attempts int, err error) *FormatFailure {
	return &FormatFailure{
		Format:   format,
		Renderer: renderer,
		Attempts: attempts,
		Error:    Describe(err),
		Err:      err,
	}
}

// DeleteCompany removes the stored files, database records and cache
// entries of companyID.
func (o *Orchestrator) DeleteCompany(ctx context.Context, companyID string) error {
	var errs []error
	if o.documents != nil {
		if _, err := o.documents.DeleteByCompany(ctx, companyID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := o.packager.DeleteCompany(ctx, companyID); err != nil {
		errs = append(errs, err)
	}
	if o.cache != nil {
		if err := o.cache.DeleteCompany(ctx, companyID); err != nil {
			o.logger.Warn("cache purge failed", zap.String("company", companyID), zap.Error(err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("orchestrator: delete company %s: %w", companyID, err)
	}
	o.logger.Info("company documents deleted", zap.String("company", companyID))
	return nil
}
