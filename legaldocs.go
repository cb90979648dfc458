// Package legaldocs generates the incorporation documents of a company
// (statutes, lease contract, declarations, registers) from loosely typed
// company data, in PDF, DOCX, plain text and XLSX.
//
// The root package re-exports the orchestrator entry points so callers can
// start with a single import:
//
//	res, err := legaldocs.GenerateDocument(ctx, legaldocs.Request{
//		CompanyID: "company-1",
//		Kind:      legaldocs.KindStatutes,
//		Formats:   []legaldocs.Format{legaldocs.FormatPDF, legaldocs.FormatDOCX},
//		Input:     input,
//	})
package legaldocs

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/renderers/browserpdf"
)

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// BatchRequest aliases orchestrator.BatchRequest.
type BatchRequest = orchestrator.BatchRequest

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// BatchResult aliases orchestrator.BatchResult.
type BatchResult = orchestrator.BatchResult

// RawInput is the loose company payload accepted by the assembler.
type RawInput = assembler.RawInput

// Artifact is one stored output file.
type Artifact = records.GeneratedArtifact

// DocumentKind and Format alias the record enums.
type (
	DocumentKind = records.DocumentKind
	Format       = records.Format
)

// Document kinds.
const (
	KindStatutes                = records.KindStatutes
	KindLeaseContract           = records.KindLeaseContract
	KindRegistrationForm        = records.KindRegistrationForm
	KindManagerRoster           = records.KindManagerRoster
	KindHonorDeclaration        = records.KindHonorDeclaration
	KindSubscriptionDeclaration = records.KindSubscriptionDeclaration
	KindShareRegister           = records.KindShareRegister
)

// Output formats.
const (
	FormatPDF  = records.FormatPDF
	FormatDOCX = records.FormatDOCX
	FormatTXT  = records.FormatTXT
	FormatXLSX = records.FormatXLSX
)

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// GenerateDocument builds a one-off orchestrator and produces req. Callers
// generating repeatedly should keep an orchestrator instead.
func GenerateDocument(ctx context.Context, req Request, options ...orchestrator.Option) (Result, error) {
	gen, err := orchestrator.New(options...)
	if err != nil {
		return Result{}, err
	}
	return gen.GenerateDocument(ctx, req)
}

// GenerateMultipleDocuments is the batch counterpart of GenerateDocument.
func GenerateMultipleDocuments(ctx context.Context, req BatchRequest, options ...orchestrator.Option) (BatchResult, error) {
	gen, err := orchestrator.New(options...)
	if err != nil {
		return BatchResult{}, err
	}
	return gen.GenerateMultipleDocuments(ctx, req), nil
}

// EmbeddedTemplates exposes the HTML templates of the browser PDF renderer so
// callers can copy and extend them.
func EmbeddedTemplates() fs.FS {
	return browserpdf.TemplatesFS()
}

// EmbeddedClauses exposes the built-in clause catalog files.
func EmbeddedClauses() fs.FS {
	return boilerplate.EmbeddedFS()
}
