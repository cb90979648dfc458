package orchestrator

import (
	"errors"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// Request asks for one document kind in one or more formats.
type Request struct {
	CompanyID string               `json:"companyId"`
	UserID    string               `json:"userId,omitempty"`
	Kind      records.DocumentKind `json:"kind"`
	Formats   []records.Format     `json:"formats,omitempty"`
	PDFEngine records.PDFEngine    `json:"pdfEngine,omitempty"`
	Input     assembler.RawInput   `json:"input"`
}

// BatchRequest asks for several kinds sharing the same input. An empty Kinds
// list selects every kind the composer knows.
type BatchRequest struct {
	CompanyID string                 `json:"companyId"`
	UserID    string                 `json:"userId,omitempty"`
	Kinds     []records.DocumentKind `json:"kinds,omitempty"`
	Formats   []records.Format       `json:"formats,omitempty"`
	PDFEngine records.PDFEngine      `json:"pdfEngine,omitempty"`
	Input     assembler.RawInput     `json:"input"`
}

// ErrorInfo is the serialisable form of a pipeline error.
type ErrorInfo struct {
	Category string              `json:"category"`
	Message  string              `json:"message"`
	Fields   map[string][]string `json:"fields,omitempty"`
}

// Describe converts err into an ErrorInfo. It returns nil for a nil error.
func Describe(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{Category: docerr.Category(err), Message: err.Error()}
	var verr *docerr.ValidationError
	if errors.As(err, &verr) {
		info.Fields = verr.Fields
	}
	return info
}

// FormatFailure reports why one requested format produced no artifact.
type FormatFailure struct {
	Format   records.Format `json:"format"`
	Renderer string         `json:"renderer,omitempty"`
	Attempts int            `json:"attempts"`
	Error    *ErrorInfo     `json:"error"`
	Err      error          `json:"-"`
}

// Result holds exactly one artifact or one failure per requested format.
type Result struct {
	Kind      records.DocumentKind        `json:"kind"`
	Artifacts []records.GeneratedArtifact `json:"artifacts"`
	Failures  []FormatFailure             `json:"failures,omitempty"`
}

// Complete reports whether every requested format produced an artifact.
func (r Result) Complete() bool {
	return len(r.Failures) == 0
}

// Artifact returns the artifact produced for format.
func (r Result) Artifact(format records.Format) (records.GeneratedArtifact, bool) {
	for _, a := range r.Artifacts {
		if a.Format == format {
			return a, true
		}
	}
	return records.GeneratedArtifact{}, false
}

// KindResult is the outcome of one kind within a batch: either Result or
// Error is set.
type KindResult struct {
	Kind   records.DocumentKind `json:"kind"`
	Result *Result              `json:"result,omitempty"`
	Error  *ErrorInfo           `json:"error,omitempty"`
	Err    error                `json:"-"`
}

// BatchResult lists one KindResult per requested kind, in request order.
type BatchResult struct {
	Documents []KindResult `json:"documents"`
}

// Failed counts kinds that aborted before rendering.
func (b BatchResult) Failed() int {
	n := 0
	for _, d := range b.Documents {
		if d.Error != nil {
			n++
		}
	}
	return n
}
