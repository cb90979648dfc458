package records

import (
	"fmt"
	"strings"
	"time"
)

// DocumentKind enumerates the incorporation documents the pipeline produces.
type DocumentKind string

const (
	KindStatutes                DocumentKind = "statutes"
	KindLeaseContract           DocumentKind = "lease_contract"
	KindRegistrationForm        DocumentKind = "registration_form"
	KindManagerRoster           DocumentKind = "manager_roster"
	KindHonorDeclaration        DocumentKind = "honor_declaration"
	KindSubscriptionDeclaration DocumentKind = "subscription_declaration"
	KindShareRegister           DocumentKind = "share_register"
)

var allKinds = []DocumentKind{
	KindStatutes,
	KindLeaseContract,
	KindRegistrationForm,
	KindManagerRoster,
	KindHonorDeclaration,
	KindSubscriptionDeclaration,
	KindShareRegister,
}

// AllKinds returns every document kind in canonical order.
func AllKinds() []DocumentKind {
	return append([]DocumentKind(nil), allKinds...)
}

// ParseKind validates a raw kind identifier.
func ParseKind(raw string) (DocumentKind, error) {
	candidate := DocumentKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range allKinds {
		if k == candidate {
			return k, nil
		}
	}
	return "", fmt.Errorf("records: unknown document kind %q", raw)
}

// Label is the human-readable French name of the kind.
func (k DocumentKind) Label() string {
	switch k {
	case KindStatutes:
		return "Statuts"
	case KindLeaseContract:
		return "Contrat de bail commercial"
	case KindRegistrationForm:
		return "Formulaire d'immatriculation"
	case KindManagerRoster:
		return "Liste des gérants"
	case KindHonorDeclaration:
		return "Déclaration sur l'honneur"
	case KindSubscriptionDeclaration:
		return "Déclaration de souscription et de versement"
	case KindShareRegister:
		return "Registre des parts sociales"
	default:
		return string(k)
	}
}

// Format is an output format requested by callers.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a raw format identifier.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatPDF, FormatDOCX, FormatTXT, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("records: unknown format %q", raw)
	}
}

// MimeType returns the fixed mime type associated with the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// PDFEngine selects which renderer produces PDF output.
type PDFEngine string

const (
	// PDFEngineBrowser prints HTML through the shared headless browser.
	PDFEngineBrowser PDFEngine = "browser"
	// PDFEngineLayout lays blocks out in-process.
	PDFEngineLayout PDFEngine = "layout"
)

// DocumentRequest asks for one kind in one or more formats.
type DocumentRequest struct {
	Kind      DocumentKind `json:"kind"`
	Formats   []Format     `json:"formats"`
	PDFEngine PDFEngine    `json:"pdfEngine,omitempty"`
}

// GeneratedArtifact is the immutable result of packaging one renderer run.
type GeneratedArtifact struct {
	ID        string       `json:"id"`
	CompanyID string       `json:"companyId,omitempty"`
	Kind      DocumentKind `json:"kind"`
	Format    Format       `json:"format"`
	Renderer  string       `json:"renderer"`
	FileName  string       `json:"fileName"`
	Path      string       `json:"path"`
	MimeType  string       `json:"mimeType"`
	Size      int64        `json:"size"`
	Checksum  string       `json:"checksum"`
	CreatedAt time.Time    `json:"createdAt"`
}
