package legaldocs_test

import (
	"context"
	"io/fs"
	"testing"

	legaldocs "github.com/goliatone/go-legaldocs"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func TestEmbeddedFSContainsEntryPoints(t *testing.T) {
	if _, err := fs.ReadFile(legaldocs.EmbeddedTemplates(), "document.html"); err != nil {
		t.Fatalf("expected document template to be readable: %v", err)
	}
	if _, err := fs.ReadFile(legaldocs.EmbeddedClauses(), "statutes.yaml"); err != nil {
		t.Fatalf("expected statutes clauses to be readable: %v", err)
	}
}

func TestGenerateDocument(t *testing.T) {
	storage, err := packager.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	res, err := legaldocs.GenerateDocument(context.Background(), legaldocs.Request{
		CompanyID: "company-1",
		Kind:      legaldocs.KindStatutes,
		Formats:   []legaldocs.Format{legaldocs.FormatTXT},
		Input:     testsupport.SingleOwnerInput(),
	}, orchestrator.WithStorage(storage), orchestrator.WithClock(testsupport.FixedClock))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !res.Complete() || len(res.Artifacts) != 1 {
		t.Fatalf("result = %+v", res)
	}
}
