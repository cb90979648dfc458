package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-legaldocs/pkg/browser"
	"github.com/goliatone/go-legaldocs/pkg/browser/browsertest"
	"github.com/goliatone/go-legaldocs/pkg/cache"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
	"github.com/goliatone/go-legaldocs/pkg/renderers/docx"
	"github.com/goliatone/go-legaldocs/pkg/store"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func newOrchestrator(t *testing.T, options ...orchestrator.Option) (*orchestrator.Orchestrator, *packager.LocalStorage) {
	t.Helper()
	storage, err := packager.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	base := []orchestrator.Option{
		orchestrator.WithStorage(storage),
		orchestrator.WithClock(testsupport.FixedClock),
	}
	o, err := orchestrator.New(append(base, options...)...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o, storage
}

func request(kind records.DocumentKind, formats ...records.Format) orchestrator.Request {
	return orchestrator.Request{
		CompanyID: "company-1",
		UserID:    "user-1",
		Kind:      kind,
		Formats:   formats,
		Input:     testsupport.SingleOwnerInput(),
	}
}

func formatsOf(res orchestrator.Result) []records.Format {
	var out []records.Format
	for _, a := range res.Artifacts {
		out = append(out, a.Format)
	}
	for _, f := range res.Failures {
		out = append(out, f.Format)
	}
	return out
}

func readArtifact(t *testing.T, o *orchestrator.Orchestrator, a records.GeneratedArtifact) string {
	t.Helper()
	rc, err := o.Packager().Open(context.Background(), a)
	if err != nil {
		t.Fatalf("open %s: %v", a.Path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", a.Path, err)
	}
	return string(data)
}

func TestGenerateDocument_OneArtifactPerFormat(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.GenerateDocument(context.Background(), request(records.KindStatutes,
		records.FormatPDF, records.FormatDOCX, records.FormatPDF, "TXT", records.FormatXLSX))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !res.Complete() {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	want := []records.Format{records.FormatPDF, records.FormatDOCX, records.FormatTXT, records.FormatXLSX}
	if diff := cmp.Diff(want, formatsOf(res)); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}

	pdf, _ := res.Artifact(records.FormatPDF)
	if pdf.Renderer != "layoutpdf" || pdf.MimeType != "application/pdf" {
		t.Fatalf("pdf artifact = %+v", pdf)
	}
	if !strings.HasPrefix(pdf.FileName, "statutes_fihavanana-trading_20260801-000000") {
		t.Fatalf("file name = %q", pdf.FileName)
	}
	if !strings.HasPrefix(readArtifact(t, o, pdf), "%PDF-") {
		t.Fatalf("stored pdf is not a PDF")
	}
	txt, _ := res.Artifact(records.FormatTXT)
	flat := strings.Join(strings.Fields(readArtifact(t, o, txt)), " ")
	if !strings.Contains(flat, "100 parts sociales (100.00%)") {
		t.Fatalf("text artifact misses the associate share line")
	}
}

func TestGenerateDocument_PDFAndDOCXAlwaysYieldTwoEntries(t *testing.T) {
	o, _ := newOrchestrator(t)
	for _, kind := range records.AllKinds() {
		res, err := o.GenerateDocument(context.Background(), request(kind, records.FormatPDF, records.FormatDOCX))
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if n := len(res.Artifacts) + len(res.Failures); n != 2 {
			t.Fatalf("%s: %d entries, want 2", kind, n)
		}
	}
}

func TestGenerateDocument_UnsupportedFormatFailsAlone(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.GenerateDocument(context.Background(), request(records.KindManagerRoster, records.FormatTXT, "rtf"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Artifacts) != 1 || len(res.Failures) != 1 {
		t.Fatalf("artifacts=%d failures=%d", len(res.Artifacts), len(res.Failures))
	}
	f := res.Failures[0]
	if f.Format != "rtf" || f.Error.Category != "render" || !errors.Is(f.Err, orchestrator.ErrUnsupportedFormat) {
		t.Fatalf("failure = %+v", f)
	}
}

func TestGenerateDocument_DefaultsToPDF(t *testing.T) {
	o, _ := newOrchestrator(t)
	res, err := o.GenerateDocument(context.Background(), request(records.KindHonorDeclaration))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]records.Format{records.FormatPDF}, formatsOf(res)); diff != "" {
		t.Fatalf("formats mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateDocument_ValidationStopsBeforeRendering(t *testing.T) {
	o, _ := newOrchestrator(t)
	req := request(records.KindStatutes, records.FormatTXT)
	req.Input.Associates = nil

	res, err := o.GenerateDocument(context.Background(), req)
	if !docerr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(res.Artifacts) != 0 || len(res.Failures) != 0 {
		t.Fatalf("nothing should render: %+v", res)
	}
}

func TestGenerateDocument_UnknownKindIsValidation(t *testing.T) {
	o, _ := newOrchestrator(t)
	_, err := o.GenerateDocument(context.Background(), request("articles_of_war", records.FormatTXT))
	var verr *docerr.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["kind"]) != 1 {
		t.Fatalf("expected kind validation error, got %v", err)
	}
}

func TestGenerateDocument_CompositionError(t *testing.T) {
	o, _ := newOrchestrator(t)
	req := request(records.KindLeaseContract, records.FormatTXT)
	req.Input.Lease = nil
	_, err := o.GenerateDocument(context.Background(), req)
	if !docerr.IsComposition(err) {
		t.Fatalf("expected composition error, got %v", err)
	}
}

func TestGenerateDocument_BrowserCrashRecyclesAndRetriesOnce(t *testing.T) {
	launcher := browsertest.NewLauncher()
	pool := browser.NewPool(browser.WithLauncher(launcher))
	t.Cleanup(func() { _ = pool.Close() })
	o, _ := newOrchestrator(t, orchestrator.WithBrowserPool(pool))

	launcher.CrashNext(1)
	res, err := o.GenerateDocument(context.Background(), request(records.KindStatutes, records.FormatPDF))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !res.Complete() {
		t.Fatalf("retry should have succeeded: %+v", res.Failures)
	}
	pdf, _ := res.Artifact(records.FormatPDF)
	if pdf.Renderer != "browserpdf" {
		t.Fatalf("renderer = %q", pdf.Renderer)
	}
	if !strings.HasPrefix(readArtifact(t, o, pdf), browsertest.PDFPrefix) {
		t.Fatalf("artifact was not printed by the browser")
	}
	if st := pool.Stats(); st.Launches != 2 || st.Recycles != 1 {
		t.Fatalf("stats = %+v, want 2 launches and 1 recycle", st)
	}
	if launcher.OpenPages() != 0 {
		t.Fatalf("%d pages left open", launcher.OpenPages())
	}
}

func TestGenerateDocument_PersistentCrashSurfacesAfterOneRetry(t *testing.T) {
	launcher := browsertest.NewLauncher()
	pool := browser.NewPool(browser.WithLauncher(launcher))
	t.Cleanup(func() { _ = pool.Close() })
	o, _ := newOrchestrator(t, orchestrator.WithBrowserPool(pool))

	launcher.CrashNext(5)
	res, err := o.GenerateDocument(context.Background(), request(records.KindStatutes, records.FormatPDF, records.FormatTXT))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Failures) != 1 || len(res.Artifacts) != 1 {
		t.Fatalf("artifacts=%d failures=%d", len(res.Artifacts), len(res.Failures))
	}
	f := res.Failures[0]
	if f.Attempts != 2 || !docerr.IsRetryable(f.Err) || f.Renderer != "browserpdf" {
		t.Fatalf("failure = %+v", f)
	}
	if got := pool.Stats().Recycles; got != 1 {
		t.Fatalf("recycles = %d, want 1", got)
	}
}

func TestGenerateDocument_LayoutEngineOverride(t *testing.T) {
	launcher := browsertest.NewLauncher()
	pool := browser.NewPool(browser.WithLauncher(launcher))
	t.Cleanup(func() { _ = pool.Close() })
	o, _ := newOrchestrator(t, orchestrator.WithBrowserPool(pool))

	req := request(records.KindStatutes, records.FormatPDF)
	req.PDFEngine = records.PDFEngineLayout
	res, err := o.GenerateDocument(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Artifacts[0].Renderer != "layoutpdf" || launcher.Launches() != 0 {
		t.Fatalf("renderer = %q launches = %d", res.Artifacts[0].Renderer, launcher.Launches())
	}
}

func TestGenerateDocument_CacheReusesArtifacts(t *testing.T) {
	c := cache.NewMemory(nil)
	o, _ := newOrchestrator(t, orchestrator.WithCache(c, 0))

	first, err := o.GenerateDocument(context.Background(), request(records.KindShareRegister, records.FormatXLSX))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := o.GenerateDocument(context.Background(), request(records.KindShareRegister, records.FormatXLSX))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Artifacts[0].ID != second.Artifacts[0].ID {
		t.Fatalf("expected cached artifact %s, got %s", first.Artifacts[0].ID, second.Artifacts[0].ID)
	}
	if c.Len() != 1 {
		t.Fatalf("cache entries = %d", c.Len())
	}
}

func TestGenerateDocument_RecordsDocumentsAndDeletesCompany(t *testing.T) {
	db, err := store.Open(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(db) })
	repo := store.NewRepository(db)
	c := cache.NewMemory(nil)
	o, _ := newOrchestrator(t, orchestrator.WithDocumentStore(repo), orchestrator.WithCache(c, 0))
	ctx := context.Background()

	res, err := o.GenerateDocument(ctx, request(records.KindStatutes, records.FormatTXT, records.FormatDOCX))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	docs, err := repo.ListByCompany(ctx, "company-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != len(res.Artifacts) || docs[0].UserID != "user-1" {
		t.Fatalf("stored %d documents for %d artifacts", len(docs), len(res.Artifacts))
	}

	if err := o.DeleteCompany(ctx, "company-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if docs, _ := repo.ListByCompany(ctx, "company-1"); len(docs) != 0 {
		t.Fatalf("%d documents left", len(docs))
	}
	if _, err := o.Packager().Open(ctx, res.Artifacts[0]); !errors.Is(err, packager.ErrNotFound) {
		t.Fatalf("file should be gone, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("cache not purged: %d entries", c.Len())
	}
}

func TestGenerateMultipleDocuments_IsolatesFailures(t *testing.T) {
	o, _ := newOrchestrator(t)
	in := testsupport.SingleOwnerInput()
	in.Lease = nil

	batch := o.GenerateMultipleDocuments(context.Background(), orchestrator.BatchRequest{
		CompanyID: "company-1",
		Kinds: []records.DocumentKind{
			records.KindStatutes,
			records.KindLeaseContract,
			"unknown",
			records.KindManagerRoster,
			records.KindStatutes,
		},
		Formats: []records.Format{records.FormatTXT},
		Input:   in,
	})

	var got []string
	for _, d := range batch.Documents {
		switch {
		case d.Result != nil && d.Error == nil:
			got = append(got, string(d.Kind)+":ok")
		case d.Result == nil && d.Error != nil:
			got = append(got, string(d.Kind)+":"+d.Error.Category)
		default:
			t.Fatalf("%s: result and error must be exclusive", d.Kind)
		}
	}
	want := []string{"statutes:ok", "lease_contract:composition", "unknown:validation", "manager_roster:ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
	if batch.Failed() != 2 {
		t.Fatalf("failed = %d, want 2", batch.Failed())
	}
}

func TestGenerateMultipleDocuments_DefaultsToEveryKind(t *testing.T) {
	o, _ := newOrchestrator(t)
	batch := o.GenerateMultipleDocuments(context.Background(), orchestrator.BatchRequest{
		CompanyID: "company-1",
		Formats:   []records.Format{records.FormatTXT},
		Input:     testsupport.SingleOwnerInput(),
	})
	if len(batch.Documents) != len(records.AllKinds()) {
		t.Fatalf("documents = %d, want %d", len(batch.Documents), len(records.AllKinds()))
	}
	if batch.Failed() != 0 {
		for _, d := range batch.Documents {
			if d.Error != nil {
				t.Errorf("%s: %s", d.Kind, d.Error.Message)
			}
		}
		t.FailNow()
	}
}

type panickingRenderer struct{}

func (panickingRenderer) Name() string          { return "broken" }
func (panickingRenderer) Format() records.Format { return records.FormatTXT }
func (panickingRenderer) ContentType() string   { return "text/plain" }
func (panickingRenderer) Render(context.Context, content.Tree) (render.Output, error) {
	panic("index out of range [65533] with length 256")
}

func TestGenerateMultipleDocuments_RendererPanicFailsOnlyItsFormat(t *testing.T) {
	reg := render.NewRegistry()
	for _, r := range []render.Renderer{panickingRenderer{}, docx.New()} {
		if err := reg.Register(r); err != nil {
			t.Fatalf("register %s: %v", r.Name(), err)
		}
	}
	o, _ := newOrchestrator(t, orchestrator.WithRegistry(reg))

	batch := o.GenerateMultipleDocuments(context.Background(), orchestrator.BatchRequest{
		CompanyID: "company-1",
		Kinds:     []records.DocumentKind{records.KindStatutes, records.KindManagerRoster},
		Formats:   []records.Format{records.FormatTXT, records.FormatDOCX},
		Input:     testsupport.MultiOwnerInput(60, 40),
	})
	if len(batch.Documents) != 2 || batch.Failed() != 0 {
		t.Fatalf("documents=%d failed=%d", len(batch.Documents), batch.Failed())
	}
	for _, d := range batch.Documents {
		res := d.Result
		if len(res.Artifacts) != 1 || res.Artifacts[0].Format != records.FormatDOCX {
			t.Fatalf("%s: artifacts = %+v", d.Kind, res.Artifacts)
		}
		if len(res.Failures) != 1 {
			t.Fatalf("%s: failures = %d", d.Kind, len(res.Failures))
		}
		f := res.Failures[0]
		var rerr *docerr.RenderError
		if !errors.As(f.Err, &rerr) || rerr.Retryable || rerr.Renderer != "broken" || f.Attempts != 1 {
			t.Fatalf("%s: failure = %+v", d.Kind, f)
		}
		if !strings.Contains(f.Err.Error(), "panicked") {
			t.Fatalf("%s: error %q does not report the panic", d.Kind, f.Err)
		}
	}
}

func TestGenerateDocument_CacheIsScopedToUser(t *testing.T) {
	db, err := store.Open(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(db) })
	repo := store.NewRepository(db)
	o, _ := newOrchestrator(t, orchestrator.WithDocumentStore(repo), orchestrator.WithCache(cache.NewMemory(nil), 0))
	ctx := context.Background()

	first, err := o.GenerateDocument(ctx, request(records.KindStatutes, records.FormatTXT))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	req := request(records.KindStatutes, records.FormatTXT)
	req.UserID = "user-2"
	second, err := o.GenerateDocument(ctx, req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	a, b := first.Artifacts[0], second.Artifacts[0]
	if a.ID == b.ID || a.Path == b.Path {
		t.Fatalf("second user received the first user's artifact %s", a.ID)
	}
	for user, artifact := range map[string]records.GeneratedArtifact{"user-1": a, "user-2": b} {
		doc, err := repo.FindByID(ctx, artifact.ID)
		if err != nil {
			t.Fatalf("find %s: %v", artifact.ID, err)
		}
		if doc.UserID != user {
			t.Fatalf("document %s owned by %q, want %q", artifact.ID, doc.UserID, user)
		}
	}
	if readArtifact(t, o, a) != readArtifact(t, o, b) {
		t.Fatalf("same input produced different text")
	}
}

func TestGenerateMultipleDocuments_LayoutPDFHandlesAccentedTables(t *testing.T) {
	o, _ := newOrchestrator(t)
	batch := o.GenerateMultipleDocuments(context.Background(), orchestrator.BatchRequest{
		CompanyID: "company-1",
		Kinds: []records.DocumentKind{
			records.KindManagerRoster,
			records.KindStatutes,
			records.KindLeaseContract,
			records.KindRegistrationForm,
			records.KindShareRegister,
		},
		Formats: []records.Format{records.FormatPDF},
		Input:   testsupport.MultiOwnerInput(60, 40),
	})
	for _, d := range batch.Documents {
		if d.Error != nil {
			t.Fatalf("%s: %s", d.Kind, d.Error.Message)
		}
		if !d.Result.Complete() || d.Result.Artifacts[0].Renderer != "layoutpdf" {
			t.Fatalf("%s: failures = %+v", d.Kind, d.Result.Failures)
		}
	}
}
