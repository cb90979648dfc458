package docerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-legaldocs/pkg/docerr"
)

func TestValidationError_SortedMessage(t *testing.T) {
	verr := docerr.NewValidation()
	if verr.OrNil() != nil {
		t.Fatalf("empty validation error should be nil")
	}
	verr.Add("managers[0].name", "is required")
	verr.Add("company.capital", "must be greater than 0")
	verr.Add("company.capital", "must be a whole number")

	want := "validation failed: company.capital: must be greater than 0, must be a whole number; managers[0].name: is required"
	if got := verr.Error(); got != want {
		t.Fatalf("Error() = %q\nwant      %q", got, want)
	}
}

func TestCategory(t *testing.T) {
	render := &docerr.RenderError{Renderer: "browserpdf", Format: "pdf", Retryable: true, Err: errors.New("target closed")}
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", docerr.NewValidation()), "validation"},
		{docerr.Compositionf("statutes", "bad"), "composition"},
		{fmt.Errorf("attempt 1: %w", render), "render"},
		{&docerr.PackagingError{Path: "c/x.pdf", Err: errors.New("disk full")}, "packaging"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		if got := docerr.Category(tc.err); got != tc.want {
			t.Fatalf("Category(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("target closed")
	retry := fmt.Errorf("render: %w", &docerr.RenderError{Renderer: "browserpdf", Retryable: true, Err: cause})
	if !docerr.IsRetryable(retry) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(retry, cause) {
		t.Fatalf("RenderError must unwrap to its cause")
	}
	if docerr.IsRetryable(&docerr.RenderError{Renderer: "docx"}) {
		t.Fatalf("non-retryable render error reported retryable")
	}
}
