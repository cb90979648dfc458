package httpapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
)

//go:embed openapi.yaml
var contractYAML []byte

// CategoryContract marks requests rejected by the OpenAPI contract.
const CategoryContract = "contract"

// Contract validates incoming requests against an OpenAPI document.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
}

// DefaultContract returns the embedded API contract.
func DefaultContract() (*Contract, error) {
	return LoadContract(context.Background(), contractYAML)
}

// LoadContract parses and validates an OpenAPI 3 document.
func LoadContract(ctx context.Context, data []byte) (*Contract, error) {
	if len(data) == 0 {
		return nil, errors.New("httpapi: contract payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("httpapi: load contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("httpapi: validate contract: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("httpapi: contract router: %w", err)
	}
	return &Contract{doc: doc, router: router}, nil
}

// Document exposes the parsed OpenAPI document.
func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// Validate checks req against the operation it targets. Requests that match
// no documented route pass through untouched.
func (c *Contract) Validate(req *http.Request) error {
	route, params, err := c.router.FindRoute(req)
	if err != nil {
		var routeErr *routers.RouteError
		if errors.As(err, &routeErr) {
			return nil
		}
		return err
	}
	return openapi3filter.ValidateRequest(req.Context(), &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: params,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	})
}

// Middleware rejects requests violating the contract with 400.
func (c *Contract) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := c.Validate(ctx.Request()); err != nil {
				return ctx.JSON(http.StatusBadRequest, orchestrator.ErrorInfo{
					Category: CategoryContract,
					Message:  err.Error(),
				})
			}
			return next(ctx)
		}
	}
}
