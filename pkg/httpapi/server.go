package httpapi

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/pkg/assembler"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/packager"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/store"
)

// UserHeader carries the caller identity recorded with every document.
const UserHeader = "X-User-ID"

const userKey = "userID"

// DocumentFinder looks up stored document records. *store.Repository
// satisfies it.
type DocumentFinder interface {
	FindByID(ctx context.Context, id string) (store.Document, error)
}

// Option customises the server.
type Option func(*Server)

// WithDocuments enables the download and view routes.
func WithDocuments(finder DocumentFinder) Option {
	return func(s *Server) {
		s.documents = finder
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHealthCheck makes /health report 503 when check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

// WithContract replaces the embedded OpenAPI contract.
func WithContract(contract *Contract) Option {
	return func(s *Server) {
		s.contract = contract
	}
}

// WithBodyLimit caps request bodies, using echo's size syntax ("2M").
func WithBodyLimit(limit string) Option {
	return func(s *Server) {
		if limit != "" {
			s.bodyLimit = limit
		}
	}
}

// Server exposes the orchestrator over HTTP.
type Server struct {
	echo      *echo.Echo
	orch      *orchestrator.Orchestrator
	documents DocumentFinder
	contract  *Contract
	health    func(ctx context.Context) error
	bodyLimit string
	logger    *zap.Logger
}

// New builds the echo application and registers every route.
func New(orch *orchestrator.Orchestrator, options ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("httpapi: orchestrator is required")
	}
	s := &Server{
		orch:      orch,
		bodyLimit: "2M",
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.contract == nil {
		contract, err := DefaultContract()
		if err != nil {
			return nil, err
		}
		s.contract = contract
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(s.bodyLimit))
	e.Use(s.requestLogger)
	e.Use(userMiddleware)
	e.Use(s.contract.Middleware())

	e.GET("/health", s.Health)

	api := e.Group("/api")
	api.POST("/companies/:companyID/documents", s.GenerateDocument)
	api.POST("/companies/:companyID/documents/batch", s.GenerateDocuments)
	api.DELETE("/companies/:companyID/documents", s.DeleteCompanyDocuments)
	api.GET("/documents/:id/download", s.DownloadDocument)
	api.GET("/documents/:id/view", s.ViewDocument)

	s.echo = e
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpapi: serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		s.logger.Debug("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", c.Response().Status),
		)
		return nil
	}
}

func userMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(userKey, c.Request().Header.Get(UserHeader))
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userKey).(string)
	return id
}

type inputBody struct {
	Formats    []records.Format  `json:"formats"`
	PDFEngine  records.PDFEngine `json:"pdfEngine"`
	Company    map[string]any    `json:"company"`
	Associates []map[string]any  `json:"associates"`
	Managers   []map[string]any  `json:"managers"`
	Lease      map[string]any    `json:"lease"`
}

func (b inputBody) raw() assembler.RawInput {
	return assembler.RawInput{
		Company:    b.Company,
		Associates: b.Associates,
		Managers:   b.Managers,
		Lease:      b.Lease,
	}
}

type generateBody struct {
	inputBody
	Kind records.DocumentKind `json:"kind"`
}

type batchBody struct {
	inputBody
	Kinds []records.DocumentKind `json:"kinds"`
}

// Health reports whether the service and its browser are usable.
func (s *Server) Health(c echo.Context) error {
	if s.health != nil {
		if err := s.health(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, err.Error())
		}
	}
	return c.String(http.StatusOK, "OK")
}

// GenerateDocument produces one kind in the requested formats.
func (s *Server) GenerateDocument(c echo.Context) error {
	var body generateBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, orchestrator.ErrorInfo{Category: CategoryContract, Message: err.Error()})
	}

	res, err := s.orch.GenerateDocument(c.Request().Context(), orchestrator.Request{
		CompanyID: c.Param("companyID"),
		UserID:    userID(c),
		Kind:      body.Kind,
		Formats:   body.Formats,
		PDFEngine: body.PDFEngine,
		Input:     body.raw(),
	})
	if err != nil {
		return c.JSON(statusOf(err), orchestrator.Describe(err))
	}
	if len(res.Artifacts) == 0 {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusCreated, res)
}

// GenerateDocuments produces several kinds sharing one input.
func (s *Server) GenerateDocuments(c echo.Context) error {
	var body batchBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, orchestrator.ErrorInfo{Category: CategoryContract, Message: err.Error()})
	}

	res := s.orch.GenerateMultipleDocuments(c.Request().Context(), orchestrator.BatchRequest{
		CompanyID: c.Param("companyID"),
		UserID:    userID(c),
		Kinds:     body.Kinds,
		Formats:   body.Formats,
		PDFEngine: body.PDFEngine,
		Input:     body.raw(),
	})
	return c.JSON(http.StatusOK, res)
}

// DeleteCompanyDocuments removes every record, file and cache entry of the
// company.
func (s *Server) DeleteCompanyDocuments(c echo.Context) error {
	if err := s.orch.DeleteCompany(c.Request().Context(), c.Param("companyID")); err != nil {
		s.logger.Error("delete company documents", zap.String("company", c.Param("companyID")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, orchestrator.Describe(err))
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadDocument streams a stored document as an attachment.
func (s *Server) DownloadDocument(c echo.Context) error {
	return s.serveDocument(c, "attachment")
}

// ViewDocument streams a stored document for inline display.
func (s *Server) ViewDocument(c echo.Context) error {
	return s.serveDocument(c, "inline")
}

func (s *Server) serveDocument(c echo.Context, disposition string) error {
	if s.documents == nil {
		return c.JSON(http.StatusNotFound, orchestrator.ErrorInfo{Category: "not_found", Message: "document store disabled"})
	}
	ctx := c.Request().Context()
	doc, err := s.documents.FindByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, orchestrator.ErrorInfo{Category: "not_found", Message: err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, orchestrator.Describe(err))
	}
	if caller := userID(c); doc.UserID != "" && caller != "" && caller != doc.UserID {
		return c.JSON(http.StatusForbidden, orchestrator.ErrorInfo{Category: "forbidden", Message: "document belongs to another user"})
	}

	reader, err := s.orch.Packager().Open(ctx, doc.Artifact())
	if errors.Is(err, packager.ErrNotFound) {
		return c.JSON(http.StatusNotFound, orchestrator.ErrorInfo{Category: "not_found", Message: err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, orchestrator.Describe(err))
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{"filename": doc.FileName}))
	return c.Stream(http.StatusOK, doc.MimeType, reader)
}

// statusOf maps a pipeline error onto an HTTP status.
func statusOf(err error) int {
	switch {
	case docerr.IsValidation(err):
		return http.StatusUnprocessableEntity
	case docerr.IsComposition(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
