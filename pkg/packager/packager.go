package packager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/render"
)

// ErrCompanyRequired is returned when an artifact has no owning company.
var ErrCompanyRequired = errors.New("packager: company id is required")

// maxNameAttempts bounds the suffixes tried when a runtime name is taken.
const maxNameAttempts = 100

// PackageInput carries one renderer output to store.
type PackageInput struct {
	CompanyID    string
	Denomination string
	Kind         records.DocumentKind
	Format       records.Format
	Renderer     string
	Output       render.Output
}

// Option customises the Packager.
type Option func(*Packager)

// WithClock overrides the time source used for names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides artifact id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Packager) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Packager) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Packager writes renderer outputs to Storage.
type Packager struct {
	storage Storage
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
}

// New constructs a packager writing to storage.
func New(storage Storage, options ...Option) (*Packager, error) {
	if storage == nil {
		return nil, errors.New("packager: storage is required")
	}
	p := &Packager{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Storage returns the backing store.
func (p *Packager) Storage() Storage {
	return p.storage
}

// StoragePath is the location of fileName for companyID.
func StoragePath(companyID, fileName string) string {
	return path.Join(companyID, fileName)
}

// Package stores in.Output and returns the artifact describing it. Every
// storage failure is reported as a docerr.PackagingError.
func (p *Packager) Package(ctx context.Context, in PackageInput) (records.GeneratedArtifact, error) {
	companyID, err := companyDir(in.CompanyID)
	if err != nil {
		return records.GeneratedArtifact{}, err
	}

	format := in.Format
	if format == "" {
		format = records.Format(in.Output.Extension)
	}
	mimeType := in.Output.MimeType
	if mimeType == "" {
		mimeType = format.MimeType()
	}
	ext := in.Output.Extension
	if ext == "" {
		ext = string(format)
	}

	now := p.now().UTC()
	baseName := RuntimeName(in.Kind, in.Denomination, now, ext)
	var fileName, storagePath string
	for n := 1; ; n++ {
		fileName = Suffixed(baseName, n)
		storagePath = StoragePath(companyID, fileName)
		err = p.storage.Put(ctx, storagePath, in.Output.Data, mimeType)
		if errors.Is(err, ErrExists) && n < maxNameAttempts {
			continue
		}
		break
	}
	if err != nil {
		p.logger.Error("store artifact failed",
			zap.String("path", storagePath),
			zap.Error(err),
		)
		return records.GeneratedArtifact{}, &docerr.PackagingError{Path: storagePath, Err: err}
	}

	sum := sha256.Sum256(in.Output.Data)
	artifact := records.GeneratedArtifact{
		ID:        p.newID(),
		CompanyID: companyID,
		Kind:      in.Kind,
		Format:    format,
		Renderer:  in.Renderer,
		FileName:  fileName,
		Path:      storagePath,
		MimeType:  mimeType,
		Size:      int64(len(in.Output.Data)),
		Checksum:  hex.EncodeToString(sum[:]),
		CreatedAt: now,
	}
	p.logger.Debug("artifact stored",
		zap.String("id", artifact.ID),
		zap.String("path", artifact.Path),
		zap.Int64("size", artifact.Size),
	)
	return artifact, nil
}

// Open streams the stored bytes of artifact.
func (p *Packager) Open(ctx context.Context, artifact records.GeneratedArtifact) (io.ReadCloser, error) {
	return p.storage.Open(ctx, artifact.Path)
}

// DeleteCompany removes every stored artifact of companyID.
func (p *Packager) DeleteCompany(ctx context.Context, companyID string) error {
	dir, err := companyDir(companyID)
	if err != nil {
		return err
	}
	prefix := dir + "/"
	if err := p.storage.Delete(ctx, prefix); err != nil {
		return &docerr.PackagingError{Path: prefix, Err: err}
	}
	return nil
}

func companyDir(companyID string) (string, error) {
	id := strings.TrimSpace(companyID)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", &docerr.PackagingError{Path: id, Err: ErrCompanyRequired}
	}
	return id, nil
}
