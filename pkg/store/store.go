// Package store records generated documents in a relational database
// through GORM. SQLite (pure Go driver) and PostgreSQL are supported.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("store: document not found")

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Document is one stored artifact and its owner.
type Document struct {
	ID           string `gorm:"primaryKey;size:64"`
	UserID       string `gorm:"index;size:128"`
	CompanyID    string `gorm:"index;size:128;not null"`
	DocumentType string `gorm:"size:64;not null"`
	Format       string `gorm:"size:16;not null"`
	Renderer     string `gorm:"size:32"`
	FileName     string `gorm:"size:255;not null"`
	Path         string `gorm:"size:512;not null"`
	MimeType     string `gorm:"size:128;not null"`
	Size         int64
	Checksum     string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Artifact converts the row back into the packaging record.
func (d Document) Artifact() records.GeneratedArtifact {
	return records.GeneratedArtifact{
		ID:        d.ID,
		CompanyID: d.CompanyID,
		Kind:      records.DocumentKind(d.DocumentType),
		Format:    records.Format(d.Format),
		Renderer:  d.Renderer,
		FileName:  d.FileName,
		Path:      d.Path,
		MimeType:  d.MimeType,
		Size:      d.Size,
		Checksum:  d.Checksum,
		CreatedAt: d.CreatedAt,
	}
}

// Open connects to driver/dsn and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3", "":
		if dsn == "" {
			dsn = "legaldocs.db"
		}
		dialector = sqlite.Open(dsn)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if dialector.Name() == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("store: sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return db, nil
}

// Repository reads and writes Document rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert records artifact for userID and companyID.
func (r *Repository) Insert(ctx context.Context, userID, companyID string, artifact records.GeneratedArtifact) (Document, error) {
	if companyID == "" {
		companyID = artifact.CompanyID
	}
	doc := Document{
		ID:           artifact.ID,
		UserID:       userID,
		CompanyID:    companyID,
		DocumentType: string(artifact.Kind),
		Format:       string(artifact.Format),
		Renderer:     artifact.Renderer,
		FileName:     artifact.FileName,
		Path:         artifact.Path,
		MimeType:     artifact.MimeType,
		Size:         artifact.Size,
		Checksum:     artifact.Checksum,
		CreatedAt:    artifact.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return Document{}, fmt.Errorf("store: insert %s: %w", artifact.ID, err)
	}
	return doc, nil
}

// FindByID returns the document with id or ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("store: find %s: %w", id, err)
	}
	return doc, nil
}

// ListByCompany returns the documents of companyID, oldest first.
func (r *Repository) ListByCompany(ctx context.Context, companyID string) ([]Document, error) {
	var docs []Document
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at, id").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", companyID, err)
	}
	return docs, nil
}

// DeleteByCompany removes every document of companyID and reports how many
// rows were deleted.
func (r *Repository) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	if companyID == "" {
		return 0, errors.New("store: company id is required")
	}
	res := r.db.WithContext(ctx).Where("company_id = ?", companyID).Delete(&Document{})
	if res.Error != nil {
		return 0, fmt.Errorf("store: delete %s: %w", companyID, res.Error)
	}
	return res.RowsAffected, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
