package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/store"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func newRepository(t *testing.T) *store.Repository {
	t.Helper()
	db, err := store.Open(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(db) })
	return store.NewRepository(db)
}

func artifact(id, company string, kind records.DocumentKind, offset time.Duration) records.GeneratedArtifact {
	return records.GeneratedArtifact{
		ID:        id,
		CompanyID: company,
		Kind:      kind,
		Format:    records.FormatPDF,
		Renderer:  "layoutpdf",
		FileName:  string(kind) + ".pdf",
		Path:      company + "/" + string(kind) + ".pdf",
		MimeType:  "application/pdf",
		Size:      1024,
		Checksum:  "deadbeef",
		CreatedAt: testsupport.IncorporationDate.Add(offset),
	}
}

func TestRepository_InsertAndFind(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	want := artifact("a1", "company-1", records.KindStatutes, 0)

	doc, err := repo.Insert(ctx, "user-1", "company-1", want)
	require.NoError(t, err)
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "statutes", doc.DocumentType)

	found, err := repo.FindByID(ctx, "a1")
	require.NoError(t, err)
	got := found.Artifact()
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	got.CreatedAt = want.CreatedAt
	assert.Equal(t, want, got)
}

func TestRepository_FindMissing(t *testing.T) {
	repo := newRepository(t)
	_, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
}

func TestRepository_ListAndDeleteByCompany(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "user-1", "company-1", artifact("a2", "company-1", records.KindLeaseContract, time.Minute))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "user-1", "company-1", artifact("a1", "company-1", records.KindStatutes, 0))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "user-2", "", artifact("b1", "company-2", records.KindStatutes, 0))
	require.NoError(t, err)

	docs, err := repo.ListByCompany(ctx, "company-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a1", docs[0].ID)
	assert.Equal(t, "a2", docs[1].ID)

	n, err := repo.DeleteByCompany(ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	docs, err = repo.ListByCompany(ctx, "company-1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	other, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "company-2", other.CompanyID)
}

func TestRepository_DuplicateIDFails(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	a := artifact("a1", "company-1", records.KindStatutes, 0)
	_, err := repo.Insert(ctx, "user-1", "company-1", a)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "user-1", "company-1", a)
	assert.Error(t, err)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := store.Open("oracle", "dsn")
	assert.Error(t, err)
}
