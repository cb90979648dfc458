package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-legaldocs/internal/app"
	"github.com/goliatone/go-legaldocs/internal/config"
	"github.com/goliatone/go-legaldocs/pkg/cache"
	"github.com/goliatone/go-legaldocs/pkg/orchestrator"
	"github.com/goliatone/go-legaldocs/pkg/records"
	"github.com/goliatone/go-legaldocs/pkg/testsupport"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Root = filepath.Join(dir, "documents")
	cfg.Database.DSN = filepath.Join(dir, "db", "legaldocs.db")
	cfg.Browser.Enabled = false
	return cfg
}

func TestBuild_LocalSQLiteMemoryCache(t *testing.T) {
	ctx := context.Background()
	a, err := app.Build(ctx, testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.Nil(t, a.Pool)
	assert.NoError(t, a.HealthCheck(ctx))
	_, isMemory := a.Cache.(*cache.MemoryCache)
	assert.True(t, isMemory)

	res, err := a.Orchestrator.GenerateDocument(ctx, orchestrator.Request{
		CompanyID: "company-1",
		Kind:      records.KindStatutes,
		Input:     testsupport.SingleOwnerInput(),
	})
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "layoutpdf", res.Artifacts[0].Renderer)

	docs, err := a.Documents.ListByCompany(ctx, "company-1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestBuild_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()
	cfg.Render.Formats = []string{"txt"}

	a, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, isRedis := a.Cache.(*cache.RedisCache)
	require.True(t, isRedis)

	_, err = a.Orchestrator.GenerateDocument(context.Background(), orchestrator.Request{
		CompanyID: "company-1",
		Kind:      records.KindManagerRoster,
		Input:     testsupport.SingleOwnerInput(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
}

func TestBuild_UnreachableRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Addr = addr
	_, err := app.Build(context.Background(), cfg, nil)
	require.Error(t, err)
}
