package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedex-bff/pokedex/pkg/cache"
	"github.com/pokedex-bff/pokedex/pkg/cache/memory"
	"github.com/pokedex-bff/pokedex/pkg/cache/sqlite"
	"github.com/pokedex-bff/pokedex/pkg/config"
	"github.com/pokedex-bff/pokedex/pkg/pokeapitest"
)

func writeConfig(t *testing.T, baseURL, backend string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pokedex.yaml")
	content := fmt.Sprintf(`
upstream:
  base_url: %s
cache:
  backend: %s
  db_path: %s
log:
  level: error
`, baseURL, backend, filepath.Join(dir, "cache.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOpenStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := openStore(ctx, config.CacheConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Cache{}, s)

	s, err = openStore(ctx, config.CacheConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	assert.IsType(t, cache.Nop{}, s)

	s, err = openStore(ctx, config.CacheConfig{Backend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "c.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Cache{}, s)
	require.NoError(t, s.Close())

	_, err = openStore(ctx, config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}

func TestFetchCommand(t *testing.T) {
	api := pokeapitest.NewServer()
	defer api.Close()
	cfg := writeConfig(t, api.BaseURL(), config.BackendMemory)

	out, err := run(t, "fetch", "-c", cfg, "--type", "fire")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "charmeleon")
	assert.Contains(t, out, "page 1 of 1, 3 total")

	out, err = run(t, "fetch", "-c", cfg, "bulbasaur")
	require.NoError(t, err)
	assert.Contains(t, out, "grass,poison")
}

func TestFetchCommandNotFound(t *testing.T) {
	api := pokeapitest.NewServer()
	defer api.Close()
	cfg := writeConfig(t, api.BaseURL(), config.BackendNone)

	_, err := run(t, "fetch", "-c", cfg, "agumon")
	assert.Error(t, err)
}

func TestCacheCommands(t *testing.T) {
	api := pokeapitest.NewServer()
	defer api.Close()
	cfg := writeConfig(t, api.BaseURL(), config.BackendSQLite)

	_, err := run(t, "fetch", "-c", cfg, "--limit", "3")
	require.NoError(t, err)

	out, err := run(t, "cache", "stats", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Entries: 4", "one list page and three details")

	out, err = run(t, "cache", "clear", "--expired", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Expired cache entries cleared.")

	out, err = run(t, "cache", "clear", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "All cache entries cleared.")

	out, err = run(t, "cache", "stats", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries: 0")
}
