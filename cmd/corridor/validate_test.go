package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/corridor/internal/core/catalog"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateCatalogReportsDeadEnds(t *testing.T) {
	path := writeCatalog(t, `
environments:
  - name: hall
    size: [10, 4, 25]
interactables:
  - name: coins
    successors: [0, 1]
  - name: wall
    successors: []
`)
	var out bytes.Buffer
	require.NoError(t, validateCatalog(&out, []string{"-catalog", path}))
	assert.Contains(t, out.String(), "interactable 1 (wall) has no successors")
	assert.Contains(t, out.String(), "ok environments=1 interactables=2 dead_ends=1")
}

func TestValidateCatalogRejectsSchemaViolations(t *testing.T) {
	path := writeCatalog(t, `
environments: []
interactables: []
`)
	var out bytes.Buffer
	err := validateCatalog(&out, []string{"-catalog", path})
	assert.ErrorIs(t, err, catalog.ErrConfiguration)
	assert.Empty(t, out.String())
}

func TestValidateCatalogReturnsFlagErrors(t *testing.T) {
	var out bytes.Buffer
	err := validateCatalog(&out, []string{"-no-such-flag"})
	assert.Error(t, err)
	assert.Empty(t, out.String())
}
