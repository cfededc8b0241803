package patternflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BaSui01/patternflow"
	"github.com/BaSui01/patternflow/types"
)

const manifestJSON = `{
  "version": "1.0.0",
  "patterns": [
    {"id": "structured-memory", "title": "Structured Memory", "tags": ["memory"], "maturity": "established"},
    {"id": "streaming-first", "title": "Streaming First", "tags": ["streaming"], "maturity": "emerging"}
  ]
}`

func TestOpenCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(manifestJSON), 0o644))

	registry, err := patternflow.OpenCatalog(path)
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())

	p, ok := registry.Get("streaming-first")
	require.True(t, ok)
	require.Equal(t, "Streaming First", p.Title)
}

func TestOpenCatalog_MissingFile(t *testing.T) {
	_, err := patternflow.OpenCatalog(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.Equal(t, types.ErrManifestInvalid, types.GetErrorCode(err))
}
