package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/nodewars/internal/artifact"
	"github.com/thruflo/nodewars/internal/config"
	"github.com/thruflo/nodewars/internal/reference"
)

// SetupTestDir creates a temporary base directory holding a .nodewars
// config with test credentials and a katas project directory.
// The directory is automatically cleaned up when the test completes.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, config.DefaultProjectDir), 0o755))

	configContent := `username: tester
api_key: test-key
project_dir: katas
language: javascript
poll:
  interval: 250ms
`
	WriteTestFile(t, tmpDir, filepath.Join(config.DirName, config.ConfigFileName), []byte(configContent))
	return tmpDir
}

// MemEnv bundles the stores a workflow needs, backed by an in-memory
// filesystem.
type MemEnv struct {
	Fs        afero.Fs
	Base      string
	Store     *reference.Store
	Artifacts *artifact.Store
}

// NewMemEnv creates a MemEnv rooted at /work.
func NewMemEnv(t *testing.T) *MemEnv {
	t.Helper()

	fs := afero.NewMemMapFs()
	base := "/work"
	paths := config.Paths{Base: base}

	store, err := reference.Open(fs, paths.DataFile())
	require.NoError(t, err)

	return &MemEnv{
		Fs:        fs,
		Base:      base,
		Store:     store,
		Artifacts: artifact.NewStore(fs, filepath.Join(base, config.DefaultProjectDir)),
	}
}

// Seed writes a record straight into the reference store.
func (e *MemEnv) Seed(t *testing.T, id, slug string, state reference.State) {
	t.Helper()
	require.NoError(t, e.Store.Upsert(id, slug, state))
}

// SeedSession writes the session and code artifacts submit and finalize
// read for slug.
func (e *MemEnv) SeedSession(t *testing.T, slug, codeFile, code string) {
	t.Helper()
	session := map[string]interface{}{
		"projectId":  SampleProjectID,
		"solutionId": SampleSolutionID,
	}
	require.NoError(t, e.Artifacts.WriteJSON(slug, artifact.SessionFile, session))
	require.NoError(t, e.Artifacts.WriteText(slug, codeFile, SampleCodeFile(code)))
}

// MustMarshalJSON marshals a value to JSON, failing the test on error.
// Uses indented format for readability.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return data
}

// MustUnmarshalJSON unmarshals JSON data into v, failing the test on error.
func MustUnmarshalJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v))
}

// WriteTestFile writes content to a file in the test directory.
// Creates parent directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()
	fullPath := filepath.Join(basePath, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, content, 0o644))
}
