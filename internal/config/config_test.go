package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	raw := `{"logging":{"level":"info","logdate":false},"index":["fam=/tmp/x"],"maxHistorySeconds":900}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte(raw), 0o644))

	s, err := LoadSettings([]string{dir})
	require.NoError(t, err)
	require.Equal(t, "info", s.Logging.Level)
	require.Equal(t, 900, s.MaxHistorySeconds)
}

func TestLoadSettingsMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSettings([]string{dir})
	require.Error(t, err)
}

func TestValidateRejectsBadLevel(t *testing.T) {
	err := Validate([]byte(`{"logging":{"level":"not-a-level"}}`))
	require.Error(t, err)
}

func TestResolveSubdir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "RAPIOConfig")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, settingsFile), []byte(`{}`), 0o644))

	got := Resolve([]string{dir}, settingsFile)
	require.Equal(t, filepath.Join(sub, settingsFile), got)
}
