package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	UserAgent string  `json:"user_agent"`
	RateLimit float64 `json:"rate_limit"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{
		// comments are allowed
		user_agent: "test-agent",
		rate_limit: 2,
	}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, "test-agent", config.UserAgent)
	require.Equal(t, float64(2), config.RateLimit)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{user_agent: "base", rate_limit: 2}`)
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{user_agent: "override"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, "override", config.UserAgent)
	require.Equal(t, float64(2), config.RateLimit)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scraper.local.json5"), `{user_agent: "local"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.UserAgent)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[testConfig](filepath.Join(dir, "scraper.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeFile(t, filepath.Join(dir, "scraper.json5"), `{user_agent: "from-root"}`)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	config, err := ReadRecursively[testConfig]("scraper.json5")
	require.NoError(t, err)
	require.Equal(t, "from-root", config.UserAgent)
}
