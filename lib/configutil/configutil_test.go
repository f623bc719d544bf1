package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int      `json:"port"`
	Schedule string   `json:"schedule"`
	Keywords []string `json:"keywords"`
}

func TestSplitExt(t *testing.T) {
	name, ext := splitExt("wildguard.json5")
	require.Equal(t, "wildguard", name)
	require.Equal(t, "json5", ext)

	name, ext = splitExt("noext")
	require.Equal(t, "noext", name)
	require.Equal(t, "", ext)
}

func TestLayers(t *testing.T) {
	require.Equal(t, []string{"conf/forest.json5", "conf/forest.local.json5"}, Layers("conf/forest.json5"))
	require.Equal(t, []string{"forestrc", "forestrc.local"}, Layers("forestrc"))
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forest.local.json5"), []byte(`{port: 8050}`), 0600))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "forest.json5"))
	require.NoError(t, err)
	require.Equal(t, 8050, cfg.Port)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "wildguard.json5")

	_, err := ReadConfig[testConfig](base)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = os.WriteFile(base, []byte(`{
		// comments are allowed
		port: 8000,
		schedule: "@every 1h",
		keywords: ["ivory", "pangolin"],
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, []string{"ivory", "pangolin"}, cfg.Keywords)

	err = os.WriteFile(
		filepath.Join(dir, "wildguard.local.json5"),
		[]byte(`{port: 9000}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "@every 1h", cfg.Schedule)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "telemetry.json5"),
		[]byte(`{port: 1}`),
		0600,
	))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(wd)

	cfg, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Port)
}
