package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setXDGEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_CACHE_HOME", "XDG_CONFIG_DIRS", "HOME"} {
		t.Setenv(key, values[key])
	}
}

func TestGetXDGPaths_WithEnvironmentVariables(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout is not used on Windows")
	}
	setXDGEnv(t, map[string]string{
		"XDG_CONFIG_HOME": "/custom/config",
		"XDG_DATA_HOME":   "/custom/data",
		"XDG_CACHE_HOME":  "/custom/cache",
		"XDG_CONFIG_DIRS": "/etc/xdg:/usr/local/etc",
		"HOME":            "/home/testuser",
	})

	paths := GetXDGPaths("testapp")

	assert.Equal(t, "/custom/config/testapp", paths.ConfigHome)
	assert.Equal(t, "/custom/data/testapp", paths.DataHome)
	assert.Equal(t, "/custom/cache/testapp", paths.CacheHome)
	assert.Equal(t, []string{"/etc/xdg/testapp", "/usr/local/etc/testapp"}, paths.ConfigDirs)
	assert.Equal(t, "/custom/config/testapp/themes", paths.ThemesDir())
	assert.Equal(t, "/custom/data/testapp/plugins", paths.PluginsDir())
}

func TestGetXDGPaths_WithDefaults(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout is not used on Windows")
	}
	setXDGEnv(t, map[string]string{"HOME": "/home/testuser"})

	paths := GetXDGPaths("testapp")

	assert.Equal(t, "/home/testuser/.config/testapp", paths.ConfigHome)
	assert.Equal(t, "/home/testuser/.local/share/testapp", paths.DataHome)
	assert.Equal(t, "/home/testuser/.cache/testapp", paths.CacheHome)
	assert.Equal(t, []string{"/etc/xdg/testapp"}, paths.ConfigDirs)
}

func TestSplitDirs_SkipsEmptyEntries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path list separator differs on Windows")
	}
	assert.Equal(t, []string{"/a/app", "/b/app"}, splitDirs("/a::/b: ", "/fallback", "app"))
	assert.Equal(t, []string{"/fallback/app"}, splitDirs("", "/fallback", "app"))
}

func TestConfigFilenames(t *testing.T) {
	names := ConfigFilenames("formulaeditor")
	assert.Equal(t, "config.yaml", names[0])
	assert.Contains(t, names, ".formulaeditor.json")
}

func TestFindAllConfigFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG layout is not used on Windows")
	}
	root := t.TempDir()
	configHome := filepath.Join(root, "config")
	systemA := filepath.Join(root, "sysA")
	systemB := filepath.Join(root, "sysB")
	project := filepath.Join(root, "project")

	for _, dir := range []string{
		filepath.Join(configHome, "app"),
		filepath.Join(systemB, "app"),
		project,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(configHome, "app", "config.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(systemB, "app", "config.yml"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".app.yaml"), []byte("{}"), 0o644))

	setXDGEnv(t, map[string]string{
		"XDG_CONFIG_HOME": configHome,
		"XDG_CONFIG_DIRS": systemA + ":" + systemB,
		"HOME":            root,
	})
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(project))
	defer func() { _ = os.Chdir(wd) }()

	found := FindAllConfigFiles("app")
	require.Len(t, found, 3)
	assert.Equal(t, ConfigTypeProject, found[0].Type)
	assert.Equal(t, ".app.yaml", filepath.Base(found[0].Path))
	assert.Equal(t, ConfigTypeUser, found[1].Type)
	assert.Equal(t, ConfigTypeSystem, found[2].Type)
	assert.Equal(t, filepath.Join(systemB, "app", "config.yml"), found[2].Path)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)

	_, err = EnsureDir("")
	assert.Error(t, err)
}
