package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// XDGPaths holds the XDG base directories resolved for one application.
type XDGPaths struct {
	ConfigHome string
	DataHome   string
	CacheHome  string
	ConfigDirs []string
}

// GetXDGPaths resolves the XDG base directories for appName, see
// https://specifications.freedesktop.org/basedir-spec/basedir-spec-latest.html
func GetXDGPaths(appName string) *XDGPaths {
	homeDir, _ := os.UserHomeDir()

	return &XDGPaths{
		ConfigHome: baseDir("XDG_CONFIG_HOME", homeDir, appName, ".config"),
		DataHome:   baseDir("XDG_DATA_HOME", homeDir, appName, ".local", "share"),
		CacheHome:  baseDir("XDG_CACHE_HOME", homeDir, appName, ".cache"),
		ConfigDirs: splitDirs(os.Getenv("XDG_CONFIG_DIRS"), "/etc/xdg", appName),
	}
}

func baseDir(env, homeDir, appName string, fallback ...string) string {
	dir := os.Getenv(env)
	if dir == "" {
		if homeDir == "" {
			return ""
		}
		dir = filepath.Join(append([]string{homeDir}, fallback...)...)
	}
	return filepath.Join(dir, appName)
}

func splitDirs(list, fallback, appName string) []string {
	if list == "" {
		list = fallback
	}
	var dirs []string
	for _, dir := range strings.Split(list, string(os.PathListSeparator)) {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, filepath.Join(dir, appName))
		}
	}
	return dirs
}

// ThemesDir is where installed theme files live.
func (x *XDGPaths) ThemesDir() string {
	if x.ConfigHome == "" {
		return ""
	}
	return filepath.Join(x.ConfigHome, "themes")
}

// PluginsDir is where module plugins are looked up by default.
func (x *XDGPaths) PluginsDir() string {
	if x.DataHome == "" {
		return ""
	}
	return filepath.Join(x.DataHome, "plugins")
}

// ConfigFilenames returns the configuration filenames looked for in every
// search directory, in priority order.
func ConfigFilenames(appName string) []string {
	return []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"." + appName + ".yaml",
		"." + appName + ".yml",
		"." + appName + ".json",
	}
}

// ConfigurationType is where a configuration file was found.
type ConfigurationType string

const (
	ConfigTypeProject ConfigurationType = "project"
	ConfigTypeUser    ConfigurationType = "user"
	ConfigTypeSystem  ConfigurationType = "system"
)

// ConfigFileLocation is a configuration file found during discovery.
type ConfigFileLocation struct {
	Path string
	Type ConfigurationType
}

// FindAllConfigFiles returns at most one file per location, highest priority
// first: the working directory, the user config home, then the first system
// directory that has one.
func FindAllConfigFiles(appName string) []ConfigFileLocation {
	xdg := GetXDGPaths(appName)
	filenames := ConfigFilenames(appName)
	var found []ConfigFileLocation

	if cwd, err := os.Getwd(); err == nil {
		if path := findConfigInDirectory(cwd, filenames); path != "" {
			found = append(found, ConfigFileLocation{Path: path, Type: ConfigTypeProject})
		}
	}

	if xdg.ConfigHome != "" {
		if path := findConfigInDirectory(xdg.ConfigHome, filenames); path != "" {
			found = append(found, ConfigFileLocation{Path: path, Type: ConfigTypeUser})
		}
	}

	for _, dir := range xdg.ConfigDirs {
		if path := findConfigInDirectory(dir, filenames); path != "" {
			found = append(found, ConfigFileLocation{Path: path, Type: ConfigTypeSystem})
			break
		}
	}

	return found
}

func findConfigInDirectory(dir string, filenames []string) string {
	for _, filename := range filenames {
		path := filepath.Join(dir, filename)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// EnsureDir creates dir (and parents) when missing and returns it.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		return "", os.ErrNotExist
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
