package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pypack-labs/pypack/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyPythonURL        = "python.url"
	KeyPythonVersion    = "python.version"
	KeyPythonDir        = "python.dir"
	KeyPythonMinVersion = "python.min_version"
	KeyManifest         = "manifest"
	KeyDownloadMirror   = "download.mirror"
	KeyDownloadTimeout  = "download.timeout"
	KeyLogLevel         = "log.level"
)

// Keys lists every recognized setting.
var Keys = []string{
	KeyPythonURL,
	KeyPythonVersion,
	KeyPythonDir,
	KeyPythonMinVersion,
	KeyManifest,
	KeyDownloadMirror,
	KeyDownloadTimeout,
	KeyLogLevel,
}

// Settings is the resolved configuration.
type Settings struct {
	// PythonURL overrides the portable distribution URL; empty keeps the
	// built-in one.
	PythonURL string
	// PythonVersion selects the portable distribution release.
	PythonVersion string
	// PythonDir is the local runtime directory under the working directory.
	PythonDir string
	// PythonMinVersion is a semver constraint for interpreters on the path.
	PythonMinVersion string
	// Manifest is the dependency manifest file name.
	Manifest string
	// DownloadMirror replaces the host of the distribution URL.
	DownloadMirror string
	// DownloadTimeout bounds the distribution download; zero means none.
	DownloadTimeout time.Duration
	// LogLevel is a charmbracelet/log level name.
	LogLevel string
}

// Dir returns the path to the config directory (~/.pypack/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.pypack/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPythonURL, "")
	v.SetDefault(KeyPythonVersion, "3.12.8")
	v.SetDefault(KeyPythonDir, "python")
	v.SetDefault(KeyPythonMinVersion, "")
	v.SetDefault(KeyManifest, "pypack.json")
	v.SetDefault(KeyDownloadMirror, "")
	v.SetDefault(KeyDownloadTimeout, "0s")
	v.SetDefault(KeyLogLevel, "info")
}

// New returns a Viper instance reading the config file at path and the
// environment.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadFrom reads settings from the config file at path and the environment.
// A missing config file is not an error.
func LoadFrom(path string) (*Settings, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	return decode(v)
}

// Load reads settings from the default config file and the environment.
func Load() (*Settings, error) {
	return LoadFrom(FilePath())
}

func decode(v *viper.Viper) (*Settings, error) {
	timeout, err := time.ParseDuration(v.GetString(KeyDownloadTimeout))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", KeyDownloadTimeout, err)
	}
	return &Settings{
		PythonURL:        v.GetString(KeyPythonURL),
		PythonVersion:    v.GetString(KeyPythonVersion),
		PythonDir:        v.GetString(KeyPythonDir),
		PythonMinVersion: v.GetString(KeyPythonMinVersion),
		Manifest:         v.GetString(KeyManifest),
		DownloadMirror:   v.GetString(KeyDownloadMirror),
		DownloadTimeout:  timeout,
		LogLevel:         v.GetString(KeyLogLevel),
	}, nil
}

// Get returns a config value by key from the config file at path.
func Get(path, key string) string {
	v := New(path)
	_ = v.ReadInConfig()
	return v.GetString(key)
}

// Set writes a key-value pair into the config file at path, creating it if
// needed.
func Set(path, key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys, ", "))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := New(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
