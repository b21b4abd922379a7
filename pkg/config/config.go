package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var configDir string
var configFilePath string
var sessionPath string
var handoffPath string

// Environment presets for the hosted backends
type Environment struct {
	APIBaseURL  string
	RealtimeURL string
}

var environments = map[string]Environment{
	"local": {
		APIBaseURL:  "http://localhost:5050/api/v1",
		RealtimeURL: "http://localhost:5050",
	},
	"staging": {
		APIBaseURL:  "https://api.staging.seattlepulse.net/api/v1",
		RealtimeURL: "https://api.staging.seattlepulse.net",
	},
	"production": {
		APIBaseURL:  "https://api.seattlepulse.net/api/v1",
		RealtimeURL: "https://api.seattlepulse.net",
	},
}

// LookupEnvironment returns the preset for name, falling back to local
func LookupEnvironment(name string) Environment {
	if env, ok := environments[strings.ToLower(name)]; ok {
		return env
	}
	return environments["local"]
}

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\pulse\cli
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "pulse", "cli"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/pulse/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pulse", "cli"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "Pulse", "cli", "config.toml")}
	}

	return []string{
		"/etc/pulse/cli/config.toml",
		"/usr/local/etc/pulse/cli/config.toml",
	}
}

// Init initializes the configuration
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	sessionPath = filepath.Join(configDir, "session.json")
	handoffPath = filepath.Join(configDir, "handoff.json")

	// .env in the working directory and next to the config file; missing files are fine
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(configDir, ".env"))

	viper.Reset()
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("PULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// System config first, user config overrides it
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.MergeInConfig()
			break
		}
	}

	viper.SetConfigFile(configFilePath)
	_ = viper.MergeInConfig()

	applyEnvironment(viper.GetString("env"))

	return nil
}

func setDefaults() {
	viper.SetDefault("env", "local")
	viper.SetDefault("api.timeout", 30)

	viper.SetDefault("realtime.heartbeat_ms", 25000)
	viper.SetDefault("realtime.reconnect_base_ms", 2000)
	viper.SetDefault("realtime.reconnect_max_ms", 30000)
	viper.SetDefault("realtime.max_reconnects", -1)

	viper.SetDefault("feed.default_location", "Seattle")
	viper.SetDefault("upload.max_mb", 100)

	viper.SetDefault("location.geocoder_url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("location.debounce_ms", 500)

	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "pulse-cli.log"))
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)

	viper.SetDefault("telemetry.endpoint", "")
	viper.SetDefault("telemetry.sampling_rate", 1.0)

	viper.SetDefault("metrics.file", filepath.Join(configDir, "metrics.prom"))
}

// applyEnvironment fills the URLs from the env preset unless set explicitly
func applyEnvironment(name string) {
	env := LookupEnvironment(name)
	viper.SetDefault("api.base_url", env.APIBaseURL)
	viper.SetDefault("realtime.url", env.RealtimeURL)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" || key == "metrics.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat returns a float configuration value
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides a value for the current process only
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// Keys returns every recognized configuration key, sorted
func Keys() []string {
	keys := viper.AllKeys()
	sort.Strings(keys)
	return keys
}

// Known reports whether key is a recognized configuration key
func Known(key string) bool {
	key = strings.ToLower(key)
	for _, k := range viper.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// SetString persists a value to the user config file and applies it to the
// running process. Only the keys already in that file and key itself are
// written, so defaults and environment presets are not pinned.
func SetString(key string, value string) error {
	key = strings.ToLower(key)
	if !Known(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	file := viper.New()
	file.SetConfigType("toml")
	file.SetConfigFile(configFilePath)
	if _, err := os.Stat(configFilePath); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", configFilePath, err)
		}
	}
	file.Set(key, value)
	if err := file.WriteConfigAs(configFilePath); err != nil {
		return fmt.Errorf("failed to write %s: %w", configFilePath, err)
	}

	viper.Set(key, value)
	if key == "env" {
		applyEnvironment(value)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFilePath returns the user config file path
func GetConfigFilePath() string {
	return configFilePath
}

// GetSessionPath returns the path to the persisted session
func GetSessionPath() string {
	return sessionPath
}

// GetHandoffPath returns the path to the pending handoff intent
func GetHandoffPath() string {
	return handoffPath
}
