package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Provider shapes understood by the repository.
const (
	ShapeOpenWeatherMap = "openweathermap"
	ShapeRapidAPI       = "rapidapi"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// configFile, when set, replaces the config.yaml lookup in the project root.
var configFile string

// ProviderConfig describes the outbound weather API: where to send the
// request, how to authenticate it and which response shape to expect.
type ProviderConfig struct {
	Shape   string
	BaseURL string
	Units   string
	Host    string
	APIKey  string
}

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func setDefaults() {
	viper.SetDefault("provider.shape", ShapeOpenWeatherMap)
	viper.SetDefault("provider.base_url", "https://api.openweathermap.org/data/2.5")
	viper.SetDefault("provider.units", "metric")
	viper.SetDefault("http.timeout", "10s")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_header_timeout", "15s")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("telemetry.service_name", "weather-lookup")
	viper.SetDefault("log.level", "info")
}

func initConfig() {
	once.Do(func() {
		setDefaults()
		viper.SetEnvPrefix("WEATHER")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()
		viper.SetConfigType("yaml")

		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				GetLogger().Errorw("Error reading config file", "file", configFile, "error", err)
			}
			return
		}

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Debugw("Project root not found, using defaults", "error", err)
			return
		}
		viper.SetConfigFile(filepath.Join(root, "config.yaml"))
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Debugw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigFile(filepath.Join(root, "config_test.yaml"))
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Debugw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// SetConfigFile points the loader at an explicit YAML file and reloads.
func SetConfigFile(path string) {
	configFile = path
	once = sync.Once{}
	initConfig()
}

// GetAPIKey returns the provider credential. WEATHER_API_KEY wins over the
// provider specific variable so one key can be used with either shape.
func GetAPIKey(shape string) string {
	_ = godotenv.Load()
	if key := os.Getenv("WEATHER_API_KEY"); key != "" {
		return key
	}
	if shape == ShapeRapidAPI {
		return os.Getenv("RAPIDAPI_KEY")
	}
	return os.Getenv("OPENWEATHERMAP_API_KEY")
}

func GetProviderShape() string {
	initConfig()
	return strings.ToLower(viper.GetString("provider.shape"))
}

func GetProviderBaseURL() string {
	initConfig()
	return strings.TrimRight(viper.GetString("provider.base_url"), "/")
}

// GetProviderConfig collects everything the repository needs.
func GetProviderConfig() ProviderConfig {
	initConfig()
	shape := GetProviderShape()
	return ProviderConfig{
		Shape:   shape,
		BaseURL: GetProviderBaseURL(),
		Units:   viper.GetString("provider.units"),
		Host:    viper.GetString("provider.host"),
		APIKey:  GetAPIKey(shape),
	}
}

// GetHTTPTimeout returns the outbound client timeout. Defaults to 10s if not set or invalid.
func GetHTTPTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("http.timeout"), 10*time.Second)
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration parses one of the server.* timeouts, falling back to def.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	return parseDuration(GetServerTimeout(key), def)
}

func GetTelemetryServiceName() string {
	initConfig()
	return viper.GetString("telemetry.service_name")
}

// GetOTLPEndpoint returns the OTLP gRPC collector address; empty disables tracing.
func GetOTLPEndpoint() string {
	initConfig()
	return viper.GetString("telemetry.otlp_endpoint")
}

func GetLogLevel() string {
	initConfig()
	return viper.GetString("log.level")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		if lvl, err := zap.ParseAtomicLevel(os.Getenv("WEATHER_LOG_LEVEL")); err == nil {
			cfg.Level = lvl
		}
		l, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// SetLogLevel adjusts the level of the process logger after config is loaded.
func SetLogLevel(level string) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		GetLogger().Warnw("Unknown log level, keeping current", "level", level)
		return
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	l, err := cfg.Build()
	if err != nil {
		return
	}
	loggerOnce.Do(func() {})
	logger = l.Sugar()
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return dur
}
