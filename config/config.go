// Package config loads and exposes the process-wide configuration singleton.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (format: SECTION_FIELD, e.g. CACHE_PARAMETERS_TTL);
//     Init binds no keys to the environment up front, so an environment
//     variable takes effect only for a key the configuration file also sets
//  2. Configuration file (ini by default, also accepts yaml/json via SetConfigType)
//  3. Default values from struct tags / setDefault()
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// App is the process-wide configuration singleton, populated by Init.
var App = new(Config)

var (
	configPaths = []string{}
	configFile  = ""
	configName  = "flowquery"
	configType  = "ini"

	mu     sync.RWMutex
	cv     *viper.Viper
	inited bool
)

// Config is the root configuration object for a flowquery project.
type Config struct {
	Server `json:"server" mapstructure:"server" ini:"server" yaml:"server"`
	Logger `json:"logger" mapstructure:"logger" ini:"logger" yaml:"logger"`
	Cache  `json:"cache" mapstructure:"cache" ini:"cache" yaml:"cache"`
	Engine `json:"engine" mapstructure:"engine" ini:"engine" yaml:"engine"`
	Auth   `json:"auth" mapstructure:"auth" ini:"auth" yaml:"auth"`
	Limits `json:"limits" mapstructure:"limits" ini:"limits" yaml:"limits"`
}

// Server holds HTTP-adjacent settings for the handlers/middleware layer.
type Server struct {
	Listen          string        `json:"listen" mapstructure:"listen" ini:"listen" default:"0.0.0.0"`
	Port            int           `json:"port" mapstructure:"port" ini:"port" default:"8080"`
	VersionPrefix   string        `json:"version_prefix" mapstructure:"version_prefix" ini:"version_prefix" default:"/api/v0"`
	RequestTimeout  time.Duration `json:"request_timeout" mapstructure:"request_timeout" ini:"request_timeout" default:"30s"`
	ReadTimeout     time.Duration `json:"read_timeout" mapstructure:"read_timeout" ini:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `json:"write_timeout" mapstructure:"write_timeout" ini:"write_timeout" default:"30s"`
	NoCache         bool          `json:"no_cache" mapstructure:"no_cache" ini:"no_cache" default:"false"`
}

func (s *Server) setDefault() {
	if err := defaults.Set(s); err != nil {
		panic(err)
	}
}

// Logger configures per-subsystem rotated log files, mirroring the
// teacher's logger/zap wiring.
type Logger struct {
	Level      string `json:"level" mapstructure:"level" ini:"level" default:"info"`
	Dir        string `json:"dir" mapstructure:"dir" ini:"dir" default:"logs"`
	Format     string `json:"format" mapstructure:"format" ini:"format" default:"console"`
	Encoder    string `json:"encoder" mapstructure:"encoder" ini:"encoder" default:"console"`
	MaxAge     int    `json:"max_age" mapstructure:"max_age" ini:"max_age" default:"7"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size" ini:"max_size" default:"100"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups" ini:"max_backups" default:"10"`
}

func (l *Logger) setDefault() {
	if err := defaults.Set(l); err != nil {
		panic(err)
	}
}

// Cache configures the two TTL+LRU caches of C7 (parameters, dataset results).
type Cache struct {
	ParametersSize int           `json:"parameters_size" mapstructure:"parameters_size" ini:"parameters_size" default:"2048"`
	ParametersTTL  time.Duration `json:"parameters_ttl" mapstructure:"parameters_ttl" ini:"parameters_ttl" default:"5m"`
	ResultsSize    int           `json:"results_size" mapstructure:"results_size" ini:"results_size" default:"512"`
	ResultsTTL     time.Duration `json:"results_ttl" mapstructure:"results_ttl" ini:"results_ttl" default:"60s"`
}

func (c *Cache) setDefault() {
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
}

// Engine holds settings for the embedded analytical query engine and
// external dbview connections. project.New passes DatalakePath on to the
// orchestrator; SQLTimeoutSeconds, MaxParallelNodes and DefaultConnection
// are not read by the DAG executor.
type Engine struct {
	DatalakePath      string        `json:"datalake_path" mapstructure:"datalake_path" ini:"datalake_path" default:"./datalake"`
	SQLTimeoutSeconds int           `json:"sql_timeout_seconds" mapstructure:"sql_timeout_seconds" ini:"sql_timeout_seconds" default:"30"`
	MaxParallelNodes  int           `json:"max_parallel_nodes" mapstructure:"max_parallel_nodes" ini:"max_parallel_nodes" default:"8"`
	DefaultConnection string        `json:"default_connection" mapstructure:"default_connection" ini:"default_connection" default:"default"`
}

func (e *Engine) setDefault() {
	if err := defaults.Set(e); err != nil {
		panic(err)
	}
}

func (e Engine) SQLTimeout() time.Duration {
	return time.Duration(e.SQLTimeoutSeconds) * time.Second
}

// Auth configures elevated-access gating for admin-only configurables.
type Auth struct {
	ConfigurablesAccessLevel int `json:"configurables_access_level" mapstructure:"configurables_access_level" ini:"configurables_access_level" default:"1"`
}

func (a *Auth) setDefault() {
	if err := defaults.Set(a); err != nil {
		panic(err)
	}
}

// Limits bounds dataset result output per spec.md section 4.6/6.
type Limits struct {
	MaxRowsOutput int `json:"max_rows_output" mapstructure:"max_rows_output" ini:"max_rows_output" default:"1000000"`
	DefaultLimit  int `json:"default_limit" mapstructure:"default_limit" ini:"default_limit" default:"1000"`
	MaxLimit      int `json:"max_limit" mapstructure:"max_limit" ini:"max_limit" default:"10000"`
}

func (l *Limits) setDefault() {
	if err := defaults.Set(l); err != nil {
		panic(err)
	}
}

func (c *Config) setDefault() {
	c.Server.setDefault()
	c.Logger.setDefault()
	c.Cache.setDefault()
	c.Engine.setDefault()
	c.Auth.setDefault()
	c.Limits.setDefault()
}

// Init loads configuration from environment variables, the configuration
// file (if present) and defaults, in that priority order.
func Init() error {
	cv = viper.New()
	cv.AutomaticEnv()
	cv.AllowEmptyEnv(true)
	cv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	App = new(Config)
	App.setDefault()

	if len(configFile) > 0 {
		cv.SetConfigFile(configFile)
	} else {
		cv.SetConfigName(configName)
		cv.SetConfigType(configType)
	}
	cv.AddConfigPath(".")
	cv.AddConfigPath("/etc/flowquery/")
	for _, path := range configPaths {
		cv.AddConfigPath(path)
	}

	if err := cv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	if err := cv.Unmarshal(App); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}

	inited = true
	return nil
}

// SetConfigFile overrides the configuration file path used by Init.
func SetConfigFile(file string) {
	mu.Lock()
	defer mu.Unlock()
	configFile = file
}

// AddPath registers additional search paths consulted by Init.
func AddPath(paths ...string) {
	mu.Lock()
	defer mu.Unlock()
	configPaths = append(configPaths, paths...)
}

// Tempdir returns a process-scoped scratch directory, creating it on first use.
func Tempdir() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	dir := filepath.Join(os.TempDir(), fmt.Sprintf("flowquery_%d", os.Getpid()))
	if flag.Lookup("test.v") != nil {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create temp dir")
	}
	return dir, nil
}
