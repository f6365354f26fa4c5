// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

// Package config loads authforms configuration from a YAML file and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authforms/authforms/internal/logging"
	"github.com/authforms/authforms/internal/validation"
)

// Error codes.
const (
	CodeInvalid    = "CONFIG_INVALID"
	CodeLoadFailed = "CONFIG_LOAD_FAILED"
)

// Defaults.
const (
	DefaultLogFormat      = "json"
	DefaultLogLevel       = "info"
	DefaultHTTPAddr       = "127.0.0.1:8080"
	DefaultMetricsAddr    = "127.0.0.1:9100"
	DefaultLatency        = Duration(time.Second)
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = Duration(100 * time.Millisecond)
)

// minSeedPasswordLength matches the registration form's password rule.
const minSeedPasswordLength = 8

// Config is the complete authforms configuration.
type Config struct {
	LogFormat   string        `koanf:"log_format" json:"log_format,omitempty" yaml:"log_format" jsonschema:"enum=json,enum=text,description=Log output format"`
	LogLevel    string        `koanf:"log_level" json:"log_level,omitempty" yaml:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,description=Minimum log level"`
	HTTPAddr    string        `koanf:"http_addr" json:"http_addr,omitempty" yaml:"http_addr" jsonschema:"description=Listen address of the form endpoints"`
	MetricsAddr string        `koanf:"metrics_addr" json:"metrics_addr,omitempty" yaml:"metrics_addr" jsonschema:"description=Metrics and health listen address (empty disables)"`
	Backend     BackendConfig `koanf:"backend" json:"backend,omitempty" yaml:"backend"`
	Hasher      HasherConfig  `koanf:"hasher" json:"hasher,omitempty" yaml:"hasher"`
	Accounts    []SeedAccount `koanf:"accounts" json:"accounts,omitempty" yaml:"accounts,omitempty" jsonschema:"description=Accounts created at startup"`
}

// BackendConfig tunes the authentication backend.
type BackendConfig struct {
	Latency        Duration `koanf:"latency" json:"latency,omitempty" yaml:"latency" jsonschema:"description=Simulated delay before every backend call"`
	MaxRetries     uint64   `koanf:"max_retries" json:"max_retries,omitempty" yaml:"max_retries" jsonschema:"minimum=0,maximum=10,description=Retries for a temporarily unavailable backend"`
	RetryBaseDelay Duration `koanf:"retry_base_delay" json:"retry_base_delay,omitempty" yaml:"retry_base_delay" jsonschema:"description=First retry delay; doubles on every retry"`
}

// HasherConfig holds argon2id cost parameters. Zero values use the defaults.
type HasherConfig struct {
	Time      uint32 `koanf:"time" json:"time,omitempty" yaml:"time,omitempty" jsonschema:"minimum=0,description=argon2id iterations"`
	MemoryKiB uint32 `koanf:"memory_kib" json:"memory_kib,omitempty" yaml:"memory_kib,omitempty" jsonschema:"minimum=0,description=argon2id memory in KiB"`
	Threads   uint8  `koanf:"threads" json:"threads,omitempty" yaml:"threads,omitempty" jsonschema:"minimum=0,maximum=255,description=argon2id parallelism"`
}

// SeedAccount is an account registered at startup.
type SeedAccount struct {
	Email    string `koanf:"email" json:"email" yaml:"email" jsonschema:"format=email"`
	Password string `koanf:"password" json:"password" yaml:"password" jsonschema:"minLength=8"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LogFormat:   DefaultLogFormat,
		LogLevel:    DefaultLogLevel,
		HTTPAddr:    DefaultHTTPAddr,
		MetricsAddr: DefaultMetricsAddr,
		Backend: BackendConfig{
			Latency:        DefaultLatency,
			MaxRetries:     DefaultMaxRetries,
			RetryBaseDelay: DefaultRetryBaseDelay,
		},
	}
}

// Demo accounts written by Sample. The second exists so that registering
// its address shows the "already registered" rejection.
var sampleAccounts = []SeedAccount{
	{Email: "user@example.com", Password: "password"},
	{Email: "test@example.com", Password: "password123"},
}

// Sample returns Default with the demo accounts seeded. It is the file
// written by "config init".
func Sample() Config {
	cfg := Default()
	cfg.Accounts = append([]SeedAccount(nil), sampleAccounts...)
	return cfg
}

// RegisterFlags adds the flags Load understands to fs, with defaults taken
// from Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("http-addr", d.HTTPAddr, "form endpoints listen address")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("backend-latency", d.Backend.Latency.String(), "simulated backend latency")
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-format":      "log_format",
	"log-level":       "log_level",
	"http-addr":       "http_addr",
	"metrics-addr":    "metrics_addr",
	"backend-latency": "backend.latency",
}

// Load reads configuration from path and flags, in that order of
// precedence from lowest to highest, over Default.
//
// An empty path skips the file. When optional is true a missing file is
// not an error. Flags that were not set on the command line only apply
// when the file leaves the key unset. flags may be nil.
func Load(path string, optional bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
		switch {
		case errors.Is(err, fs.ErrNotExist) && optional:
		case err != nil:
			return nil, oops.Code(CodeLoadFailed).With("path", path).Wrap(err)
		default:
			if err := ValidateYAML(data); err != nil {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrap(err)
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeLoadFailed).With("path", path).Wrap(err)
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeLoadFailed).With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	})
	if err != nil {
		return nil, oops.Code(CodeInvalid).Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code(CodeInvalid).With("log_format", c.LogFormat).Errorf("log_format must be json or text")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code(CodeInvalid).With("log_level", c.LogLevel).Errorf("log_level must be debug, info, warn or error")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return oops.Code(CodeInvalid).Errorf("http_addr is required")
	}
	if c.Backend.Latency < 0 || c.Backend.RetryBaseDelay < 0 {
		return oops.Code(CodeInvalid).Errorf("backend durations cannot be negative")
	}

	seen := make(map[string]struct{}, len(c.Accounts))
	for i, a := range c.Accounts {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if !validation.IsEmail(email) {
			return oops.Code(CodeInvalid).With("account", i).Errorf("account email %q is invalid", a.Email)
		}
		if len([]rune(a.Password)) < minSeedPasswordLength {
			return oops.Code(CodeInvalid).With("account", i).
				Errorf("account password must be at least %d characters", minSeedPasswordLength)
		}
		if _, dup := seen[email]; dup {
			return oops.Code(CodeInvalid).With("account", i).Errorf("duplicate account email %q", a.Email)
		}
		seen[email] = struct{}{}
	}
	return nil
}
