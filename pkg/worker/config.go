package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/jzx17/threadloop/pkg/types"
)

const (
	// DefaultPoolSize is the worker count used when no configuration is given
	DefaultPoolSize = 8

	defaultPoolName      = "threadloop"
	defaultMetricsPrefix = "threadloop"
)

// PanicPolicy decides what a worker does when a task panics
type PanicPolicy int

const (
	// PanicRecover recovers the panic, reports it to the PanicHandler and
	// continues with the next task of the batch
	PanicRecover PanicPolicy = iota
	// PanicPropagate does not recover; the panic terminates the process
	// like any unrecovered goroutine panic
	PanicPropagate
)

// String returns the string representation of PanicPolicy
func (pp PanicPolicy) String() string {
	switch pp {
	case PanicRecover:
		return "recover"
	case PanicPropagate:
		return "propagate"
	default:
		return "unknown"
	}
}

// ParsePanicPolicy parses the string form of a PanicPolicy
func ParsePanicPolicy(s string) (PanicPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recover":
		return PanicRecover, nil
	case "propagate":
		return PanicPropagate, nil
	default:
		return PanicRecover, fmt.Errorf("unknown panic policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (pp PanicPolicy) MarshalText() ([]byte, error) {
	return []byte(pp.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (pp *PanicPolicy) UnmarshalText(text []byte) error {
	policy, err := ParsePanicPolicy(string(text))
	if err != nil {
		return err
	}
	*pp = policy
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (pp *PanicPolicy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("panic_policy must be a string: %w", err)
	}
	return pp.UnmarshalText([]byte(s))
}

// Config defines configuration for the worker pool
type Config struct {
	// Name identifies the pool in logs and metric labels
	Name string `yaml:"name" json:"name"`

	// PoolSize is the fixed number of workers
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// PanicPolicy decides how task panics are handled
	PanicPolicy PanicPolicy `yaml:"panic_policy" json:"panic_policy"`

	// MetricsPrefix prefixes every metric name
	MetricsPrefix string `yaml:"metrics_prefix" json:"metrics_prefix"`

	// PanicHandler receives recovered task panics as *types.TaskPanicError.
	// When nil, panics are logged at error level.
	PanicHandler func(error) `yaml:"-" json:"-"`

	// Logger for lifecycle and failure events (optional, defaults to slog.Default())
	Logger *slog.Logger `yaml:"-" json:"-"`

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock `yaml:"-" json:"-"`

	// Registerer enables Prometheus metrics when set
	Registerer prometheus.Registerer `yaml:"-" json:"-"`

	// WakerFactory builds each worker's wakeup primitive (optional)
	WakerFactory WakerFactory `yaml:"-" json:"-"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Name:          defaultPoolName,
		PoolSize:      DefaultPoolSize,
		PanicPolicy:   PanicRecover,
		MetricsPrefix: defaultMetricsPrefix,
		Logger:        slog.Default(),
		Clock:         types.NewRealClock(),
		WakerFactory:  NewChannelWaker,
	}
}

// withDefaults returns a copy of c with unset optional fields filled in
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}

	cfg := *c
	if cfg.Name == "" {
		cfg.Name = defaultPoolName
	}
	if cfg.MetricsPrefix == "" {
		cfg.MetricsPrefix = defaultMetricsPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = types.NewRealClock()
	}
	if cfg.WakerFactory == nil {
		cfg.WakerFactory = NewChannelWaker
	}
	return &cfg
}

// LoadConfig reads a YAML or JSON config file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedConfigFormat, ext)
	}

	return config, nil
}
