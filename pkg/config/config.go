// Package config loads simplex.toml, applies .env and environment overrides,
// installs logging backends and builds the query services from the result.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	logging "github.com/op/go-logging"

	"github.com/chazu/simplex/pkg/engine"
	"github.com/chazu/simplex/pkg/geom"
	"github.com/chazu/simplex/pkg/kernel/sdfx"
	"github.com/chazu/simplex/pkg/orient"
	"github.com/chazu/simplex/pkg/raycast"
	"github.com/chazu/simplex/pkg/simplex"
	"github.com/chazu/simplex/pkg/tessellate"
)

var log = simplex.Logger("config")

var format = logging.MustStringFormatter(
	"%{color}%{time:15:04:05.000} %{module} ▶ %{level:.4s} %{message}%{color:reset}",
)

// Environment variables read by FromEnv.
const (
	EnvConfig   = "SIMPLEX_CONFIG"
	EnvWorkers  = "SIMPLEX_WORKERS"
	EnvLogLevel = "SIMPLEX_LOG_LEVEL"
)

// DefaultPath is the config file read when SIMPLEX_CONFIG is unset.
const DefaultPath = "simplex.toml"

// Config is the decoded simplex.toml.
type Config struct {
	Workers int       `toml:"workers"`
	Anchor  Anchor    `toml:"anchor"`
	Orient  Orient    `toml:"orient"`
	Kernel  Kernel    `toml:"kernel"`
	Engine  Engine    `toml:"engine"`
	Logging []Logging `toml:"logging"`
}

// Anchor positions the exterior point used for containment tests.
type Anchor struct {
	Offsets []float64 `toml:"offsets"`
}

// Orient configures the orientation probe.
type Orient struct {
	Perturbation float64 `toml:"perturbation"`
}

// Kernel configures solid meshing.
type Kernel struct {
	Cells int     `toml:"cells"`
	Weld  float64 `toml:"weld"`
}

// Engine configures scene script evaluation.
type Engine struct {
	Timeout Delay `toml:"timeout"`
}

// Logging is one log backend.
type Logging struct {
	Output string `toml:"output"`
	Level  string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	anchor := geom.AnchorOffset()
	return &Config{
		Workers: 1,
		Anchor:  Anchor{Offsets: append([]float64(nil), anchor[:]...)},
		Orient:  Orient{Perturbation: orient.DefaultPerturbation},
		Kernel:  Kernel{Cells: sdfx.DefaultCells, Weld: tessellate.DefaultWeld},
		Engine:  Engine{Timeout: Delay(engine.DefaultTimeout)},
	}
}

// Load decodes r on top of the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.DecodeReader(r, c)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("config: unknown keys %v", keys)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile loads path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Debugf("no config at %s, using defaults", path)
		return Default(), nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FromEnv loads .env if present, reads the file named by SIMPLEX_CONFIG (or
// path when it is set, or simplex.toml) and applies environment overrides.
func FromEnv(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath
	}
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides values from SIMPLEX_WORKERS and SIMPLEX_LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		if len(c.Logging) == 0 {
			c.Logging = []Logging{{Output: "stderr"}}
		}
		for i := range c.Logging {
			c.Logging[i].Level = v
		}
	}
	return c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if len(c.Anchor.Offsets) != 3 {
		return fmt.Errorf("config: anchor offsets need 3 values, got %d", len(c.Anchor.Offsets))
	}
	for _, x := range c.Anchor.Offsets {
		if x <= 0 {
			return fmt.Errorf("config: anchor offsets must be positive, got %v", c.Anchor.Offsets)
		}
	}
	if c.Orient.Perturbation <= 0 {
		return fmt.Errorf("config: orient perturbation must be positive, got %g", c.Orient.Perturbation)
	}
	if c.Kernel.Cells < 2 {
		return fmt.Errorf("config: kernel cells must be at least 2, got %d", c.Kernel.Cells)
	}
	if c.Kernel.Weld < 0 {
		return fmt.Errorf("config: kernel weld must not be negative, got %g", c.Kernel.Weld)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("config: engine timeout must be positive, got %s", c.Engine.Timeout.Duration())
	}
	for _, l := range c.Logging {
		if _, err := logging.LogLevel(l.Level); err != nil {
			return fmt.Errorf("config: logging level %q: %w", l.Level, err)
		}
	}
	return nil
}

// SetupLogging installs one backend per [[logging]] section. With none, a
// stderr backend at WARNING is installed.
func (c *Config) SetupLogging() error {
	sections := c.Logging
	if len(sections) == 0 {
		sections = []Logging{{Output: "stderr", Level: "WARNING"}}
	}

	var backends []logging.Backend
	for _, l := range sections {
		var output io.Writer
		switch strings.ToLower(l.Output) {
		case "stdout":
			output = os.Stdout
		case "stderr", "":
			output = os.Stderr
		default:
			f, err := os.OpenFile(os.ExpandEnv(l.Output), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0660)
			if err != nil {
				return fmt.Errorf("config: logging output: %w", err)
			}
			output = f
		}

		level, err := logging.LogLevel(l.Level)
		if err != nil {
			return fmt.Errorf("config: logging level %q: %w", l.Level, err)
		}

		backend := logging.NewLogBackend(output, "", 0)
		leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
		leveled.SetLevel(level, "")
		backends = append(backends, leveled)
	}

	logging.SetBackend(backends...)
	return nil
}

// RaycastOptions converts the config into raycast options.
func (c *Config) RaycastOptions() raycast.Options {
	opts := raycast.DefaultOptions()
	opts.Workers = c.Workers
	copy(opts.AnchorOffset[:], c.Anchor.Offsets)
	return opts
}

// Caster builds the configured raycast.Caster.
func (c *Config) Caster() *raycast.Caster {
	return raycast.New(c.RaycastOptions())
}

// Orienter builds an orient.Orienter that uses oracle.
func (c *Config) Orienter(oracle orient.Oracle) *orient.Orienter {
	return orient.New(oracle, c.Orient.Perturbation)
}

// Mesher builds the sdfx-backed mesher for solids.
func (c *Config) Mesher() *tessellate.Mesher {
	return &tessellate.Mesher{Kernel: sdfx.New(c.Kernel.Cells), Weld: c.Kernel.Weld}
}

// Evaluator builds the scene script engine.
func (c *Config) Evaluator() *engine.Engine {
	return engine.New(c.Engine.Timeout.Duration())
}
