package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all resolved paths and options for a documentation build.
// It is loaded once per invocation and treated as immutable afterwards; the
// orchestrator never reaches for ambient globals beyond the process env.
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Sphinx      SphinxConfig      `yaml:"sphinx"`
	Linkcheck   LinkcheckConfig   `yaml:"linkcheck"`
	Intersphinx IntersphinxConfig `yaml:"intersphinx"`
	Deploy      DeployConfig      `yaml:"deploy"`
	Watch       WatchConfig       `yaml:"watch"`
	History     HistoryConfig     `yaml:"history"`
}

// PathsConfig describes the source tree and the generated output locations.
type PathsConfig struct {
	Source      string   `yaml:"source"`       // documentation source directory
	Build       string   `yaml:"build"`        // artifact tree root, owned by docmake
	Doctrees    string   `yaml:"doctrees"`     // pickled environment cache
	WarningsLog string   `yaml:"warnings_log"` // generator diagnostics, one per build
	Examples    []string `yaml:"examples"`     // generated example galleries, expensive to rebuild
	Autosummary []string `yaml:"autosummary"`  // generated API stub directories
}

// SphinxConfig controls how the generator binary is invoked.
type SphinxConfig struct {
	Binary       string   `yaml:"binary"`
	ExtraOpts    []string `yaml:"extra_opts"`
	OffScreenEnv string   `yaml:"off_screen_env"` // env var exported to the generator
	OffScreen    *bool    `yaml:"off_screen"`     // default true: headless rendering
}

// LinkcheckConfig controls the link-integrity targets.
type LinkcheckConfig struct {
	Ignore []string `yaml:"ignore"` // URL patterns exempt from broken-link failures
}

// IntersphinxConfig maps inventory names to their remote objects.inv URLs.
type IntersphinxConfig struct {
	Dir         string            `yaml:"dir"`
	Inventories map[string]string `yaml:"inventories"`
	TimeoutSecs int               `yaml:"timeout_seconds"`
}

// DeployConfig describes the one-way publish destination.
type DeployConfig struct {
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
	CNAME  string `yaml:"cname"`
}

// WatchConfig controls the continuous rebuild mode.
type WatchConfig struct {
	Debounce            string `yaml:"debounce"`
	LinkcheckInterval   string `yaml:"linkcheck_interval"`
	IntersphinxInterval string `yaml:"intersphinx_interval"`
	MetricsAddr         string `yaml:"metrics_addr"`
	NATSURL             string `yaml:"nats_url"`
	NATSSubject         string `yaml:"nats_subject"`
}

// HistoryConfig locates the build history database.
type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env if present; process env always wins.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Paths.Source == "" {
		c.Paths.Source = "."
	}
	if c.Paths.Build == "" {
		c.Paths.Build = "_build"
	}
	if c.Paths.Doctrees == "" {
		c.Paths.Doctrees = filepath.Join(c.Paths.Build, "doctrees")
	}
	if c.Paths.WarningsLog == "" {
		c.Paths.WarningsLog = "sphinx_warnings.txt"
	}
	if c.Sphinx.Binary == "" {
		c.Sphinx.Binary = "sphinx-build"
	}
	if c.Sphinx.OffScreenEnv == "" {
		c.Sphinx.OffScreenEnv = "DOCMAKE_OFF_SCREEN"
	}
	if c.Sphinx.OffScreen == nil {
		offScreen := true // headless builds by default, CI has no display
		c.Sphinx.OffScreen = &offScreen
	}
	if c.Intersphinx.Dir == "" {
		c.Intersphinx.Dir = "intersphinx"
	}
	if c.Intersphinx.TimeoutSecs <= 0 {
		c.Intersphinx.TimeoutSecs = 30
	}
	if c.Deploy.Branch == "" {
		c.Deploy.Branch = "gh-pages"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "2s"
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(".docmake", "builds.db")
	}
}

// HTMLDir returns the rendered HTML output directory inside the artifact tree.
func (c *Config) HTMLDir() string {
	return filepath.Join(c.Paths.Build, "html")
}

// LinkcheckLog returns the link checker's output log inside the artifact tree.
func (c *Config) LinkcheckLog() string {
	return filepath.Join(c.Paths.Build, "linkcheck", "output.txt")
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := `# docmake configuration
paths:
  source: .
  build: _build
  warnings_log: sphinx_warnings.txt
  examples:
    - examples
    - images/auto-generated
  autosummary:
    - api/_autosummary

sphinx:
  binary: sphinx-build
  off_screen_env: DOCMAKE_OFF_SCREEN
  off_screen: true

linkcheck:
  ignore:
    - https://www.sciencedirect.com/.*
    - https://doi.org/.*

intersphinx:
  dir: intersphinx
  inventories:
    python: https://docs.python.org/3/objects.inv
    numpy: https://numpy.org/doc/stable/objects.inv

deploy:
  remote: git@github.com:example/example-docs.git
  branch: gh-pages

watch:
  debounce: 2s
  metrics_addr: ""
`
	if err := os.WriteFile(configPath, []byte(example), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	slog.Info("Created configuration file", "path", configPath)
	return nil
}
