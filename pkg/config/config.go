// Package config loads treetable settings from .treetable/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the per-project settings directory.
const Dir = ".treetable"

// FileName is the config file inside Dir.
const FileName = "config.yaml"

// StartMode decides the expansion state shown when a forest is first loaded.
type StartMode string

const (
	// StartAuto expands the roots that have children.
	StartAuto StartMode = "auto"
	// StartExpanded expands every row with children.
	StartExpanded StartMode = "expanded"
	// StartCollapsed shows roots only.
	StartCollapsed StartMode = "collapsed"
)

// IsValid reports whether m is a known start mode.
func (m StartMode) IsValid() bool {
	switch m {
	case StartAuto, StartExpanded, StartCollapsed:
		return true
	}
	return false
}

// Config represents a treetable configuration file (.treetable/config.yaml)
type Config struct {
	// Title is shown in the header (default: "treetable")
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Sources are data files, relative to the project root or absolute
	Sources []string `yaml:"sources" json:"sources"`

	// View selects which forest is shown: "menus" or "units" (default: menus)
	View string `yaml:"view,omitempty" json:"view,omitempty"`

	// Indent is spaces per depth level (default: 2)
	Indent int `yaml:"indent,omitempty" json:"indent,omitempty"`

	// Start is the initial expansion mode (default: auto)
	Start StartMode `yaml:"start,omitempty" json:"start,omitempty"`

	// Watch reloads the forest when a source changes
	Watch bool `yaml:"watch,omitempty" json:"watch,omitempty"`

	// Debounce is how long to wait for writes to settle, e.g. "200ms"
	Debounce string `yaml:"debounce,omitempty" json:"debounce,omitempty"`

	// Discovery finds sources when none are listed
	Discovery DiscoveryConfig `yaml:"discovery,omitempty" json:"discovery,omitempty"`

	// root is the directory holding .treetable, used to resolve relative sources
	root string
}

// DiscoveryConfig controls automatic source discovery
type DiscoveryConfig struct {
	// ScanPaths are directories searched for data files (default: the project root)
	ScanPaths []string `yaml:"scan_paths,omitempty" json:"scan_paths,omitempty"`

	// MaxDepth limits directory traversal depth (default: 2)
	MaxDepth int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`
}

const (
	ViewMenus = "menus"
	ViewUnits = "units"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Title:    "treetable",
		View:     ViewMenus,
		Indent:   2,
		Start:    StartAuto,
		Debounce: "200ms",
	}
}

// Load reads a config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	// config lives in <root>/.treetable/config.yaml
	dir := filepath.Dir(path)
	if filepath.Base(dir) == Dir {
		dir = filepath.Dir(dir)
	}
	cfg.root = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the project config found by walking up from dir. A
// missing file is not an error.
func LoadOrDefault(dir string) (Config, error) {
	root, ok := FindRoot(dir)
	if !ok {
		cfg := Default()
		cfg.root = dir
		return cfg, nil
	}
	path := filepath.Join(root, Dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.root = root
		return cfg, nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.View == "" {
		c.View = def.View
	}
	if c.Indent == 0 {
		c.Indent = def.Indent
	}
	if c.Start == "" {
		c.Start = def.Start
	}
	if c.Debounce == "" {
		c.Debounce = def.Debounce
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("indent must be between 0 and 8, got %d", c.Indent)
	}
	if c.Start != "" && !c.Start.IsValid() {
		return fmt.Errorf("invalid start mode %q", c.Start)
	}
	if c.View != "" && c.View != ViewMenus && c.View != ViewUnits {
		return fmt.Errorf("invalid view %q", c.View)
	}
	if _, err := c.DebounceDuration(); err != nil {
		return err
	}
	for i, s := range c.Sources {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("source %d is empty", i)
		}
	}
	return nil
}

// DebounceDuration parses Debounce, returning zero when unset.
func (c Config) DebounceDuration() (time.Duration, error) {
	if c.Debounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce %q: %w", c.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("debounce cannot be negative")
	}
	return d, nil
}

// Root returns the project directory relative sources resolve against.
func (c Config) Root() string {
	return c.root
}

// WithRoot returns a copy of c resolving relative sources against root.
func (c Config) WithRoot(root string) Config {
	c.root = root
	return c
}

// ResolvedSources returns Sources as absolute paths. When no sources are
// configured, data files are discovered under the project root.
func (c Config) ResolvedSources() []string {
	if len(c.Sources) == 0 {
		return DiscoverSources(c)
	}
	paths := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		paths = append(paths, c.resolve(s))
	}
	return paths
}

func (c Config) resolve(p string) string {
	p = expandHome(p)
	if filepath.IsAbs(p) || c.root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(c.root, p)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
