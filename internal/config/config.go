// Package config loads archscope configuration from .archscope.yaml in
// the analyzed root, with ARCHSCOPE_* environment overrides.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete archscope configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" yaml:"version"`

	Source  SourceConfig  `json:"source" mapstructure:"source" yaml:"source"`
	Extract ExtractConfig `json:"extract" mapstructure:"extract" yaml:"extract"`
	Output  OutputConfig  `json:"output" mapstructure:"output" yaml:"output"`
	Mermaid MermaidConfig `json:"mermaid" mapstructure:"mermaid" yaml:"mermaid"`
	Render  RenderConfig  `json:"render" mapstructure:"render" yaml:"render"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// SourceConfig controls which files are scanned
type SourceConfig struct {
	Extensions []string `json:"extensions" mapstructure:"extensions" yaml:"extensions"`
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs" yaml:"ignoreDirs"`
}

// ExtractConfig controls the extraction pass
type ExtractConfig struct {
	// Workers bounds the per-file extraction pool; 0 means NumCPU
	Workers int `json:"workers" mapstructure:"workers" yaml:"workers"`
}

// OutputConfig names the directories artifacts land in
type OutputConfig struct {
	SnapshotDir string `json:"snapshotDir" mapstructure:"snapshotDir" yaml:"snapshotDir"`
	DiagramDir  string `json:"diagramDir" mapstructure:"diagramDir" yaml:"diagramDir"`
	VisualsDir  string `json:"visualsDir" mapstructure:"visualsDir" yaml:"visualsDir"`
}

// MermaidConfig controls diagram markup generation
type MermaidConfig struct {
	Theme string `json:"theme" mapstructure:"theme" yaml:"theme"`
	// ClassInit is appended to class diagrams before rendering
	ClassInit string `json:"classInit" mapstructure:"classInit" yaml:"classInit"`
}

// RenderConfig controls the external mmdc invocation
type RenderConfig struct {
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds" yaml:"timeoutSeconds"`
	Command        string `json:"command" mapstructure:"command" yaml:"command"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" yaml:"format"`
	Level  string `json:"level" mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Source: SourceConfig{
			Extensions: []string{".rs"},
			IgnoreDirs: []string{"target", ".git", "node_modules", "vendor"},
		},
		Extract: ExtractConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			SnapshotDir: "architecture",
			DiagramDir:  "diagrams",
			VisualsDir:  "visuals",
		},
		Mermaid: MermaidConfig{
			Theme:     "default",
			ClassInit: "%%{init: {'theme': 'base', 'themeVariables': { 'primaryColor': '#fff4dd', 'fontSize': '16px' }}}%%",
		},
		Render: RenderConfig{
			TimeoutSeconds: 60,
			Command:        "mmdc",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads .archscope.yaml from the given root. A missing file yields
// the defaults; a malformed file is an error.
func Load(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("source.extensions", defaults.Source.Extensions)
	v.SetDefault("source.ignoreDirs", defaults.Source.IgnoreDirs)
	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("output.snapshotDir", defaults.Output.SnapshotDir)
	v.SetDefault("output.diagramDir", defaults.Output.DiagramDir)
	v.SetDefault("output.visualsDir", defaults.Output.VisualsDir)
	v.SetDefault("mermaid.theme", defaults.Mermaid.Theme)
	v.SetDefault("mermaid.classInit", defaults.Mermaid.ClassInit)
	v.SetDefault("render.timeoutSeconds", defaults.Render.TimeoutSeconds)
	v.SetDefault("render.command", defaults.Render.Command)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName(".archscope")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	v.SetEnvPrefix("ARCHSCOPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EffectiveWorkers resolves the worker count for the extraction pool.
func (c *Config) EffectiveWorkers() int {
	if c.Extract.Workers > 0 {
		return c.Extract.Workers
	}
	return runtime.NumCPU()
}

// Save writes the configuration to .archscope.yaml under root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(FilePath(root), data, 0644)
}

// FilePath returns the configuration file path for a root.
func FilePath(root string) string {
	return filepath.Join(root, ".archscope.yaml")
}

// FileExists reports whether the root carries a configuration file.
func FileExists(root string) bool {
	_, err := os.Stat(FilePath(root))
	return err == nil
}
