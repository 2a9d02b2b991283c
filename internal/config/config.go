package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/iancoleman/strcase"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontree/internal/errors"
	"github.com/mcncl/jsontree/node"
)

// Config represents the complete configuration for jsontree
type Config struct {
	Parse  ParseConfig  `yaml:"parse"`
	Output OutputConfig `yaml:"output"`
	Keys   KeysConfig   `yaml:"keys"`
	Limits LimitsConfig `yaml:"limits"`
	Log    LogConfig    `yaml:"log"`
}

// ParseConfig controls how input documents are read
type ParseConfig struct {
	Strict        bool `yaml:"strict"`
	AllowComments bool `yaml:"allow_comments"`
	MaxDepth      int  `yaml:"max_depth"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Compact         bool   `yaml:"compact"`
	BufferHint      string `yaml:"buffer_hint"`
	FixedBuffer     string `yaml:"fixed_buffer"`
	TrailingNewline bool   `yaml:"trailing_newline"`
}

// KeysConfig controls member renaming for the rekey command
type KeysConfig struct {
	Case     string            `yaml:"case"`
	Mappings map[string]string `yaml:"mappings"`
	Rules    []KeyRule         `yaml:"rules"`
	Skip     []string          `yaml:"skip"`
}

// KeyRule applies a case to member names matching a pattern
type KeyRule struct {
	Pattern string `yaml:"pattern"`
	Case    string `yaml:"case"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// LimitsConfig bounds resource use. Sizes accept humanized values such as
// "64MiB" or "10 MB".
type LimitsConfig struct {
	MaxMemory string `yaml:"max_memory"`
}

// LogConfig controls diagnostics written to stderr
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Supported key cases
const (
	CasePreserve       = "preserve"
	CaseSnake          = "snake"
	CaseScreamingSnake = "screaming-snake"
	CaseKebab          = "kebab"
	CaseCamel          = "camel"
	CaseLowerCamel     = "lower-camel"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Parse: ParseConfig{
			Strict:        true,
			AllowComments: false,
			MaxDepth:      0,
		},
		Output: OutputConfig{
			Compact:         false,
			BufferHint:      "256B",
			FixedBuffer:     "",
			TrailingNewline: true,
		},
		Keys: KeysConfig{
			Case:     CasePreserve,
			Mappings: make(map[string]string),
			Rules:    []KeyRule{},
			Skip:     []string{},
		},
		Limits: LimitsConfig{
			MaxMemory: "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "logfmt",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read config file")
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to compile patterns")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsontree.yml", ".jsontree.yaml", "jsontree.yml", "jsontree.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Keys.Rules {
		rule := &c.Keys.Rules[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid key rule pattern '%s'", rule.Pattern)
		}
		rule.regex = regex
	}
	return nil
}

// Validate checks values that YAML decoding cannot
func (c *Config) Validate() error {
	if !ValidCase(c.Keys.Case) {
		return fmt.Errorf("keys.case %q: %w", c.Keys.Case, errors.ErrUnknownCase)
	}
	for _, rule := range c.Keys.Rules {
		if !ValidCase(rule.Case) {
			return fmt.Errorf("keys.rules %q case %q: %w", rule.Pattern, rule.Case, errors.ErrUnknownCase)
		}
	}
	if _, err := c.MaxMemoryBytes(); err != nil {
		return err
	}
	if _, err := c.BufferHintBytes(); err != nil {
		return err
	}
	if _, err := c.FixedBufferBytes(); err != nil {
		return err
	}
	if c.Parse.MaxDepth < 0 {
		return fmt.Errorf("parse.max_depth must not be negative, got %d", c.Parse.MaxDepth)
	}
	if c.Parse.MaxDepth > node.NestingLimit {
		return fmt.Errorf("parse.max_depth must not exceed %d, got %d", node.NestingLimit, c.Parse.MaxDepth)
	}
	return nil
}

// ValidCase reports whether name is a supported key case
func ValidCase(name string) bool {
	switch name {
	case "", CasePreserve, CaseSnake, CaseScreamingSnake, CaseKebab, CaseCamel, CaseLowerCamel:
		return true
	}
	return false
}

// MatchesKey checks if this rule matches the given member name
func (kr *KeyRule) MatchesKey(key string) bool {
	if kr.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(kr.Pattern)
		if err != nil {
			return false
		}
		kr.regex = regex
	}
	return kr.regex.MatchString(key)
}

// FindKeyRule finds the first rule that matches the member name
func (c *Config) FindKeyRule(key string) (KeyRule, bool) {
	for i := range c.Keys.Rules {
		if c.Keys.Rules[i].MatchesKey(key) {
			return c.Keys.Rules[i], true
		}
	}
	return KeyRule{}, false
}

// ShouldSkipKey checks if a member should be dropped while rekeying
func (c *Config) ShouldSkipKey(key string) bool {
	for _, skip := range c.Keys.Skip {
		if skip == key {
			return true
		}
	}
	return false
}

// GetKeyName returns the new name for a member, applying mappings first,
// then the first matching rule, then the default case
func (c *Config) GetKeyName(key string) string {
	if mapped, exists := c.Keys.Mappings[key]; exists {
		return mapped
	}
	if rule, ok := c.FindKeyRule(key); ok {
		return ConvertCase(rule.Case, key)
	}
	return ConvertCase(c.Keys.Case, key)
}

// ConvertCase rewrites key in the named case. Unknown cases leave key as is.
func ConvertCase(name, key string) string {
	switch name {
	case CaseSnake:
		return strcase.ToSnake(key)
	case CaseScreamingSnake:
		return strcase.ToScreamingSnake(key)
	case CaseKebab:
		return strcase.ToKebab(key)
	case CaseCamel:
		return strcase.ToCamel(key)
	case CaseLowerCamel:
		return strcase.ToLowerCamel(key)
	}
	return key
}

// MaxMemoryBytes returns limits.max_memory in bytes, 0 when unlimited
func (c *Config) MaxMemoryBytes() (int64, error) {
	return parseSize("limits.max_memory", c.Limits.MaxMemory)
}

// BufferHintBytes returns output.buffer_hint in bytes
func (c *Config) BufferHintBytes() (int, error) {
	n, err := parseSize("output.buffer_hint", c.Output.BufferHint)
	return int(n), err
}

// FixedBufferBytes returns output.fixed_buffer in bytes, 0 when the output
// buffer may grow
func (c *Config) FixedBufferBytes() (int, error) {
	n, err := parseSize("output.fixed_buffer", c.Output.FixedBuffer)
	return int(n), err
}

func parseSize(field, value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, errors.NewConfigError(fmt.Sprintf("%s %q", field, value), fmt.Errorf("%w: %v", errors.ErrInvalidSize, err))
	}
	if n > 1<<40 {
		return 0, errors.NewConfigError(fmt.Sprintf("%s %q exceeds 1TiB", field, value), errors.ErrInvalidSize)
	}
	return int64(n), nil
}

// MergeConfigs merges CLI overrides into a base config.
// Non-empty values from override take precedence over base values; boolean
// flags can only switch features on.
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Output.FixedBuffer != "" {
		merged.Output.FixedBuffer = override.Output.FixedBuffer
	}
	if override.Output.BufferHint != "" {
		merged.Output.BufferHint = override.Output.BufferHint
	}
	if override.Keys.Case != "" {
		merged.Keys.Case = override.Keys.Case
	}
	if override.Limits.MaxMemory != "" {
		merged.Limits.MaxMemory = override.Limits.MaxMemory
	}
	if override.Log.Level != "" {
		merged.Log.Level = override.Log.Level
	}
	if override.Parse.MaxDepth != 0 {
		merged.Parse.MaxDepth = override.Parse.MaxDepth
	}
	merged.Output.Compact = base.Output.Compact || override.Output.Compact
	merged.Parse.AllowComments = base.Parse.AllowComments || override.Parse.AllowComments

	return &merged
}

// CLIOverrides carries the flags that may override the config file
type CLIOverrides struct {
	Compact       bool
	AllowComments bool
	FixedBuffer   string
	Case          string
	MaxMemory     string
	Debug         bool
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	override := &Config{
		Parse:  ParseConfig{AllowComments: cli.AllowComments},
		Output: OutputConfig{Compact: cli.Compact, FixedBuffer: cli.FixedBuffer},
		Keys:   KeysConfig{Case: cli.Case},
		Limits: LimitsConfig{MaxMemory: cli.MaxMemory},
	}
	if cli.Debug {
		override.Log.Level = "debug"
	}

	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
