// internal/config/config.go
//
// This package handles configuration and the ~/.daybreak directory
// structure. Everything the tool persists lives under that one directory.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory we create in the user's home.
	AppDir = ".daybreak"

	// EnvAPIKey names the environment variable holding the API key.
	// The key is never stored in the config file.
	EnvAPIKey = "DAYBREAK_API_KEY"

	defaultModel     = "deepseek-chat"
	defaultAPIBase   = "https://api.deepseek.com"
	defaultChatTemp  = 0.7
	defaultMaxTokens = 2000
)

const defaultConfigYAML = `# daybreak configuration
version: 1

# Job categories walked every morning. Add, remove, or rename freely;
# each category becomes one prompt in the planning workflow.
daily_jobs:
  - name: Deep Work
    description: Focused project or study time
  - name: Admin
    description: Email, errands, and small chores
  - name: Health
    description: Exercise, meals, rest

# Chat-completion API settings. The API key comes from the DAYBREAK_API_KEY
# environment variable, never from this file.
ai:
  model: deepseek-chat
  api_base: https://api.deepseek.com
  temperature_planning: 0.0
  temperature_chat: 0.7
  max_tokens: 2000
`

// JobTemplate is one configured job category (name + description).
type JobTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// AIConfig holds the chat-completion API settings.
type AIConfig struct {
	Model               string  `yaml:"model"`
	APIBase             string  `yaml:"api_base"`
	TemperaturePlanning float64 `yaml:"temperature_planning"`
	TemperatureChat     float64 `yaml:"temperature_chat"`
	MaxTokens           int     `yaml:"max_tokens"`
}

// FileConfig models ~/.daybreak/config.yaml.
type FileConfig struct {
	Version   int           `yaml:"version"`
	DailyJobs []JobTemplate `yaml:"daily_jobs"`
	AI        AIConfig      `yaml:"ai"`
}

// Config holds the runtime configuration for daybreak.
type Config struct {
	// Home is the daybreak directory (usually ~/.daybreak).
	Home string

	File FileConfig
}

// InitAppDir creates the daybreak directory structure and writes the
// default config file on first run.
//
// Structure created:
// ~/.daybreak/
// ├── config.yaml   <- job categories + AI settings
// ├── data/         <- per-date plans, logs, feedback, horizon plans
// └── logs/         <- session journal
func InitAppDir(home string) error {
	dirs := []string{
		filepath.Join(home, "data"),
		filepath.Join(home, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure %s: %w", dir, err)
		}
	}
	return ensureDefaultConfig(filepath.Join(home, "config.yaml"))
}

// DefaultHome resolves ~/.daybreak for the current user.
func DefaultHome() (string, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(userHome, AppDir), nil
}

// New loads the config file under the given daybreak home directory.
func New(home string) (*Config, error) {
	cfg := &Config{
		Home: home,
		File: defaultFileConfig(),
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Home, "config.yaml")
}

// DataDir returns the directory holding plans, logs, and feedback.
func (c *Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// LogsDir returns the directory holding the session journal.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Home, "logs")
}

// JournalPath returns the session journal file path.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// DailyJobs returns the configured job categories.
func (c *Config) DailyJobs() []JobTemplate {
	return c.File.DailyJobs
}

// AI returns the chat-completion settings.
func (c *Config) AI() AIConfig {
	return c.File.AI
}

// APIKey reads the API key from the environment.
func (c *Config) APIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		return "", fmt.Errorf("config: %s is not set; export your API key before running", EnvAPIKey)
	}
	return key, nil
}

func (c *Config) loadFile() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	cfg := FileConfig{Version: 1}
	cfg.applyDefaults()
	return cfg
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.AI.Model == "" {
		fc.AI.Model = defaultModel
	}
	if fc.AI.APIBase == "" {
		fc.AI.APIBase = defaultAPIBase
	}
	if fc.AI.TemperatureChat == 0 {
		fc.AI.TemperatureChat = defaultChatTemp
	}
	if fc.AI.MaxTokens == 0 {
		fc.AI.MaxTokens = defaultMaxTokens
	}
}

func (fc *FileConfig) normalize() {
	for i := range fc.DailyJobs {
		fc.DailyJobs[i].Name = strings.TrimSpace(fc.DailyJobs[i].Name)
		fc.DailyJobs[i].Description = strings.TrimSpace(fc.DailyJobs[i].Description)
	}
	fc.AI.Model = strings.TrimSpace(fc.AI.Model)
	fc.AI.APIBase = strings.TrimRight(strings.TrimSpace(fc.AI.APIBase), "/")
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	for i, job := range fc.DailyJobs {
		if job.Name == "" {
			return fmt.Errorf("daily_jobs[%d]: name is required", i)
		}
	}
	if fc.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if fc.AI.APIBase == "" {
		return fmt.Errorf("ai.api_base is required")
	}
	if fc.AI.TemperaturePlanning < 0 || fc.AI.TemperaturePlanning > 2 {
		return fmt.Errorf("ai.temperature_planning must be between 0 and 2")
	}
	if fc.AI.TemperatureChat < 0 || fc.AI.TemperatureChat > 2 {
		return fmt.Errorf("ai.temperature_chat must be between 0 and 2")
	}
	if fc.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.max_tokens must be positive")
	}
	return nil
}

func ensureDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
