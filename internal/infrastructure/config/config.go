// Package config loads the workbench.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ConfigFile = "workbench.yaml"

// GitHubConfig names the repository issues are fetched from. TokenEnv is the
// environment variable holding the access token, never the token itself.
type GitHubConfig struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	TokenEnv string `yaml:"token_env"`
}

// Config is the per-project configuration read from workbench.yaml at the
// project root. Every field has a usable default so a missing file is fine.
type Config struct {
	SDKRepo         string       `yaml:"sdk_repo"`
	SampleApp       string       `yaml:"sample_app"`
	WorktreeDir     string       `yaml:"worktree_dir"`
	PromptDir       string       `yaml:"prompt_dir"`
	GitHub          GitHubConfig `yaml:"github"`
	ProjectKey      string       `yaml:"project_key"`
	DefaultWorkflow string       `yaml:"default_workflow"`
}

// DefaultConfig returns the configuration used when no workbench.yaml exists.
func DefaultConfig(root string) *Config {
	return &Config{
		SDKRepo:         root,
		WorktreeDir:     filepath.Join(root, ".worktrees"),
		GitHub:          GitHubConfig{TokenEnv: "GITHUB_TOKEN"},
		DefaultWorkflow: "issue-fix",
	}
}

// Load reads workbench.yaml from root. A missing file returns the defaults;
// an unparsable file is an error.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, ConfigFile)

	// #nosec G304 -- Path is anchored at the project root
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(root), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig(root)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to workbench.yaml at root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(root, ConfigFile), data, 0600)
}

// Token resolves the GitHub token from the configured environment variable.
// An empty result means unauthenticated access.
func (c *Config) Token() string {
	if c.GitHub.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.GitHub.TokenEnv)
}
