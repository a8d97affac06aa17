package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Server     Server     `yaml:"server"`
	Generation Generation `yaml:"generation"`
	Output     Output     `yaml:"output"`
	Publish    Publish    `yaml:"publish"`
	Logging    Logging    `yaml:"logging"`
}

type Server struct {
	Port           int      `yaml:"port"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Generation struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	OllamaURL      string  `yaml:"ollama_url"`
	OpenAIModel    string  `yaml:"openai_model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxRetries     int     `yaml:"max_retries"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	OnExhaustion   string  `yaml:"on_exhaustion"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Publish struct {
	SFTP   SFTP   `yaml:"sftp"`
	CPanel CPanel `yaml:"cpanel"`
}

type SFTP struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"`
	RemoteDir   string `yaml:"remote_dir"`
	BaseURL     string `yaml:"base_url"`
}

type CPanel struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	TokenEnv string `yaml:"token_env"`
	DocRoot  string `yaml:"docroot"`
	BaseURL  string `yaml:"base_url"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for launchpage.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "launchpage")
}

// DataDir returns the XDG data directory for launchpage.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "launchpage")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/launchpage/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'launchpage init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Server: Server{
			Port:    8000,
			BaseURL: "http://localhost:8000",
		},
		Generation: Generation{
			Provider:       "openai",
			Model:          "qwen2.5:7b",
			OllamaURL:      "http://localhost:11434",
			OpenAIModel:    "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxRetries:     2,
			MaxTokens:      8192,
			Temperature:    0.7,
			TimeoutSeconds: 120,
			OnExhaustion:   "fail",
		},
		Publish: Publish{
			SFTP:   SFTP{Port: 22, PasswordEnv: "LAUNCHPAGE_SFTP_PASSWORD"},
			CPanel: CPanel{TokenEnv: "LAUNCHPAGE_CPANEL_TOKEN"},
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Generation.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown generation provider %q (want openai or ollama)", c.Generation.Provider)
	}
	switch c.Generation.OnExhaustion {
	case "fail", "fallback":
	default:
		return fmt.Errorf("unknown on_exhaustion value %q (want fail or fallback)", c.Generation.OnExhaustion)
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.Generation.MaxRetries)
	}
	if c.Generation.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0, got %d", c.Generation.TimeoutSeconds)
	}
	return nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
