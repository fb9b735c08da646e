// Package config provides loading and parsing of ledgerkit.yaml configuration
// files. A configuration file names the network to connect to, the execution
// mode, and per-plugin settings.
package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a ledgerkit.yaml configuration file.
type Config struct {
	// Network selects the chain endpoint.
	Network NetworkConfig `yaml:"network"`

	// Mode selects how transaction tools complete: "submit" signs and sends
	// to the network, "bytes" returns the unsigned transaction for external
	// signing. Empty defaults to "submit".
	Mode string `yaml:"mode,omitempty"`

	// GasLimit overrides the gas limit on every transaction tool when set.
	GasLimit uint64 `yaml:"gas_limit,omitempty"`

	// OperatorKeyEnv names the environment variable holding the operator's
	// hex-encoded private key. The key itself never appears in the file.
	OperatorKeyEnv string `yaml:"operator_key_env,omitempty"`

	// Plugins holds free-form settings keyed by plugin identifier, passed
	// to each plugin's Initialize.
	Plugins map[string]map[string]any `yaml:"plugins,omitempty"`
}

// NetworkConfig identifies a chain endpoint.
type NetworkConfig struct {
	Name    string `yaml:"name"`
	RPCURL  string `yaml:"rpc_url"`
	ChainID int64  `yaml:"chain_id"`
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Network.Name == "" {
		return fmt.Errorf("network.name is required")
	}
	if c.Network.RPCURL == "" {
		return fmt.Errorf("network.rpc_url is required")
	}
	if c.Network.ChainID <= 0 {
		return fmt.Errorf("network.chain_id must be positive, got %d", c.Network.ChainID)
	}
	switch c.Mode {
	case "", "submit", "bytes":
	default:
		return fmt.Errorf("mode must be \"submit\" or \"bytes\", got %q", c.Mode)
	}
	return nil
}

// ChainID returns the configured chain identifier as a big integer.
func (c *Config) ChainID() *big.Int {
	return big.NewInt(c.Network.ChainID)
}

// OperatorKey resolves the operator private key from the configured
// environment variable. Returns an empty string when unconfigured.
func (c *Config) OperatorKey() (string, error) {
	if c.OperatorKeyEnv == "" {
		return "", nil
	}
	key := os.Getenv(c.OperatorKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.OperatorKeyEnv)
	}
	return key, nil
}

// PluginConfig returns the settings block for the given plugin identifier,
// or an empty map when the file has none.
func (c *Config) PluginConfig(id string) map[string]any {
	if cfg, ok := c.Plugins[id]; ok {
		return cfg
	}
	return map[string]any{}
}

// Load reads and parses a ledgerkit.yaml file from the given path.
// If the path is a directory, it looks for ledgerkit.yaml or ledgerkit.yml
// in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "ledgerkit.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "ledgerkit.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				configPath = ymlPath
			} else {
				return nil, fmt.Errorf("no ledgerkit.yaml or ledgerkit.yml found in %s", path)
			}
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return &config, nil
}

// LoadFromDir searches for ledgerkit.yaml starting from the given directory
// and walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no ledgerkit.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}
