package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GlobalConfig is ~/.config/onetool/config.json.
type GlobalConfig struct {
	APIKey      string `json:"api_key"`
	APIURL      string `json:"api_url"`
	AccountName string `json:"account_name,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "onetool"), nil
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetConfigDir returns the platform-specific configuration directory
func GetConfigDir() (string, error) {
	return getConfigDirFunc()
}

// GetConfigPath returns the full path to the config.json file
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig reads and parses the global config.json file
// Returns nil config (not error) if file doesn't exist
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig writes the config to config.json with 0600 permissions
func SaveGlobalConfig(config *GlobalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DeleteGlobalConfig removes the config.json file
func DeleteGlobalConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.Remove(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete config file: %w", err)
	}

	return nil
}

const apiKeyPrefix = "otk_"

// IsValidAPIKey validates the API key format: otk_ + 64 hex chars
func IsValidAPIKey(key string) bool {
	hexPart, ok := strings.CutPrefix(key, apiKeyPrefix)
	if !ok || len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

// CredentialSource says which layer of the cascade supplied a value.
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceDefault      CredentialSource = "default"
	SourceNone         CredentialSource = "none"
)

// Credentials are the resolved API key and URL. Each is resolved on its own,
// so a key from the environment can pair with a URL from the global config.
type Credentials struct {
	APIKey    string
	APIURL    string
	KeySource CredentialSource
	URLSource CredentialSource
}

// ResolveCredentials walks flag, env, then global config for each value. A
// missing URL falls back to the local default; a missing key stays empty.
func ResolveCredentials(flagAPIKey, flagAPIURL string) (*Credentials, error) {
	creds := &Credentials{KeySource: SourceNone, URLSource: SourceDefault}

	pick := func(dst *string, src *CredentialSource, value string, from CredentialSource) {
		if *dst == "" && value != "" {
			*dst, *src = value, from
		}
	}

	pick(&creds.APIKey, &creds.KeySource, flagAPIKey, SourceFlag)
	pick(&creds.APIURL, &creds.URLSource, flagAPIURL, SourceFlag)
	pick(&creds.APIKey, &creds.KeySource, os.Getenv(envAPIKey), SourceEnv)
	pick(&creds.APIURL, &creds.URLSource, os.Getenv(envAPIURL), SourceEnv)

	if creds.APIKey == "" || creds.APIURL == "" {
		global, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if global != nil {
			pick(&creds.APIKey, &creds.KeySource, global.APIKey, SourceGlobalConfig)
			pick(&creds.APIURL, &creds.URLSource, global.APIURL, SourceGlobalConfig)
		}
	}

	if creds.APIURL == "" {
		creds.APIURL = defaultAPIURL
	}
	return creds, nil
}

// GetCredentialSource reports where the API key came from along with the
// resolved key and URL. An unreadable global config counts as absent.
func GetCredentialSource(flagAPIKey, flagAPIURL string) (CredentialSource, string, string) {
	creds, err := ResolveCredentials(flagAPIKey, flagAPIURL)
	if err != nil {
		return SourceNone, "", defaultAPIURL
	}
	return creds.KeySource, creds.APIKey, creds.APIURL
}
