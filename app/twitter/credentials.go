package twitter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials is the application-only auth secret pair.
type Credentials struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
}

// LoadCredentials reads the API credentials YAML file.
func LoadCredentials(path string) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		return creds, fmt.Errorf("failed to read API keys file: %w", err)
	}

	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse API keys file: %w", err)
	}

	if creds.ConsumerKey == "" || creds.ConsumerSecret == "" {
		return creds, fmt.Errorf("API keys file must set consumer_key and consumer_secret")
	}

	return creds, nil
}
