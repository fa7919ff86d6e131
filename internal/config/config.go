// Package config reads the optional roomstat.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is looked up in the working directory unless --config is given.
const ConfigFileName = "roomstat.yaml"

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
	SSLCert            string `yaml:"sslcert,omitempty"`
	SSLKey             string `yaml:"sslkey,omitempty"`
	SSLRootCert        string `yaml:"sslrootcert,omitempty"`
	AuthMethod         string `yaml:"auth_method,omitempty"`
	AzureTenantID      string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID      string `yaml:"azure_client_id,omitempty"`
	AWSRegion          string `yaml:"aws_region,omitempty"`
	GoogleInstance     string `yaml:"google_instance,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	OutputDir  string           `yaml:"output_dir,omitempty"`
	Indexes    bool             `yaml:"indexes,omitempty"`
	Timeout    string           `yaml:"timeout,omitempty"`
	AsOf       string           `yaml:"as_of,omitempty"`
}

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project config from an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", roomstat.ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}

// ParsedTimeout returns the timeout field as a duration, zero when unset.
func (c *ProjectConfig) ParsedTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q: %v", roomstat.ErrInvalidConfig, c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout must not be negative", roomstat.ErrInvalidConfig)
	}
	return d, nil
}

// ParsedAsOf returns the as_of reference date, zero when unset.
func (c *ProjectConfig) ParsedAsOf() (roomstat.Date, error) {
	if c.AsOf == "" {
		return roomstat.Date{}, nil
	}
	d, err := roomstat.ParseDate(c.AsOf)
	if err != nil {
		return roomstat.Date{}, fmt.Errorf("%w: invalid as_of: %v", roomstat.ErrInvalidConfig, err)
	}
	return d, nil
}
