package roomstat

import (
	"errors"
	"fmt"
	"time"
)

// RunConfig contains all parameters needed for a load-query-export run.
type RunConfig struct {
	// StudentsPath and RoomsPath are the JSON input documents ("-" reads stdin).
	StudentsPath string
	RoomsPath    string

	// Format is the output serialization format.
	Format Format

	// OutputDir receives one file per query. "-" writes all documents to stdout.
	OutputDir string

	// Queries selects which queries to run. Empty means AllQueries().
	Queries []QueryID

	// ApplyIndexes applies the index DDL after loading.
	ApplyIndexes bool

	// CreateDatabase creates the target database through MaintenanceDatabase
	// when it does not exist yet.
	CreateDatabase      bool
	MaintenanceDatabase string

	// AsOf is the reference date for age arithmetic. Zero means today (UTC).
	AsOf Date

	// Connection is the resolved target database connection.
	Connection *ConnectionConfig

	// Timeout is the global timeout for the entire run.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.StudentsPath == "" {
		errs = append(errs, fmt.Errorf("StudentsPath is required: %w", ErrInvalidConfig))
	}
	if c.RoomsPath == "" {
		errs = append(errs, fmt.Errorf("RoomsPath is required: %w", ErrInvalidConfig))
	}
	if c.StudentsPath == "-" && c.RoomsPath == "-" {
		errs = append(errs, fmt.Errorf("only one input can be read from stdin: %w", ErrInvalidConfig))
	}
	if _, err := ParseFormat(string(c.Format)); err != nil {
		errs = append(errs, err)
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("OutputDir is required: %w", ErrInvalidConfig))
	}
	for _, q := range c.Queries {
		if !q.IsValid() {
			errs = append(errs, fmt.Errorf("unknown query %q: %w", q, ErrInvalidConfig))
		}
	}
	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	}
	if c.CreateDatabase && c.MaintenanceDatabase == "" {
		errs = append(errs, fmt.Errorf("MaintenanceDatabase is required to create the database: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// SelectedQueries returns the configured queries, defaulting to all of them.
func (c *RunConfig) SelectedQueries() []QueryID {
	if len(c.Queries) == 0 {
		return AllQueries()
	}
	return c.Queries
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	SSLCert     string
	SSLKey      string
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// WithDatabase returns a copy of c pointing at another database.
func (c *ConnectionConfig) WithDatabase(name string) *ConnectionConfig {
	clone := *c
	clone.Database = name
	if c.AdditionalParams != nil {
		clone.AdditionalParams = make(map[string]string, len(c.AdditionalParams))
		for k, v := range c.AdditionalParams {
			clone.AdditionalParams[k] = v
		}
	}
	return &clone
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the configuration names (standard, aws, google, azure).
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}
