package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/roomstat/internal/config"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// GranularConnFlags holds connection parameters from CLI flags, following
// the libpq flag conventions (-h, -p, -U, -d).
//
// There is no password flag. Use $PGPASSWORD, $DB_PASSWORD, a connection
// string, or -W to prompt.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no host-level flag was given. Database is excluded
// because -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AuthFlags selects the authentication method and its cloud parameters.
type AuthFlags struct {
	Method         string
	AWSRegion      string
	GoogleInstance string
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars is a snapshot of the environment variables the resolver reads.
type EnvVars struct {
	// libpq, see https://www.postgresql.org/docs/current/libpq-envars.html
	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	ROOMSTAT_CONNECTION_STRING string
	DATABASE_URL               string

	// Names used by .env files of the students/rooms tooling.
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                     os.Getenv("PGHOST"),
		PGPORT:                     os.Getenv("PGPORT"),
		PGUSER:                     os.Getenv("PGUSER"),
		PGPASSWORD:                 os.Getenv("PGPASSWORD"),
		PGDATABASE:                 os.Getenv("PGDATABASE"),
		PGSSLMODE:                  os.Getenv("PGSSLMODE"),
		ROOMSTAT_CONNECTION_STRING: os.Getenv("ROOMSTAT_CONNECTION_STRING"),
		DATABASE_URL:               os.Getenv("DATABASE_URL"),
		DB_HOST:                    os.Getenv("DB_HOST"),
		DB_PORT:                    os.Getenv("DB_PORT"),
		DB_USER:                    os.Getenv("DB_USER"),
		DB_PASSWORD:                os.Getenv("DB_PASSWORD"),
		DB_NAME:                    os.Getenv("DB_NAME"),
		AWS_REGION:                 os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:            os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:            os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:        os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveConnectionParams resolves the target connection and the maintenance
// database used for CREATE DATABASE. See the package documentation for the
// precedence order.
//
// Specifying both --connection and granular host flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	authFlags *AuthFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*roomstat.ConnectionConfig, string, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if authFlags == nil {
		authFlags = &AuthFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, "", fmt.Errorf("%w: cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)", roomstat.ErrInvalidConfig)
	}

	var (
		cfg *roomstat.ConnectionConfig
		err error
	)
	connStr := connStringFlag
	if connStr == "" && granularFlags.IsEmpty() {
		connStr = firstNonEmpty(envVars.ROOMSTAT_CONNECTION_STRING, envVars.DATABASE_URL)
	}
	if connStr != "" {
		cfg, err = ParseConnectionString(connStr)
		if err != nil {
			return nil, "", err
		}
		if granularFlags.Database != "" {
			cfg.Database = granularFlags.Database
		}
		// libpq semantics: the environment fills what the string leaves out.
		cfg.SSLMode = firstNonEmpty(cfg.SSLMode, envVars.PGSSLMODE)
		cfg.Password = firstNonEmpty(cfg.Password, envVars.PGPASSWORD)
	} else {
		cfg, err = resolveFromGranularParams(granularFlags, envVars, pc)
		if err != nil {
			return nil, "", err
		}
	}

	applyDefaults(cfg, pc)

	if err := applyAuth(cfg, authFlags, envVars, pc); err != nil {
		return nil, "", err
	}

	maintenanceDB := firstNonEmpty(pc.ManagementDatabase, roomstat.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

// resolveFromGranularParams resolves each parameter as
// flag > PG* > DB_* > roomstat.yaml.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	env *EnvVars,
	pc config.ConnectionConfig,
) (*roomstat.ConnectionConfig, error) {
	cfg := &roomstat.ConnectionConfig{
		AuthMethod:       roomstat.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, env.PGHOST, env.DB_HOST, pc.Host)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := parsePortEnv("PGPORT", env.PGPORT)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	case env.DB_PORT != "":
		port, err := parsePortEnv("DB_PORT", env.DB_PORT)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	default:
		cfg.Port = pc.Port
	}

	cfg.Username = firstNonEmpty(flags.Username, env.PGUSER, env.DB_USER, pc.Username)
	cfg.Password = firstNonEmpty(env.PGPASSWORD, env.DB_PASSWORD)
	cfg.Database = firstNonEmpty(flags.Database, env.PGDATABASE, env.DB_NAME, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.PGSSLMODE, pc.SSLMode)

	return cfg, nil
}

func parsePortEnv(name, value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%w: invalid $%s value '%s': must be a port number", roomstat.ErrInvalidConfig, name, value)
	}
	return port, nil
}

// applyDefaults fills anything still unset from roomstat.yaml and then the
// built-in defaults. The current OS user is the last resort for the username.
func applyDefaults(cfg *roomstat.ConnectionConfig, pc config.ConnectionConfig) {
	cfg.Host = firstNonEmpty(cfg.Host, "localhost")
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	cfg.Database = firstNonEmpty(cfg.Database, roomstat.DefaultDatabase)
	cfg.SSLMode = firstNonEmpty(cfg.SSLMode, "prefer")
	cfg.Username = firstNonEmpty(cfg.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.SSLCert = firstNonEmpty(cfg.SSLCert, pc.SSLCert)
	cfg.SSLKey = firstNonEmpty(cfg.SSLKey, pc.SSLKey)
	cfg.SSLRootCert = firstNonEmpty(cfg.SSLRootCert, pc.SSLRootCert)
	if cfg.AdditionalParams == nil {
		cfg.AdditionalParams = make(map[string]string)
	}
}

// applyAuth selects the auth method (flag > roomstat.yaml) and attaches cloud
// parameters. Azure credentials in the environment switch an unset method to Azure.
func applyAuth(cfg *roomstat.ConnectionConfig, flags *AuthFlags, env *EnvVars, pc config.ConnectionConfig) error {
	methodName := firstNonEmpty(flags.Method, pc.AuthMethod)
	method, err := roomstat.ParseAuthMethod(methodName)
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
	if methodName == "" && (tenantID != "" || clientID != "") {
		method = roomstat.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case roomstat.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case roomstat.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case roomstat.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		// The secret only comes from the environment.
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}
