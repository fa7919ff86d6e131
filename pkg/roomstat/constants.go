package roomstat

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess              = 0  // Run completed successfully
	ExitGeneralError         = 1  // Unknown or unclassified error
	ExitUsageError           = 2  // CLI usage error (missing args, invalid flags, unknown format)
	ExitPanic                = 3  // Internal panic (unexpected crash)
	ExitConfigError          = 10 // Invalid configuration
	ExitConnectionError      = 11 // Failed to connect to database
	ExitParseError           = 12 // Malformed input document
	ExitReferentialIntegrity = 13 // Student references an unknown room
	ExitQueryFailed          = 14 // Aggregation query failed
	ExitExportFailed         = 15 // Output could not be written
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultConnectTimeout bounds a single connection attempt.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultRunTimeout protects a whole run against indefinite hangs.
	DefaultRunTimeout = 3 * time.Minute

	// DefaultManagementDB is the database used for CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// DefaultDatabase is the target database when none is configured.
	DefaultDatabase = "db_students"

	// DaysPerYear is the day-count convention used for all age arithmetic.
	DaysPerYear = 365.25

	// TopRoomsLimit caps the ranked queries (youngest rooms, age spread).
	TopRoomsLimit = 5
)
