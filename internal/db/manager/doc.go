// Package manager checks for and creates the target database.
//
// Statements run against a maintenance database (usually "postgres") and
// quote names with pgx.Identifier.Sanitize(), so names with spaces, quotes
// or semicolons are safe.
//
//	mgr := manager.New()
//	created, err := mgr.EnsureExists(ctx, maintenanceConn, "db_students")
package manager
