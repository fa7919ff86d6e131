// Package db resolves PostgreSQL connection parameters and opens connection
// pools for the supported authentication methods.
//
// Resolution order, highest first:
//
//  1. --connection, $ROOMSTAT_CONNECTION_STRING, $DATABASE_URL
//  2. granular flags (-h, -p, -U, -d, --sslmode)
//  3. libpq environment ($PGHOST, $PGPORT, $PGUSER, $PGPASSWORD, $PGDATABASE, $PGSSLMODE)
//  4. $DB_HOST, $DB_PORT, $DB_USER, $DB_PASSWORD, $DB_NAME (usually from .env)
//  5. roomstat.yaml
//  6. defaults: localhost:5432, database db_students, sslmode prefer
//
// Connectors return a *pgxpool.Pool; PoolAdapter hides it behind
// roomstat.DBConnection for the rest of the program.
package db
