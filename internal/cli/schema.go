package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/roomstat/internal/logging"
	"github.com/vvka-141/roomstat/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the tables, and optionally the database and indexes",
	Long: `Schema applies the room and student table DDL. It is safe to run
repeatedly. With --print it writes the DDL to stdout instead of applying it.

Examples:
  roomstat schema -d db_students --create-database --indexes
  roomstat schema --print --indexes > schema.sql`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

type schemaFlagValues struct {
	conn           connectionFlags
	indexes        bool
	createDatabase bool
	printDDL       bool
	timeout        time.Duration
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	registerConnectionFlags(schemaCmd, &schemaFlags.conn)
	registerTimeoutFlag(schemaCmd, &schemaFlags.timeout)

	schemaCmd.Flags().BoolVar(&schemaFlags.indexes, "indexes", false,
		"Also create the query indexes")
	schemaCmd.Flags().BoolVar(&schemaFlags.createDatabase, "create-database", false,
		"Create the target database if it does not exist")
	schemaCmd.Flags().BoolVar(&schemaFlags.printDDL, "print", false,
		"Print the DDL instead of applying it")
}

func runSchema(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}
	indexes := resolveIndexes(cmd, projectCfg, schemaFlags.indexes)

	if schemaFlags.printDDL {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, schema.Tables())
		if indexes {
			fmt.Fprint(out, schema.Indexes())
		}
		return nil
	}

	conn, err := resolveConnectionFromFlags(schemaFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}
	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, schemaFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	logger := logging.NewConsoleLogger(verbose)
	if _, err := newPipeline(logger).Schema(ctx, conn.ConnConfig, conn.MaintenanceDB, schemaFlags.createDatabase, indexes); err != nil {
		return fmt.Errorf("schema failed: %w", err)
	}
	logger.Info("Schema ready in database '%s'", conn.ConnConfig.Database)
	return nil
}
