package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/roomstat/internal/logging"
	"github.com/vvka-141/roomstat/internal/tui"
)

var loadCmd = &cobra.Command{
	Use:   "load <students.json> <rooms.json>",
	Short: "Load rooms and students without running queries",
	Long: `Load parses both documents and inserts rooms, then students, in one
transaction. Ids that already exist are skipped, so loading the same
documents twice changes nothing. A student whose room is neither in the
rooms document nor already stored aborts the load and nothing is written.

Examples:
  roomstat load students.json rooms.json -d db_students
  cat students.json | roomstat load - rooms.json`,
	Args:              RequireInputArgs,
	ValidArgsFunction: completeRunArgs,
	RunE:              runLoad,
}

type loadFlagValues struct {
	conn    connectionFlags
	timeout time.Duration
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)
	registerConnectionFlags(loadCmd, &loadFlags.conn)
	registerTimeoutFlag(loadCmd, &loadFlags.timeout)
}

func runLoad(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}
	conn, err := resolveConnectionFromFlags(loadFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}
	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, loadFlags.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	summary, err := newPipeline(logging.NewConsoleLogger(verbose)).Load(ctx, conn.ConnConfig, args[1], args[0])
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	printSummary(cmd.ErrOrStderr(), tui.Summary{
		Database: conn.ConnConfig.Database,
		Load:     summary,
		Duration: summary.Duration,
	})
	return nil
}
