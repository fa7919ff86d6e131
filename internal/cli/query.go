package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/roomstat/internal/logging"
	"github.com/vvka-141/roomstat/internal/services"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

var queryCmd = &cobra.Command{
	Use:   "query [query...]",
	Short: "Run queries against loaded data and export the results",
	Long: `Query runs the given queries (all four when none is named) against data
that is already loaded and writes one document per query.

Queries may be named or numbered:
  1 room-occupancy, 2 youngest-rooms, 3 age-spread, 4 mixed-sex

Examples:
  roomstat query -f xml
  roomstat query age-spread 4 --as-of 2024-01-01 -o -`,
	ValidArgsFunction: completeQueryIDs,
	RunE:              runQuery,
}

type queryFlagValues struct {
	conn      connectionFlags
	format    string
	outputDir string
	asOf      string
	timeout   time.Duration
}

var queryFlags queryFlagValues

func init() {
	rootCmd.AddCommand(queryCmd)
	registerConnectionFlags(queryCmd, &queryFlags.conn)
	registerOutputFlags(queryCmd, &queryFlags.outputDir, &queryFlags.asOf, &queryFlags.timeout)

	queryCmd.Flags().StringVarP(&queryFlags.format, "format", "f", string(roomstat.FormatJSON),
		"Output format: json|xml")
	_ = queryCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runQuery(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	format, err := roomstat.ParseFormat(queryFlags.format)
	if err != nil {
		return err
	}
	ids, err := parseQueryArgs(args)
	if err != nil {
		return err
	}

	projectCfg, err := loadProjectConfig(getConfigFlag(cmd))
	if err != nil {
		return err
	}
	conn, err := resolveConnectionFromFlags(queryFlags.conn, projectCfg, verbose)
	if err != nil {
		return err
	}
	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, queryFlags.timeout)
	if err != nil {
		return err
	}
	asOf, err := resolveAsOf(queryFlags.asOf, projectCfg)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeout)
	defer cancel()

	logger := logging.NewConsoleLogger(verbose)
	outputs, err := newPipeline(logger).Query(ctx, conn.ConnConfig, services.QueryOptions{
		Queries:   ids,
		Format:    format,
		OutputDir: resolveOutputDir(cmd, projectCfg, queryFlags.outputDir),
		AsOf:      asOf,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	for _, out := range outputs {
		if out != "-" {
			logger.Info("Wrote %s", out)
		}
	}
	return nil
}
