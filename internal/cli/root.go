package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roomstat",
	Short: "Load rooms and students into PostgreSQL and export room statistics",
	Long: `roomstat loads rooms and students from two JSON documents into PostgreSQL,
runs four fixed aggregation queries and exports each result as JSON or XML.

Queries (in output order):
  1 room-occupancy   every room with its number of students
  2 youngest-rooms   five rooms with the lowest average student age
  3 age-spread       five rooms with the largest student age difference
  4 mixed-sex        rooms housing both male and female students

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments, flags or format)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - Input document could not be parsed
  13 - Student references an unknown room
  14 - Query failed
  15 - Output could not be written`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h belongs to --host, as in psql.
	rootCmd.PersistentFlags().Bool("help", false, "Help for roomstat")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", "",
		"Path to a roomstat.yaml project file (default: ./roomstat.yaml when present)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}
