package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireRunArgs validates the <students.json> <rooms.json> <format> triple.
func RequireRunArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf(`missing required argument: expected <students.json> <rooms.json> <json|xml>

Usage: %s

Example:
  %s students.json rooms.json xml`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 3 {
		return fmt.Errorf("accepts 3 arg(s), received %d", len(args))
	}
	return nil
}

// RequireInputArgs validates the <students.json> <rooms.json> pair.
func RequireInputArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`missing required argument: expected <students.json> <rooms.json>

Usage: %s

Example:
  %s students.json rooms.json`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
	}
	return nil
}
