package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

var authMethods = []string{"standard", "aws", "google", "azure"}

func matchPrefix(values []string, toComplete string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(sslModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeAuthMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(authMethods, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(roomstat.FormatNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeQueryIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, q := range roomstat.AllQueries() {
		names = append(names, q.String())
	}
	return matchPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeRunArgs completes file names for the two inputs and the format
// for the third argument.
func completeRunArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch {
	case len(args) < 2:
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	case len(args) == 2:
		return completeFormats(cmd, args, toComplete)
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
