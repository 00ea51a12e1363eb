// Mailvoice turns spoken email commands into Gmail actions and serves them
// to voice shells through the Model Context Protocol.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mailvoice",
		Short:         "Voice command email dispatcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(buildServeCmd(), buildParseCmd(), buildCommandsCmd())
	return root
}
