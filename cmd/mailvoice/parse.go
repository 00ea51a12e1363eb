package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hal9000y/mailvoice/internal/command"
)

func buildParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <utterance...>",
		Short: "Recognize a spoken email command and print it as JSON",
		Example: `  mailvoice parse send email to bob@example.com
  mailvoice parse "mark as read"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, ok := command.NewParser(command.DefaultTable()).Process(strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("not an email command: %q", strings.Join(args, " "))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func buildCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the recognized command phrases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PHRASE\tACTION\tPARAMS")
			for _, e := range command.DefaultTable().Entries() {
				params := make([]string, 0, len(e.Params))
				for _, p := range e.Params {
					params = append(params, string(p))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Phrase, e.Action, strings.Join(params, ","))
			}
			return w.Flush()
		},
	}
}
