package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTeamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "List the configured workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := buildTeam(a.cfg, a.logger)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tOPTIONAL\tDESCRIPTION")
			for _, mc := range t.configs {
				fmt.Fprintf(tw, "%s\t%t\t%s\n", mc.Name, mc.IsOptional, mc.Description)
			}
			return tw.Flush()
		},
	}
}
