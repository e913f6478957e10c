package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects offered by the data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.newStore()
			if err != nil {
				return err
			}
			items, err := store.FetchProjectList(commandContextOrBackground(cmd))
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				names := make([]string, 0, len(item.Episodes))
				for _, ep := range item.Episodes {
					names = append(names, ep.Name)
				}
				rows = append(rows, []string{item.ID, item.Name, strings.Join(names, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{textCol("ID"), textCol("Name"), textCol("Episodes")}, rows))
			return nil
		},
	}
}
