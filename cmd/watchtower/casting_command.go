package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/casting"
)

func newCastingCommand(ctx *commandContext) *cobra.Command {
	var episode string

	cmd := &cobra.Command{
		Use:   "casting <project>",
		Short: "Show which assets appear in each shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := ctx.loadSession(cmd, args[0], episode)
			if err != nil {
				return err
			}
			shots := sess.Shots()
			if ctx.jsonOutput() {
				links := make([]casting.Link, 0, len(shots))
				for _, shot := range shots {
					links = append(links, casting.Link{ShotID: shot.ID, AssetIDs: shot.AssetIDs})
				}
				return writeJSON(cmd, links)
			}
			rows := make([][]string, 0, len(shots))
			for _, shot := range shots {
				assets := sess.AssetsForShot(shot.ID)
				names := make([]string, 0, len(assets))
				for _, asset := range assets {
					names = append(names, asset.Name)
				}
				rows = append(rows, []string{shot.ID, shot.Name, strings.Join(names, ", ")})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shots")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{textCol("Shot"), textCol("Name"), textCol("Assets")}, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	return cmd
}
