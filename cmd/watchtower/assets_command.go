package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/graph"
)

func newAssetsCommand(ctx *commandContext) *cobra.Command {
	var episode string
	var match string

	cmd := &cobra.Command{
		Use:   "assets <project>",
		Short: "List assets and the shots they are cast in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := ctx.loadSession(cmd, args[0], episode)
			if err != nil {
				return err
			}
			assets := graph.MatchAssets(sess.Assets(), match)
			if ctx.jsonOutput() {
				return writeJSON(cmd, assets)
			}
			if len(assets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assets")
				return nil
			}
			types := sess.Project().AssetTypes
			rows := make([][]string, 0, len(assets))
			for _, asset := range assets {
				typeName := asset.AssetTypeID
				for _, t := range types {
					if t.ID == asset.AssetTypeID {
						typeName = t.Name
						break
					}
				}
				rows = append(rows, []string{asset.ID, asset.Name, typeName, strconv.Itoa(len(asset.ShotIDs))})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{textCol("ID"), textCol("Name"), textCol("Type"), numCol("Shots")},
				rows,
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only assets whose name contains this text (case-insensitive)")
	return cmd
}
