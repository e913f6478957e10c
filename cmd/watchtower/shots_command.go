package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/graph"
)

func newShotsCommand(ctx *commandContext) *cobra.Command {
	var episode string

	cmd := &cobra.Command{
		Use:   "shots <project>",
		Short: "List shots in timeline order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := ctx.loadSession(cmd, args[0], episode)
			if err != nil {
				return err
			}
			shots := sess.Shots()
			if ctx.jsonOutput() {
				return writeJSON(cmd, shots)
			}
			if len(shots) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shots")
				return nil
			}
			sequences := sess.Sequences()
			rows := make([][]string, 0, len(shots))
			for _, shot := range shots {
				seqName := shot.SequenceID
				if seq, ok := graph.FindSequence(sequences, shot.SequenceID); ok && seq.Name != "" {
					seqName = seq.Name
				}
				rows = append(rows, []string{
					shot.ID,
					shot.Name,
					seqName,
					strconv.Itoa(shot.StartFrame),
					strconv.FormatFloat(shot.DurationSeconds, 'f', 2, 64),
					strings.Join(shot.AssetIDs, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{textCol("ID"), textCol("Name"), textCol("Sequence"), numCol("Start"), numCol("Seconds"), textCol("Assets")},
				rows,
				fmt.Sprintf("%d shots", len(rows)),
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	return cmd
}
