package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/graph"
)

type locateOutput struct {
	Frame    int             `json:"frame"`
	Seconds  float64         `json:"seconds"`
	Shot     *graph.Shot     `json:"shot,omitempty"`
	Sequence *graph.Sequence `json:"sequence,omitempty"`
	Assets   []graph.Asset   `json:"assets"`
}

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var episode string
	var frame string

	cmd := &cobra.Command{
		Use:   "locate <project>",
		Short: "Find the shot and sequence under a timeline frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(frame) == "" {
				return fmt.Errorf("--frame is required")
			}
			sess, _, err := ctx.loadSession(cmd, args[0], episode)
			if err != nil {
				return err
			}
			if err := sess.SetCurrentFrame(frame); err != nil {
				return fmt.Errorf("invalid frame: %w", err)
			}
			current := sess.State().CurrentFrame
			out := locateOutput{
				Frame:   current,
				Seconds: sess.FrameToSeconds(current),
				Assets:  []graph.Asset{},
			}
			if shot, ok := sess.CurrentShot(); ok {
				out.Shot = &shot
				out.Assets = sess.AssetsForShot(shot.ID)
			}
			if seq, ok := sess.CurrentSequence(); ok {
				out.Sequence = &seq
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Frame %d (%.3fs)\n", out.Frame, out.Seconds)
			if out.Shot == nil {
				fmt.Fprintln(stdout, "No shot at this frame")
				return nil
			}
			fmt.Fprintf(stdout, "Shot:     %s (%s), starts at %d\n", out.Shot.Name, out.Shot.ID, out.Shot.StartFrame)
			if out.Sequence != nil {
				fmt.Fprintf(stdout, "Sequence: %s (%s)\n", out.Sequence.Name, out.Sequence.ID)
			}
			names := make([]string, 0, len(out.Assets))
			for _, asset := range out.Assets {
				names = append(names, asset.Name)
			}
			fmt.Fprintf(stdout, "Assets:   %s\n", valueOr(strings.Join(names, ", "), "-"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	cmd.Flags().StringVarP(&frame, "frame", "f", "", "Timeline frame (integer or numeric string)")
	return cmd
}
