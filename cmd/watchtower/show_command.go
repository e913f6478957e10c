package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/graph"
	"github.com/satishgoda/watchtower/internal/logging"
	"github.com/satishgoda/watchtower/internal/session"
)

type showOutput struct {
	Report      *session.Report      `json:"report"`
	Project     graph.Project        `json:"project"`
	Edit        *graph.Edit          `json:"edit,omitempty"`
	Player      graph.PlayerOptions  `json:"player"`
	TotalFrames int                  `json:"total_frames"`
	FrameOffset int                  `json:"frame_offset"`
	Counts      map[string]int       `json:"counts"`
	Diagnostics []logging.Diagnostic `json:"diagnostics"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var episode string

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Load a project and summarise the assembled data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, report, err := ctx.loadSession(cmd, args[0], episode)
			if err != nil {
				return err
			}
			project := sess.Project()
			out := showOutput{
				Report:      report,
				Project:     project,
				Player:      sess.PlayerOptions(),
				TotalFrames: sess.TotalFrames(),
				FrameOffset: sess.FrameOffset(),
				Counts: map[string]int{
					"sequences": len(sess.Sequences()),
					"shots":     len(sess.Shots()),
					"assets":    len(sess.Assets()),
					"edits":     len(sess.Edits()),
				},
				Diagnostics: sess.Diagnostics(),
			}
			if edit, ok := sess.Edit(); ok {
				out.Edit = &edit
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			var lines []string
			lines = append(lines, renderSectionHeader("Pipeline", colorize)...)
			for _, res := range report.Stages {
				lines = append(lines, stageStatusLine(res, colorize))
			}
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Project", colorize)...)
			lines = append(lines,
				fmt.Sprintf("  Name:        %s (%s)", project.Name, project.ID),
				fmt.Sprintf("  Frame rate:  %s fps", strconv.FormatFloat(project.FPS, 'f', -1, 64)),
				fmt.Sprintf("  Ratio:       %s", valueOr(string(project.Ratio), "-")),
				fmt.Sprintf("  Resolution:  %s", valueOr(project.Resolution, "-")),
				fmt.Sprintf("  Episodic:    %s", yesNo(project.Episodic())),
				fmt.Sprintf("  Sequences:   %d", out.Counts["sequences"]),
				fmt.Sprintf("  Shots:       %d", out.Counts["shots"]),
				fmt.Sprintf("  Assets:      %d", out.Counts["assets"]),
			)
			if out.Edit != nil {
				lines = append(lines, fmt.Sprintf("  Edit:        %s (%d frames from %d, %s)",
					out.Edit.SourceName, out.TotalFrames, out.FrameOffset, out.Edit.SourceType))
			} else {
				lines = append(lines, "  Edit:        none")
			}
			lines = append(lines, "")

			if len(project.Team) > 0 {
				lines = append(lines, renderSectionHeader("Team", colorize)...)
				for _, user := range project.Team {
					lines = append(lines, fmt.Sprintf("  %s  %s", swatch(user.Color, colorize), user.Name))
				}
				lines = append(lines, "")
			}
			if len(project.Episodes) > 0 {
				lines = append(lines, renderSectionHeader("Episodes", colorize)...)
				for _, ep := range project.Episodes {
					marker := " "
					if ep.ID == sess.EpisodeID() {
						marker = "*"
					}
					lines = append(lines, fmt.Sprintf(" %s%s  %s  [%s]", marker, ep.ID, ep.Name, strings.Join(ep.SequenceIDs, ", ")))
				}
				lines = append(lines, "")
			}
			if len(out.Diagnostics) > 0 {
				lines = append(lines, renderSectionHeader("Diagnostics", colorize)...)
				for _, d := range out.Diagnostics {
					kind := statusWarn
					if d.Level == "ERROR" {
						kind = statusError
					}
					label := valueOr(d.Stage, "session")
					lines = append(lines, renderStatusLine(label, kind, diagnosticText(d), colorize))
				}
			}
			fmt.Fprintln(stdout, strings.TrimRight(strings.Join(lines, "\n"), "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	return cmd
}

func diagnosticText(d logging.Diagnostic) string {
	if d.Error == "" {
		return d.Message
	}
	return d.Message + ": " + d.Error
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
