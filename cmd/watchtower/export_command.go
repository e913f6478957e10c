package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/satishgoda/watchtower/internal/dataurls"
	"github.com/satishgoda/watchtower/internal/snapshot"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var episode string
	var outDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write the assembled project as a static data tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.newStore()
			if err != nil {
				return err
			}
			runCtx := commandContextOrBackground(cmd)
			report, err := store.InitWithProject(runCtx, args[0], episode)
			if err != nil {
				return err
			}
			if failed := report.Failed(); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, res := range failed {
					names = append(names, res.Stage)
				}
				return fmt.Errorf("refusing to export incomplete project: stages failed: %s", strings.Join(names, ", "))
			}

			projects, err := store.FetchProjectList(runCtx)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: project list unavailable, exporting %s only: %v\n", args[0], err)
				projects = nil
			}

			writer, err := snapshot.NewWriter(outDir,
				snapshot.WithResolver(dataurls.FromConfig(cfg)),
				snapshot.WithWorkers(workers),
				snapshot.WithLogger(ctx.log()),
			)
			if err != nil {
				return err
			}
			result, err := writer.Write(runCtx, store.Current(), projects)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}

			rows := make([][]string, 0, len(result.Files))
			var total uint64
			for _, file := range result.Files {
				total += uint64(file.Bytes)
				rows = append(rows, []string{file.Path, humanize.Bytes(uint64(file.Bytes)), file.SHA256[:12]})
			}
			stdout := cmd.OutOrStdout()
			fmt.Fprintln(stdout, renderTable(
				[]column{textCol("File"), numCol("Size"), textCol("SHA256")},
				rows,
				fmt.Sprintf("%d files", len(rows)), humanize.Bytes(total),
			))
			fmt.Fprintf(stdout, "Exported %s to %s (%s in %d files)\n",
				result.ProjectID, result.Dir, humanize.Bytes(total), len(result.Files))
			return nil
		},
	}
	cmd.Flags().StringVarP(&episode, "episode", "e", "", "Scope to an episode id")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent file writes (default: number of CPUs)")
	return cmd
}
