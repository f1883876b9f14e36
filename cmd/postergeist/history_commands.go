package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postergeist/internal/history"
	"postergeist/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the post history log",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryCheckCommand(ctx))

	return historyCmd
}

func (c *commandContext) openHistory() (*history.Log, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	hist, err := history.Open(cfg.Paths.HistoryPath, logging.NewNop())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return hist, nil
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posted images",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := hist.Entries()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No posts recorded in %s\n", hist.Path())
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, record := range entries {
				rows = append(rows, []string{
					record.ImageName(),
					recordString(record, "posted_at"),
					recordString(record, "location"),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Image", "Posted", "Location"}, rows, nil))
			fmt.Fprintf(out, "%d posts recorded in %s\n", hist.Count(), hist.Path())
			return nil
		},
	}
}

func newHistoryCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <image-name>",
		Short: "Report whether an image has already been posted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}

			name := args[0]
			out := cmd.OutOrStdout()
			if hist.Contains(name) {
				fmt.Fprintf(out, "%s: posted\n", name)
			} else {
				fmt.Fprintf(out, "%s: not posted\n", name)
			}
			return nil
		},
	}
}

func recordString(record history.Record, key string) string {
	if value, ok := record[key].(string); ok {
		return value
	}
	return ""
}
