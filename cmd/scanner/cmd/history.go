package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan runs",
	Long:  `History prints the most recent runs stored in database.sqlite_path.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "table", "output format: table or json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is not configured")
	}
	rec := newRecorder(cfg)
	defer rec.Close()

	runs, err := rec.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if historyFlags.format == "json" {
		data, err := json.Marshal(runs)
		if err != nil {
			return err
		}
		_, err = out.Write(pretty.Pretty(data))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded scans.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run\tMode\tStarted\tDuration\tSymbols\tResults\tFailures\tTop")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.RunID, r.Mode, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), r.Symbols, r.Results, r.Failures,
			strings.Join(r.Top, ","))
	}
	return tw.Flush()
}
