package runs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"catalogcrawl/config"
	"catalogcrawl/oops"
	"catalogcrawl/rundb"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var Runs *cobra.Command

func init() {
	Runs = &cobra.Command{
		Use:   "runs",
		Short: "List recorded crawl runs, newest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := listRuns(cmd.Context(), os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, oops.FullString(err))
				os.Exit(1)
			}
		},
	}
	Runs.Flags().StringVar(&configPath, "config", "", "YAML file overlaid on the environment defaults")
	Runs.Flags().StringVar(&runDbPath, "snapshots", "", "run database path (overrides run_db.path)")
	Runs.Flags().IntVar(&limit, "limit", 20, "")
}

var configPath string
var runDbPath string
var limit int

func listRuns(ctx context.Context, w io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	path := cfg.RunDb.Path
	if runDbPath != "" {
		path = runDbPath
	}
	if path == "" {
		return oops.New("run database is not configured")
	}

	db, err := rundb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	printRuns(w, runs)
	return nil
}

func printRuns(w io.Writer, runs []rundb.Run) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Id", "Started", "Duration", "Pages", "Scraped", "New", "Stop", "Written", "Store"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.Id,
			run.StartedAt.Local().Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second),
			run.PagesVisited,
			run.RecordsScraped,
			run.RecordsNew,
			run.StopReason,
			run.Written,
			run.StoreLocation,
		})
	}
	t.Render()
}
