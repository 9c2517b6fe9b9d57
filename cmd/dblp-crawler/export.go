// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dblp-crawler/internal/crawl"
	"github.com/pdiddy/dblp-crawler/internal/report"
	"github.com/pdiddy/dblp-crawler/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Rebuild the workbook from crawl history without re-fetching",
	Long: `Export reads the publications recorded in the crawl history database
and writes them to an Excel workbook, one sheet per keyword. Useful after
an interrupted run, or to regenerate a report that was deleted.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db", "./results/crawl.db", "crawl history database")
	exportCmd.Flags().String("out", "./results/results.xlsx", "workbook to write")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	dbPath, _ := cmd.Flags().GetString("db")
	outPath, _ := cmd.Flags().GetString("out")

	history, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening crawl history: %w", err)
	}
	defer history.Close()

	keywords, err := history.Keywords()
	if err != nil {
		return fmt.Errorf("listing keywords: %w", err)
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no publications recorded in %s", dbPath)
	}

	agg := crawl.NewAggregation(keywords)
	for _, keyword := range keywords {
		pubs, err := history.Publications(keyword)
		if err != nil {
			return fmt.Errorf("loading publications for %q: %w", keyword, err)
		}
		agg.Add(keyword, pubs)
	}

	if err := report.WriteWorkbook(outPath, agg, logger); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Exported %d publications across %d keywords to %s\n",
		agg.Total(), len(keywords), outPath)
	return nil
}
