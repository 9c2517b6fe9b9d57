// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes crawl output: an Excel workbook with one sheet per
// keyword and a YAML manifest describing the run.
package report

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/dblp-crawler/internal/crawl"
	"github.com/pdiddy/dblp-crawler/internal/sanitize"
)

// sheetNameLimit is Excel's hard cap on sheet name length.
const sheetNameLimit = 31

var header = []interface{}{"Title", "Authors", "Venue", "Year", "URL"}

// WriteWorkbook writes one sheet per keyword, in the aggregation's keyword
// order. Keywords with no results are skipped with a log line rather than
// producing empty sheets.
func WriteWorkbook(path string, agg *crawl.Aggregation, logger zerolog.Logger) error {
	f := excelize.NewFile()
	defer f.Close()

	wrote := false
	for _, keyword := range agg.Keywords {
		pubs := agg.Results[keyword]
		if len(pubs) == 0 {
			logger.Info().Str("keyword", keyword).Msg("no results to write")
			continue
		}

		name := SheetName(keyword)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("writing header for %q: %w", name, err)
		}

		for i, p := range pubs {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return fmt.Errorf("computing cell for row %d: %w", i+2, err)
			}
			row := []interface{}{p.Title, p.Authors, p.Venue, p.Year, p.URL}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("writing row %d of %q: %w", i+2, name, err)
			}
		}
		wrote = true
	}

	// Drop the default sheet once real ones exist; a workbook must keep
	// at least one sheet.
	if wrote {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	logger.Info().Str("file", path).Int("publications", agg.Total()).Msg("wrote workbook")
	return nil
}

// SheetName derives an Excel-safe sheet name from a keyword, using the
// same sanitization as BibTeX file names.
func SheetName(keyword string) string {
	name := sanitize.Clean(keyword)
	if len(name) > sheetNameLimit {
		name = name[:sheetNameLimit]
	}
	return name
}
