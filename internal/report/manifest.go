// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dblp-crawler/internal/crawl"
)

// Manifest is the on-disk YAML record of one crawl run: the parameters
// that produced the workbook plus per-keyword counts, so a run can be
// audited or reproduced later without opening the spreadsheet.
type Manifest struct {
	Run       RunParams      `yaml:"run"`
	Sheets    []SheetSummary `yaml:"sheets"`
	Total     int            `yaml:"total"`
	Timestamp time.Time      `yaml:"timestamp"`
}

// RunParams stores the crawl parameters in a serializable form. Venues and
// years keep the user-facing form, including the "all" wildcard token.
type RunParams struct {
	Keywords   []string `yaml:"keywords"`
	Venues     []string `yaml:"venues"`
	Years      []string `yaml:"years"`
	SaveBibtex bool     `yaml:"save_bibtex"`
}

// SheetSummary records how many results one keyword produced.
type SheetSummary struct {
	Keyword string `yaml:"keyword"`
	Results int    `yaml:"results"`
}

// WriteManifest saves the run record next to the workbook.
func WriteManifest(path string, params RunParams, agg *crawl.Aggregation) error {
	m := Manifest{
		Run:       params,
		Total:     agg.Total(),
		Timestamp: time.Now(),
	}
	for _, keyword := range agg.Keywords {
		m.Sheets = append(m.Sheets, SheetSummary{
			Keyword: keyword,
			Results: len(agg.Results[keyword]),
		})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a previously written run manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
