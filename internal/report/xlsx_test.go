// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/dblp-crawler/internal/crawl"
	"github.com/pdiddy/dblp-crawler/pkg/types"
)

func sampleAggregation() *crawl.Aggregation {
	agg := crawl.NewAggregation([]string{"data distillation", "pruning"})
	agg.Add("data distillation", []types.Publication{
		{Title: "Paper A", Authors: "Ann, Ben", Venue: "ICLR", Year: "2024", URL: "https://dblp.org/rec/a"},
		{Title: "Paper B", Authors: "Cid", Venue: "CVPR", Year: "2023"},
	})
	agg.Add("pruning", []types.Publication{
		{Title: "Paper C", Authors: "Dee", Venue: "KDD", Year: "2024"},
	})
	return agg
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(path, sampleAggregation(), zerolog.Nop()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"data distillation", "pruning"}, f.GetSheetList())

	rows, err := f.GetRows("data distillation")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Title", "Authors", "Venue", "Year", "URL"}, rows[0])
	assert.Equal(t, []string{"Paper A", "Ann, Ben", "ICLR", "2024", "https://dblp.org/rec/a"}, rows[1])
	assert.Equal(t, "Paper B", rows[2][0])

	rows, err = f.GetRows("pruning")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Paper C", rows[1][0])
}

func TestWriteWorkbookSkipsEmptyKeywords(t *testing.T) {
	agg := crawl.NewAggregation([]string{"hits", "misses"})
	agg.Add("hits", []types.Publication{{Title: "Only"}})

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(path, agg, zerolog.Nop()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"hits"}, f.GetSheetList())
}

func TestWriteWorkbookNoResultsKeepsDefaultSheet(t *testing.T) {
	agg := crawl.NewAggregation([]string{"nothing"})

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(path, agg, zerolog.Nop()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "pruning", "pruning"},
		{"forbidden characters", "graphs: a/b", "graphs_ a_b"},
		{"truncated to limit", strings.Repeat("x", 40), strings.Repeat("x", 31)},
		{"exactly at limit", strings.Repeat("y", 31), strings.Repeat("y", 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.input))
		})
	}
}
