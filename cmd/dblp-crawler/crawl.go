// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dblp-crawler/internal/crawl"
	"github.com/pdiddy/dblp-crawler/internal/dblp"
	"github.com/pdiddy/dblp-crawler/internal/report"
	"github.com/pdiddy/dblp-crawler/internal/secrets"
	"github.com/pdiddy/dblp-crawler/internal/store"
	"github.com/pdiddy/dblp-crawler/pkg/types"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 5
	defaultBackoff   = 5 * time.Second
	defaultDelay     = 5 * time.Second
	defaultMaxHits   = 100
	defaultUserAgent = "dblp-crawler/0.1"

	workbookFile = "results.xlsx"
	manifestFile = "run.yaml"
	databaseFile = "crawl.db"
	bibsDir      = "bibs"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Query DBLP for every keyword x venue x year combination",
	Long: `Crawl enumerates the full product of keywords, years, and venues
(keyword outer, then year, then venue), fetches each combination from the
DBLP search API with bounded retries, and writes an Excel workbook with
one sheet per keyword plus a YAML run manifest. "all" for a venue or year
means no filter on that dimension.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringSlice("keywords", []string{"data condensation", "data distillation"}, "keywords to search for")
	crawlCmd.Flags().StringSlice("venues", []string{"ICLR", "ICML", "NIPS", "AAAI", "KDD", "ICDM", "WSDM", "WWW", "CIKM", "IJCAI", "CVPR", "ICCV", "ECCV"}, "venues to filter by, or \"all\"")
	crawlCmd.Flags().StringSlice("years", []string{"2024", "2023"}, "years to filter by, or \"all\"")
	crawlCmd.Flags().String("outdir", "./results", "output directory for the workbook, manifest, database, and records")
	crawlCmd.Flags().Bool("save-bibtex", false, "download one BibTeX record per publication")
	crawlCmd.Flags().Bool("resume", false, "skip queries already completed in an earlier run")
	crawlCmd.Flags().Bool("pace-all", false, "apply the inter-query delay after empty and failed queries too")
	crawlCmd.Flags().Int("max-retries", defaultRetries, "retry budget per query")
	crawlCmd.Flags().Int("max-hits", defaultMaxHits, "hits requested per query (single page)")
	crawlCmd.Flags().Duration("timeout", defaultTimeout, "per-request transport timeout")
	crawlCmd.Flags().Duration("backoff", defaultBackoff, "initial retry backoff, doubled per consecutive failure")
	crawlCmd.Flags().Duration("delay", defaultDelay, "fixed pacing between successful queries")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	viper.BindPFlags(cmd.Flags())
	logger := newLogger()

	keywords := viper.GetStringSlice("keywords")
	if len(keywords) == 0 {
		return fmt.Errorf("provide at least one keyword")
	}
	venueTokens := viper.GetStringSlice("venues")
	yearTokens := viper.GetStringSlice("years")
	outdir := viper.GetString("outdir")

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	creds, err := secrets.Load(".secrets/")
	if err != nil {
		logger.Warn().Err(err).Msg("could not load contact details")
	}

	fcfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: creds.UserAgent(defaultUserAgent),
		},
		MaxHits:         viper.GetInt("max-hits"),
		MaxRetries:      viper.GetInt("max-retries"),
		Backoff:         viper.GetDuration("backoff"),
		Delay:           viper.GetDuration("delay"),
		PaceAllOutcomes: viper.GetBool("pace-all"),
	}

	bcfg := types.BibtexConfig{
		Enabled: viper.GetBool("save-bibtex"),
		Dir:     filepath.Join(outdir, bibsDir),
	}
	scfg := types.StoreConfig{
		Path:   filepath.Join(outdir, databaseFile),
		Resume: viper.GetBool("resume"),
	}
	rcfg := types.ReportConfig{
		WorkbookPath: filepath.Join(outdir, workbookFile),
		ManifestPath: filepath.Join(outdir, manifestFile),
	}

	client := &http.Client{Timeout: fcfg.Timeout}
	fetcher := dblp.NewClient(client, fcfg, logger)

	venues := parseFilters(venueTokens)
	years := parseFilters(yearTokens)

	history, err := store.Open(scfg.Path)
	if err != nil {
		return fmt.Errorf("opening crawl history: %w", err)
	}
	defer history.Close()

	cfg := crawl.Config{
		Fetcher: fetcher,
		History: history,
		Resume:  scfg.Resume,
		Logger:  logger,
	}
	if bcfg.Enabled {
		bib, err := crawl.NewBibtexDownloader(client, bcfg.Dir, fcfg.UserAgent, logger)
		if err != nil {
			return fmt.Errorf("preparing bibtex downloads: %w", err)
		}
		cfg.Bibtex = bib
	}

	agg := crawl.New(cfg).Run(cmd.Context(), keywords, venues, years)

	if err := report.WriteWorkbook(rcfg.WorkbookPath, agg, logger); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	params := report.RunParams{
		Keywords:   keywords,
		Venues:     venueTokens,
		Years:      yearTokens,
		SaveBibtex: bcfg.Enabled,
	}
	if err := report.WriteManifest(rcfg.ManifestPath, params, agg); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Crawl finished: %d publications across %d keywords, workbook at %s\n",
		agg.Total(), len(keywords), rcfg.WorkbookPath)
	return nil
}

// parseFilters maps the user-facing tokens (including "all") to filters.
func parseFilters(tokens []string) []dblp.Filter {
	filters := make([]dblp.Filter, len(tokens))
	for i, t := range tokens {
		filters[i] = dblp.ParseFilter(t)
	}
	return filters
}
