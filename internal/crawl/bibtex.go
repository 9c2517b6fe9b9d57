// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dblp-crawler/internal/sanitize"
)

// BibtexDownloader fetches one citation record per publication, best
// effort. A single attempt per record: it shares the transport timeout but
// deliberately not the search client's retry machine, so a dead record URL
// cannot stall the batch.
type BibtexDownloader struct {
	http      *http.Client
	dir       string
	userAgent string
	log       zerolog.Logger
}

// NewBibtexDownloader creates the download directory and returns the
// downloader.
func NewBibtexDownloader(h *http.Client, dir, userAgent string, logger zerolog.Logger) (*BibtexDownloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bibtex directory %s: %w", dir, err)
	}
	return &BibtexDownloader{http: h, dir: dir, userAgent: userAgent, log: logger}, nil
}

// Fetch downloads the citation record at url and stores it under a
// sanitized version of title. Every failure is logged and swallowed.
func (d *BibtexDownloader) Fetch(ctx context.Context, url, title string) {
	if url == "" {
		d.log.Debug().Str("title", title).Msg("no record URL, skipping bibtex")
		return
	}

	path := filepath.Join(d.dir, sanitize.Clean(title)+".bib")
	if err := d.download(ctx, url, path); err != nil {
		d.log.Warn().Str("title", title).Err(err).Msg("bibtex download failed, skipping")
		return
	}
	d.log.Info().Str("file", path).Msg("saved bibtex")
}

// download writes the response body through a temp file and renames on
// success, so an interrupted download never leaves a truncated record.
func (d *BibtexDownloader) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(d.dir, ".bibtex-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
