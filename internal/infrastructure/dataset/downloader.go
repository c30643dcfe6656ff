package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultBaseURL = "https://huggingface.co/datasets/McAuley-Lab/Amazon-Reviews-2023"

// Downloader fetches category files from the upstream dataset repository
// into the local layout.
type Downloader struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewDownloader wires an HTTP client; baseURL defaults to the upstream
// HuggingFace repository. Review files run into the gigabytes, so the
// default client carries no overall timeout; cancellation comes from the
// request context.
func NewDownloader(client *http.Client, baseURL string, logger *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}
}

// FetchReviews streams the category's review JSONL into the dataset layout
// and returns the local path. The file lands under a temporary name and is
// renamed only once fully written, so an interrupted download never leaves a
// truncated file behind.
func (d *Downloader) FetchReviews(ctx context.Context, category, dataDir string) (string, error) {
	if !IsCategory(category) {
		return "", fmt.Errorf("unknown category %q", category)
	}
	return d.fetchFile(ctx, "raw/review_categories/"+category+".jsonl", ReviewFile(dataDir, category))
}

// FetchMetadata streams the category's product metadata JSONL.
func (d *Downloader) FetchMetadata(ctx context.Context, category, dataDir string) (string, error) {
	if !IsCategory(category) {
		return "", fmt.Errorf("unknown category %q", category)
	}
	return d.fetchFile(ctx, "raw/meta_categories/meta_"+category+".jsonl", MetaFile(dataDir, category))
}

func (d *Downloader) fetchFile(ctx context.Context, remotePath, localPath string) (string, error) {
	fileURL := d.baseURL + "/resolve/main/" + remotePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ProductRanker/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", remotePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned %s for %s", resp.Status, remotePath)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".partial-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("download %s: %w", remotePath, err)
	}

	if err := os.Rename(tmp.Name(), localPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize %s: %w", localPath, err)
	}

	d.logger.Info("category file downloaded", "path", localPath, "bytes", written)
	return localPath, nil
}

// AvailableCategories scrapes the upstream tree page for published review
// files. Useful as a cross-check when the static catalog drifts behind the
// repository.
func (d *Downloader) AvailableCategories(ctx context.Context) ([]string, error) {
	pageURL := d.baseURL + "/tree/main/raw/review_categories"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ProductRanker/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request tree page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %s for tree page", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse tree page: %w", err)
	}

	seen := map[string]struct{}{}
	doc.Find("a[href$='.jsonl']").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := strings.TrimSuffix(href[strings.LastIndex(href, "/")+1:], ".jsonl")
		if name != "" {
			seen[name] = struct{}{}
		}
	})

	categories := make([]string, 0, len(seen))
	for name := range seen {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	return categories, nil
}
