package repositories

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

const (
	maxPosterBytes    = 10 << 20
	posterFetchers    = 4
	posterHTTPTimeout = 30 * time.Second
)

// PosterCache downloads poster images into a [PosterRepository].
//
// Caching is best effort: failures are logged and skipped, never returned.
type PosterCache struct {
	repo       *PosterRepository
	httpClient *http.Client
	logger     *log.Logger
}

// NewPosterCache creates a PosterCache. A nil client uses one with a 30s timeout.
func NewPosterCache(repo *PosterRepository, client *http.Client, logger *log.Logger) *PosterCache {
	if client == nil {
		client = &http.Client{Timeout: posterHTTPTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PosterCache{repo: repo, httpClient: client, logger: logger}
}

// CacheImages fetches every url not already cached and stores those that are images.
// Returns the number of posters newly stored.
func (c *PosterCache) CacheImages(ctx context.Context, urls []string) int {
	var stored atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(posterFetchers)

	for _, url := range dedupe(urls) {
		g.Go(func() error {
			ok, err := c.cacheOne(ctx, url)
			if err != nil {
				c.logger.Warn("failed to cache poster", "url", url, "error", err)
				return nil
			}
			if ok {
				stored.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(stored.Load())
}

// Fetch returns the cached poster for url, downloading and storing it on a miss.
func (c *PosterCache) Fetch(ctx context.Context, url string) (*Poster, error) {
	if p, err := c.repo.Get(url); err == nil {
		return p, nil
	}
	if _, err := c.cacheOne(ctx, url); err != nil {
		return nil, err
	}
	return c.repo.Get(url)
}

func (c *PosterCache) cacheOne(ctx context.Context, url string) (bool, error) {
	if has, err := c.repo.Has(url); err == nil && has {
		return false, nil
	}

	data, err := c.download(ctx, url)
	if err != nil {
		return false, err
	}

	contentType := sniffImageType(data)
	if contentType == "" {
		return false, fmt.Errorf("%w: %s is not an image", shared.ErrInvalidInput, url)
	}

	if err := c.repo.Put(Poster{URL: url, ContentType: contentType, Data: data}); err != nil {
		return false, err
	}
	return true, nil
}

func (c *PosterCache) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPosterBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// sniffImageType returns the detected image content type, or "" when data is not an image.
func sniffImageType(data []byte) string {
	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "image/") {
		return detected.String()
	}
	return ""
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
