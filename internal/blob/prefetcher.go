// Package blob implements the image blob cache and its prefetcher. The
// cache is a named directory of files keyed by the SHA-256 of the request
// URL, fully independent of the metadata cache: banner metadata freshness
// and blob presence are allowed to diverge, and warmup reconciles them by
// calling EnsureCached on every run.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mezoapp/salon-core/internal/metrics"
)

// maxBlobBytes caps a single fetched image. Anything larger is a content
// error, not a candidate for the cache.
const maxBlobBytes = 10 << 20

// Fetcher retrieves the bytes behind a URL. The HTTP implementation is the
// production one; tests substitute a counting stub.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches blobs over plain HTTP GET.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBlobBytes {
		return nil, fmt.Errorf("fetch %s: blob exceeds %d bytes", url, maxBlobBytes)
	}
	return body, nil
}

// Prefetcher ensures a set of URLs is present in the blob cache directory.
type Prefetcher struct {
	dir     string
	fetcher Fetcher
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option customizes a Prefetcher.
type Option func(*Prefetcher)

// WithLimiter bounds outbound fetches. rps <= 0 disables the limit.
func WithLimiter(rps float64, burst int) Option {
	return func(p *Prefetcher) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger attaches a component logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Prefetcher) { p.log = log }
}

// New creates a Prefetcher over the named cache directory.
func New(dir string, fetcher Fetcher, opts ...Option) *Prefetcher {
	p := &Prefetcher{dir: dir, fetcher: fetcher}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Has reports whether the URL's blob is already cached.
func (p *Prefetcher) Has(url string) bool {
	_, err := os.Stat(p.path(url))
	return err == nil
}

// EnsureCached fans out over the given URLs and fetches every one missing
// from the cache. Per-URL failures are logged and skipped so one bad banner
// can never block warmup; the call always returns the number of blobs
// actually fetched and never an error. Repeated calls with the same URL set
// perform no redundant network work.
func (p *Prefetcher) EnsureCached(ctx context.Context, urls []string) int {
	if len(urls) == 0 {
		return 0
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		p.log.Error().Err(err).Str("dir", p.dir).Msg("blob cache dir unavailable")
		return 0
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		fetched int
	)
	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}

		if p.Has(url) {
			metrics.PrefetchFetches.WithLabelValues("cached").Inc()
			continue
		}

		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if err := p.fetchOne(ctx, url); err != nil {
				metrics.PrefetchFetches.WithLabelValues("error").Inc()
				p.log.Warn().Err(err).Str("url", url).Msg("blob prefetch skipped")
				return
			}
			metrics.PrefetchFetches.WithLabelValues("fetched").Inc()
			mu.Lock()
			fetched++
			mu.Unlock()
		}(url)
	}
	wg.Wait()
	return fetched
}

// fetchOne downloads a single blob and installs it atomically, so a crash
// mid-write never leaves a truncated file posing as a cached blob.
func (p *Prefetcher) fetchOne(ctx context.Context, url string) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	dst := p.path(url)
	tmp, err := os.CreateTemp(p.dir, "blob-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Wipe removes the entire blob cache directory. Invoked by the store when
// the cache schema version changes.
func (p *Prefetcher) Wipe() error {
	return os.RemoveAll(p.dir)
}

// path maps a URL to its cache file.
func (p *Prefetcher) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(p.dir, hex.EncodeToString(sum[:]))
}
