package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"reportdash/internal/common/fsutil"
)

// DefaultMaxBytes caps a single report document.
const DefaultMaxBytes int64 = 32 << 20

// Fetcher retrieves the raw bytes behind a location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, location string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// DefaultFetcher reads http(s) URLs, file:// URLs and plain paths.
type DefaultFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// Fetch implements Fetcher.
func (f *DefaultFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if p, ok, err := fsutil.LocalPath(location); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return f.readFile(ctx, p)
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.get(ctx, location)
	default:
		return nil, fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
}

func (f *DefaultFetcher) limit() int64 {
	if f.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return f.MaxBytes
}

func (f *DefaultFetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return readLimited(fh, f.limit())
}

func (f *DefaultFetcher) get(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml, application/toml;q=0.9, */*;q=0.5")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Location: location}
	}
	return readLimited(resp.Body, f.limit())
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("document exceeds %d bytes", max)
	}
	return b, nil
}
