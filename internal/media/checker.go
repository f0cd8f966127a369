package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultCheckConcurrency = 4
	defaultCheckTimeout     = 5 * time.Second
)

// KnownProductImages lists the catalogue images shipped with the storefront.
var KnownProductImages = []string{
	PlaceholderPath,
	"/images/PD01.jpg", "/images/PD02.jpg", "/images/PD03.jpg", "/images/PD04.jpg",
	"/images/PD05.jpg", "/images/PD06.jpg", "/images/PD07.jpg", "/images/PD08.jpg",
	"/images/PD09.jpg", "/images/PD10.jpg", "/images/PD11.jpg", "/images/PD12.jpg",
}

// HTTPClient matches the subset of http.Client used by Checker.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// CheckResult describes the availability of a single image.
type CheckResult struct {
	Input     string
	URL       string
	Source    string
	Available bool
	Status    int
	Error     string
}

// Checker probes image URLs. Local paths are looked up under Root, absolute
// URLs are probed with a HEAD request.
type Checker struct {
	Root        string
	Resolver    Resolver
	Client      HTTPClient
	Concurrency int
	Limiter     *rate.Limiter
	Timeout     time.Duration
}

// Check resolves each input and reports whether it can be loaded. Results keep the input order.
func (c *Checker) Check(ctx context.Context, inputs []string) ([]CheckResult, error) {
	if c == nil {
		return nil, errors.New("media: checker is nil")
	}
	results := make([]CheckResult, len(inputs))

	limit := c.Concurrency
	if limit <= 0 {
		limit = defaultCheckConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, input := range inputs {
		g.Go(func() error {
			if c.Limiter != nil {
				if err := c.Limiter.Wait(gctx); err != nil {
					return fmt.Errorf("media: wait for probe slot: %w", err)
				}
			}
			results[i] = c.checkOne(gctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) checkOne(ctx context.Context, input string) CheckResult {
	resolved := c.Resolver.Resolve(input)
	result := CheckResult{Input: input, URL: resolved}
	if isAbsoluteURL(resolved) {
		result.Source = "remote"
		c.probeRemote(ctx, &result)
		return result
	}
	result.Source = "local"
	c.probeLocal(&result)
	return result
}

func (c *Checker) probeLocal(result *CheckResult) {
	if !strings.HasPrefix(result.URL, "/") {
		result.Error = "not a servable path"
		return
	}
	cleaned := path.Clean(result.URL)
	full := filepath.Join(c.Root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
	info, err := os.Stat(full)
	switch {
	case err != nil:
		result.Status = http.StatusNotFound
		result.Error = "file not found"
	case info.IsDir():
		result.Status = http.StatusNotFound
		result.Error = "path is a directory"
	default:
		result.Status = http.StatusOK
		result.Available = true
	}
}

func (c *Checker) probeRemote(ctx context.Context, result *CheckResult) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, result.URL, nil)
	if err != nil {
		result.Error = err.Error()
		return
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.Available = resp.StatusCode >= 200 && resp.StatusCode < 400
	if !result.Available {
		result.Error = http.StatusText(resp.StatusCode)
	}
}
