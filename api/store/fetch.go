package store

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openml/openml-go/config"
	"github.com/pkg/errors"
)

const maxFetchSize = 512 << 20

// HTTPFetcher returns a Fetcher that downloads dataset urls with the configured timeout
// and retry policy.
func HTTPFetcher(cfg *config.Config) Fetcher {
	env := cfg.Environment
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = env.RetryMax
	client.RetryWaitMin = time.Duration(env.RetryWaitMinMs) * time.Millisecond
	client.RetryWaitMax = time.Duration(env.RetryWaitMaxMs) * time.Millisecond
	client.HTTPClient.Timeout = env.Timeout()

	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid url %s", url)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch %s", url)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Errorf("fetching %s returned %s", url, resp.Status)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", url)
		}
		return data, nil
	}
}
