// Package fetcher downloads the product packshot and normalizes it to an
// alpha-capable raster.
package fetcher

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/pipeline"
)

type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch downloads the packshot and converts it to NRGBA, adding an opaque
// alpha channel when the source has none. Failures are surfaced immediately
// as bad input; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*image.NRGBA, error) {
	f.logger.Info("Downloading packshot", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pipeline.AssetFetch("Unable to download packshot", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Packshot download failed", zap.Error(err))
		return nil, pipeline.AssetFetch("Unable to download packshot", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Error("Packshot download failed", zap.Int("status", resp.StatusCode))
		return nil, pipeline.AssetFetch("Unable to download packshot",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, pipeline.AssetFetch("Unable to decode packshot", err)
	}

	return imaging.Clone(img), nil
}
