// Package background renders the square scene image from a synthesized
// prompt via the Imagen model.
package background

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/pipeline"
	"github.com/phambaophuc/packshot-composer/internal/retry"
	"github.com/phambaophuc/packshot-composer/internal/services/vertex"
)

// ImageGenerator is the text-to-image capability the generator depends on.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, count int, aspectRatio string) ([][]byte, error)
}

type Generator struct {
	gen    ImageGenerator
	retry  retry.Config
	logger *zap.Logger
}

func NewGenerator(gen ImageGenerator, retryCfg retry.Config, logger *zap.Logger) *Generator {
	return &Generator{gen: gen, retry: retryCfg, logger: logger}
}

// Generate requests exactly one 1:1 image and decodes it. A zero-image
// result is a request-level rejection (safety filter), not a transient
// fault, and is never retried.
func (g *Generator) Generate(ctx context.Context, prompt string) (image.Image, error) {
	g.logger.Info("Generating background with Imagen")

	images, err := retry.Do(g.retry, g.logger, func() ([][]byte, error) {
		return g.gen.GenerateImages(ctx, prompt, 1, "1:1")
	})
	if err != nil {
		return nil, pipeline.Upstream("Vertex AI service error.", vertex.StatusCode(err), err)
	}

	if len(images) == 0 {
		return nil, pipeline.EmptyGeneration("Image generation returned no result; the prompt may have been rejected")
	}

	img, _, err := image.Decode(bytes.NewReader(images[0]))
	if err != nil {
		return nil, pipeline.Internal("Internal server error.", fmt.Errorf("failed to decode generated image: %w", err))
	}

	return img, nil
}
