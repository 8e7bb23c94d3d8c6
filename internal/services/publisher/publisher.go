// Package publisher encodes the composited raster and writes it to object
// storage under a collision-free name.
package publisher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/pipeline"
)

const contentType = "image/png"

// ObjectStore writes a named blob and returns its durable public URL.
type ObjectStore interface {
	Write(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type Publisher struct {
	store  ObjectStore
	logger *zap.Logger
}

func NewPublisher(store ObjectStore, logger *zap.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Publish PNG-encodes img and stores it as generated-image-<uuid>.png.
// Storage failures surface directly; they are not retried.
func (p *Publisher) Publish(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", pipeline.Internal("Internal server error.", fmt.Errorf("failed to encode result: %w", err))
	}

	name := fmt.Sprintf("generated-image-%s.png", uuid.New())

	url, err := p.store.Write(ctx, name, contentType, buf.Bytes())
	if err != nil {
		return "", pipeline.Publish("Failed to store generated image", err)
	}

	p.logger.Info("Uploaded image", zap.String("url", url))
	return url, nil
}
