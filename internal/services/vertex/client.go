// Package vertex wraps the genai SDK behind the two narrow capabilities the
// pipeline needs: text generation (Gemini) and image generation (Imagen).
package vertex

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/phambaophuc/packshot-composer/internal/config"
)

type Client struct {
	client      *genai.Client
	geminiModel string
	imagenModel string
}

func NewClient(ctx context.Context, cfg config.VertexConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: cfg.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client:      client,
		geminiModel: cfg.GeminiModel,
		imagenModel: cfg.ImagenModel,
	}, nil
}

// GenerateText runs a single text completion against the Gemini model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.geminiModel, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateImages asks the Imagen model for count images with the given
// aspect ratio and returns their raw bytes. An empty slice is a valid
// result: the model rejected the prompt (typically a safety filter).
func (c *Client) GenerateImages(ctx context.Context, prompt string, count int, aspectRatio string) ([][]byte, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imagenModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, err
	}

	images := make([][]byte, 0, len(resp.GeneratedImages))
	for _, gen := range resp.GeneratedImages {
		if gen.Image == nil {
			continue
		}
		images = append(images, gen.Image.ImageBytes)
	}
	return images, nil
}

// IsUnavailable reports whether err is a transient overload condition that
// is safe to retry.
func IsUnavailable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusServiceUnavailable || apiErr.Code == http.StatusTooManyRequests
}

// StatusCode extracts the upstream HTTP code from a genai error, or zero if
// the error carries none.
func StatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
