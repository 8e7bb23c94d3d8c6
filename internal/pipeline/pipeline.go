// Package pipeline sequences the generative stages of one request:
// prompt synthesis, background generation, packshot fetch, compositing and
// publishing. It is the single sequencing function both response-delivery
// modes (buffered and streamed) are layered on.
package pipeline

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/models"
)

type PromptSynthesizer interface {
	Synthesize(ctx context.Context, generalDesc, backgroundDesc, copyText string) (string, error)
}

type BackgroundGenerator interface {
	Generate(ctx context.Context, prompt string) (image.Image, error)
}

type AssetFetcher interface {
	Fetch(ctx context.Context, url string) (*image.NRGBA, error)
}

type ResultPublisher interface {
	Publish(ctx context.Context, img image.Image) (string, error)
}

// Result is the terminal artifact of a successful request.
type Result struct {
	ImageURL string
	Prompt   string
}

// Compositor is the pure merge step, injected so tests can observe its
// inputs.
type Compositor func(background image.Image, packshot *image.NRGBA) *image.NRGBA

type Pipeline struct {
	prompts    PromptSynthesizer
	background BackgroundGenerator
	fetcher    AssetFetcher
	composite  Compositor
	publisher  ResultPublisher
	logger     *zap.Logger
}

func New(
	prompts PromptSynthesizer,
	background BackgroundGenerator,
	fetcher AssetFetcher,
	composite Compositor,
	publisher ResultPublisher,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		prompts:    prompts,
		background: background,
		fetcher:    fetcher,
		composite:  composite,
		publisher:  publisher,
		logger:     logger,
	}
}

// Run executes the stages in order, short-circuiting on the first failure.
// Nothing partial is published when a stage fails.
func (p *Pipeline) Run(ctx context.Context, req *models.GenerateRequest) (*Result, *Error) {
	prompt, err := p.prompts.Synthesize(ctx, req.GeneralDescription, req.BackgroundDescription, req.Copy)
	if err != nil {
		return nil, p.fail("prompt synthesis", err)
	}

	bg, err := p.background.Generate(ctx, prompt)
	if err != nil {
		return nil, p.fail("background generation", err)
	}

	packshot, err := p.fetcher.Fetch(ctx, req.PackshotURL)
	if err != nil {
		return nil, p.fail("packshot fetch", err)
	}

	final := p.composite(bg, packshot)

	url, err := p.publisher.Publish(ctx, final)
	if err != nil {
		return nil, p.fail("publish", err)
	}

	return &Result{ImageURL: url, Prompt: prompt}, nil
}

func (p *Pipeline) fail(stage string, err error) *Error {
	perr := Classify(err)
	p.logger.Error("Pipeline stage failed",
		zap.String("stage", stage),
		zap.String("kind", perr.Kind.String()),
		zap.Int("status", perr.HTTPStatus()),
		zap.Error(err),
	)
	return perr
}
