// Package prompt turns the caller's marketing inputs into a single Imagen
// prompt via a Gemini meta-prompt.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/pipeline"
	"github.com/phambaophuc/packshot-composer/internal/retry"
	"github.com/phambaophuc/packshot-composer/internal/services/vertex"
)

// The composition must keep the centre foreground empty for the packshot
// paste and must not describe the product itself.
const metaPromptTemplate = `You are an expert prompt engineer for a text-to-image AI model. Combine the
following details into a single, highly descriptive prompt. **Requirements:**
1. Leave a clear, empty space in the centre foreground suitable for pasting a
   product packshot later. Do *not* describe the product itself.
2. Render this text clearly within the scene (without obscuring the empty
   space): '%s'.
3. Overall style: %s.

BACKGROUND DETAILS:
- %s

Output only the final prompt.`

// TextGenerator is the LLM capability the synthesizer depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Synthesizer struct {
	gen    TextGenerator
	retry  retry.Config
	logger *zap.Logger
}

func NewSynthesizer(gen TextGenerator, retryCfg retry.Config, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{gen: gen, retry: retryCfg, logger: logger}
}

// Synthesize builds the meta-prompt, invokes Gemini with retry on transient
// unavailability, and normalizes the model output to a single line.
func (s *Synthesizer) Synthesize(ctx context.Context, generalDesc, backgroundDesc, copyText string) (string, error) {
	metaPrompt := fmt.Sprintf(metaPromptTemplate, copyText, generalDesc, backgroundDesc)

	s.logger.Info("Generating Gemini prompt", zap.String("general_description", generalDesc))

	raw, err := retry.Do(s.retry, s.logger, func() (string, error) {
		return s.gen.GenerateText(ctx, metaPrompt)
	})
	if err != nil {
		return "", pipeline.Upstream("Vertex AI service error.", vertex.StatusCode(err), err)
	}

	clean := strings.ReplaceAll(strings.TrimSpace(raw), "\n", " ")
	s.logger.Info("Gemini prompt generated", zap.String("prompt", clean))
	return clean, nil
}
