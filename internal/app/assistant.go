package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

// AssistantService turns a travel query into a StructuredAnswer.
type AssistantService struct {
	llm domain.CompletionClient
}

func NewAssistantService(c domain.CompletionClient) *AssistantService {
	return &AssistantService{llm: c}
}

func (s *AssistantService) Ask(ctx context.Context, query string, history []domain.Turn) (domain.StructuredAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return domain.StructuredAnswer{}, domain.Invalid("userPrompt is required")
	}
	for i, t := range history {
		if !t.Role.Valid() {
			return domain.StructuredAnswer{}, domain.Invalid("conversationHistory[%d]: unknown role %q", i, t.Role)
		}
	}

	raw, err := s.llm.Complete(ctx, BuildPrompt(query, history))
	if err != nil {
		return domain.StructuredAnswer{}, fmt.Errorf("completion: %w", err)
	}
	ans, err := Normalize(raw)
	if err != nil {
		log.Warn().Err(err).Int("raw_len", len(raw)).Msg("completion rejected")
		return domain.StructuredAnswer{}, err
	}
	log.Debug().
		Str("location", ans.Location.String()).
		Int("places", len(ans.PlacesOfInterest)).
		Msg("completion normalized")
	return ans, nil
}
