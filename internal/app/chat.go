package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/session"
)

type TurnResult struct {
	SessionID string                  `json:"sessionId"`
	Turn      uint64                  `json:"turn"`
	Reply     string                  `json:"reply"`
	Answer    domain.StructuredAnswer `json:"answer"`
	Places    []domain.ResolvedPlace  `json:"places"`
	Links     []domain.LinkedPlace    `json:"links"`
	Failures  []domain.ResolveFailure `json:"failures,omitempty"`
}

// ChatService runs a whole turn server-side: completion, resolution, matching.
type ChatService struct {
	assistant *AssistantService
	resolver  *PlaceResolver
	sessions  *session.Store
}

func NewChatService(a *AssistantService, r *PlaceResolver, s *session.Store) *ChatService {
	return &ChatService{assistant: a, resolver: r, sessions: s}
}

// Turn answers message within the given session. If a newer turn of the same
// session starts first, Turn returns domain.ErrSuperseded and stores nothing.
func (c *ChatService) Turn(ctx context.Context, sessionID, message string) (TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return TurnResult{}, domain.Invalid("message is required")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ChatService.Turn")
	defer span.End()

	tk := c.sessions.Begin(ctx, sessionID, message)
	defer c.sessions.Release(tk)
	span.SetAttributes(attribute.String("session.id", tk.SessionID), attribute.Int64("session.turn", int64(tk.Turn)))

	superseded := func() bool { return errors.Is(context.Cause(tk.Ctx), domain.ErrSuperseded) }

	ans, err := c.assistant.Ask(tk.Ctx, message, tk.History)
	if err != nil {
		if superseded() {
			return TurnResult{}, domain.ErrSuperseded
		}
		return TurnResult{}, err
	}

	res := TurnResult{
		SessionID: tk.SessionID,
		Turn:      tk.Turn,
		Answer:    ans,
		Places:    []domain.ResolvedPlace{},
		Links:     []domain.LinkedPlace{},
	}
	if ans.Location.Kind == domain.LocationKnown && len(ans.Places()) > 0 {
		batch := c.resolver.ResolveAll(tk.Ctx, ans.Places(), ans.Location.Name, domain.StrategyBiased)
		res.Places = batch.Places
		res.Failures = batch.Failures
		res.Links = LinkPlaces(ans.Places(), batch.Places)
	} else {
		res.Links = LinkPlaces(ans.Places(), nil)
	}
	res.Reply = replyText(ans)

	if superseded() || !c.sessions.Commit(tk, session.Outcome{
		Reply:  res.Reply,
		Answer: res.Answer,
		Places: res.Places,
		Links:  res.Links,
	}) {
		log.Info().Str("session", tk.SessionID).Uint64("turn", tk.Turn).Msg("dropping superseded turn")
		return TurnResult{}, domain.ErrSuperseded
	}
	return res, nil
}

// replyText is the assistant line kept in the transcript.
func replyText(a domain.StructuredAnswer) string {
	switch a.Location.Kind {
	case domain.LocationUnrelated:
		return "I can only help with travel questions."
	case domain.LocationUnspecified:
		if len(a.PlacesOfInterest) == 0 {
			return "Which destination do you have in mind?"
		}
	}
	names := make([]string, 0, len(a.PlacesOfInterest))
	for _, p := range a.PlacesOfInterest {
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return fmt.Sprintf("I couldn't find places to suggest in %s.", a.Location)
	}
	if a.Location.Kind == domain.LocationKnown {
		return fmt.Sprintf("%s: %s", a.Location.Name, strings.Join(names, ", "))
	}
	return strings.Join(names, ", ")
}
