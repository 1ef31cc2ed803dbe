package app

import (
	"strings"

	"github.com/xyd945/travel-ai-agent/internal/domain"
)

const answerSchema = `{
  "location": "City, Country",
  "placesOfInterest": [
    {
      "name": "Exact place name",
      "description": "One or two sentences on why it fits the request",
      "type": "attraction | restaurant | hotel | shopping | entertainment",
      "priceRange": "budget | moderate | expensive",
      "experience": "local | tourist | authentic | modern"
    }
  ]
}`

// BuildPrompt renders the instruction sent to the completion endpoint.
// It has no side effects and never truncates the query.
func BuildPrompt(query string, history []domain.Turn) string {
	var b strings.Builder
	b.WriteString("You are a travel assistant. Read the user's travel query and answer with the destination and the places of interest that best match it.\n\n")
	b.WriteString("Respond with ONLY valid JSON in this exact format (no markdown, no explanation):\n")
	b.WriteString(answerSchema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. \"location\" is the destination as \"City, Country\". If the query names no location, use the string \"null\".\n")
	b.WriteString("2. Use the real, searchable name of each place so it can be found on a map.\n")
	b.WriteString("3. \"type\", \"priceRange\" and \"experience\" must use one of the listed values.\n")
	b.WriteString("4. Use the conversation so far to resolve follow-up questions.\n")
	b.WriteString("5. If the query is not related to travel, respond with exactly: ")
	b.WriteString(`{"location": "` + domain.LocationSentinelUnrelated + `", "placesOfInterest": []}`)
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range history {
			b.WriteString(turnLabel(t.Role))
			b.WriteString(": ")
			b.WriteString(t.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nUser query: ")
	b.WriteString(query)
	return b.String()
}

func turnLabel(r domain.Role) string {
	if r == domain.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
