package matcher

import (
	"fmt"
	"strings"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/models"
)

const (
	newsQuoteSystem       = "You are an expert at matching current events with relevant biblical wisdom from Jesus. You understand context, themes, and practical application."
	newsOpportunitySystem = "You are an expert at connecting people to meaningful volunteer work based on current needs and their values."
	askQuoteSystem        = "You are a compassionate spiritual advisor helping people find biblical wisdom for life questions."
	askOpportunitySystem  = "You help people translate spiritual insights into concrete acts of service."
	reflectionSystem      = "You provide brief, meaningful spiritual reflections that bridge wisdom and action."

	fallbackReflection = "May these words and works guide you forward."
)

const (
	newsOpportunityCandidates = 20
	askOpportunityCandidates  = 15
	newsDescriptionRunes      = 150
	askDescriptionRunes       = 120
)

func newsQuoteRequest(event models.CurrentEvent, quotes []models.Quote) ai.CompletionRequest {
	var b strings.Builder
	b.WriteString("You are a biblical wisdom matcher. Given a current event, find the most relevant quotes from Jesus's teachings.\n\n")
	writeEvent(&b, event, true)
	b.WriteString("\nAvailable Quotes:\n")
	for i, q := range quotes {
		fmt.Fprintf(&b, "%d. %q (%s) - Theme: %s, Tags: %s\n", i+1, q.Text, q.Reference, q.Theme, strings.Join(q.Tags, ", "))
	}
	fmt.Fprintf(&b, `
Task: Select the top 3 most relevant quotes that directly address this situation. For each quote, provide:
1. The quote number (1-%d)
2. A relevance score (0-100)
3. A brief explanation of why it's relevant

Respond ONLY with a JSON array like this:
[
  {
    "quoteNumber": 1,
    "relevanceScore": 95,
    "reasoning": "This quote directly addresses the need for compassion toward those experiencing homelessness."
  }
]`, len(quotes))

	return ai.CompletionRequest{System: newsQuoteSystem, User: b.String(), Temperature: 0.7, MaxTokens: 500}
}

func newsOpportunityRequest(event models.CurrentEvent, matched []models.Quote, presented []models.Opportunity) ai.CompletionRequest {
	var b strings.Builder
	b.WriteString("You are matching current events with volunteer opportunities. Given an event and matched biblical quotes, find the most actionable volunteer opportunities.\n\n")
	writeEvent(&b, event, false)
	b.WriteString("\nMatched Wisdom:\n")
	for _, q := range matched {
		fmt.Fprintf(&b, "- %q (%s)\n", q.Text, q.Reference)
	}
	b.WriteString("\nAvailable Opportunities:\n")
	for i, o := range presented {
		causes := make([]string, len(o.CauseCategories))
		for j, c := range o.CauseCategories {
			causes[j] = string(c)
		}
		fmt.Fprintf(&b, "%d. %s at %s\n   Description: %s...\n   Categories: %s\n   Location: %s (%s)\n   Urgency: %s\n\n",
			i+1, o.Title, o.OrganizationName,
			clip(o.Description, newsDescriptionRunes),
			strings.Join(causes, ", "),
			placeName(o.Location), o.Location.Mode,
			o.UrgencyLevel,
		)
	}
	b.WriteString(`Task: Select the top 3-5 opportunities that best allow someone to respond to this event with action. Consider:
- Direct relevance to the problem
- Practical ability to make an impact
- Alignment with the biblical wisdom
- Urgency and accessibility

Respond ONLY with a JSON array:
[
  {
    "opportunityNumber": 1,
    "relevanceScore": 95,
    "reasoning": "This directly addresses the immediate need mentioned in the event."
  }
]`)

	return ai.CompletionRequest{System: newsOpportunitySystem, User: b.String(), Temperature: 0.7, MaxTokens: 600}
}

func askQuoteRequest(question string, quotes []models.Quote) ai.CompletionRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "A person is seeking wisdom with this question: %q\n\nAvailable quotes from Jesus:\n", question)
	for i, q := range quotes {
		fmt.Fprintf(&b, "%d. %q (%s) - Theme: %s, Context: %s\n", i+1, q.Text, q.Reference, q.Theme, q.Context)
	}
	b.WriteString(`
Select the top 3 quotes that best address this question. Respond with JSON:
[
  {
    "quoteNumber": 1,
    "relevance": "This quote speaks to..."
  }
]`)

	return ai.CompletionRequest{System: askQuoteSystem, User: b.String(), Temperature: 0.8, MaxTokens: 400}
}

func askOpportunityRequest(question string, matched []QuoteAnswer, presented []models.Opportunity) ai.CompletionRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "A person asked: %q\n\nThey resonated with these teachings:\n", question)
	for _, m := range matched {
		fmt.Fprintf(&b, "- %q (%s)\n", m.Quote.Text, m.Quote.Reference)
	}
	b.WriteString("\nAvailable volunteer opportunities:\n")
	for i, o := range presented {
		fmt.Fprintf(&b, "%d. %s - %s...\n", i+1, o.Title, clip(o.Description, askDescriptionRunes))
	}
	b.WriteString(`
Suggest 2-3 opportunities where they could turn this wisdom into action. Respond with JSON:
[
  {
    "opportunityNumber": 1,
    "reasoning": "This opportunity allows you to..."
  }
]`)

	return ai.CompletionRequest{System: askOpportunitySystem, User: b.String(), Temperature: 0.8, MaxTokens: 400}
}

func reflectionRequest(question string, quotes []QuoteAnswer, opps []ActionSuggestion) ai.CompletionRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "A person asked: %q\n\nYou showed them these teachings:\n", question)
	for _, m := range quotes {
		fmt.Fprintf(&b, "- %q\n", m.Quote.Text)
	}
	b.WriteString("\nAnd these opportunities to serve:\n")
	for _, m := range opps {
		fmt.Fprintf(&b, "- %s\n", m.Opportunity.Title)
	}
	b.WriteString("\nWrite a brief (2-3 sentences) reflection connecting their question to these teachings and actions.")

	return ai.CompletionRequest{System: reflectionSystem, User: b.String(), Temperature: 0.8, MaxTokens: 200}
}

func writeEvent(b *strings.Builder, event models.CurrentEvent, withCategory bool) {
	b.WriteString("Current Event:\n")
	fmt.Fprintf(b, "Headline: %s\n", event.Headline)
	fmt.Fprintf(b, "Summary: %s\n", event.Summary)
	if withCategory {
		fmt.Fprintf(b, "Category: %s\n", event.Category)
	}
}

func placeName(loc models.Location) string {
	switch {
	case strings.TrimSpace(loc.City) != "":
		return loc.City
	case strings.TrimSpace(loc.State) != "":
		return loc.State
	default:
		return "Remote"
	}
}
