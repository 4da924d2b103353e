package agent

import (
	"fmt"
	"strings"

	"github.com/smallnest/talentsearch/filters"
)

const welcomeReply = "I'd be happy to help you search! Could you tell me what you're looking for? " +
	"For example, you could say 'Find CTOs in Singapore' or 'Find AI startups'."

// responseContext is the user prompt of the response generation call.
func responseContext(s State) string {
	var sb strings.Builder

	intentName, confidence := "unknown", 0.0
	if s.Intent != nil {
		intentName, confidence = string(s.Intent.Type), s.Intent.Confidence
	}
	fmt.Fprintf(&sb, "User's original input: %q\n", s.UserInput)
	fmt.Fprintf(&sb, "Intent detected: %s (confidence: %.2f)\n\n", intentName, confidence)

	sb.WriteString("Current search filters:\n")
	if lines := s.Filters.Lines(filters.Labels); len(lines) > 0 {
		for _, line := range lines {
			sb.WriteString("- " + line + "\n")
		}
	} else {
		sb.WriteString("(No filters extracted yet)\n")
	}

	missing := "None"
	if len(s.Meta.MissingFields) > 0 {
		names := make([]string, len(s.Meta.MissingFields))
		for i, f := range s.Meta.MissingFields {
			names[i] = string(f)
		}
		missing = strings.Join(names, ", ")
	}

	fmt.Fprintf(&sb, "\nSearch domain: %s\n", s.Meta.Domain)
	fmt.Fprintf(&sb, "Completeness score: %d%%\n", s.Meta.CompletenessScore)
	fmt.Fprintf(&sb, "Is new search: %t\n", s.Meta.IsNewSearch)
	fmt.Fprintf(&sb, "Needs clarification: %t\n", s.Meta.ClarificationNeeded)
	fmt.Fprintf(&sb, "Missing fields: %s\n", missing)
	if s.Meta.ClarificationQuestion != "" {
		fmt.Fprintf(&sb, "Suggested clarification question: %s\n", s.Meta.ClarificationQuestion)
	}

	sb.WriteString("\nINSTRUCTIONS:\n")
	if s.Meta.ClarificationNeeded && len(s.Meta.MissingFields) > 0 {
		fmt.Fprintf(&sb, "- Ask the user to provide more details, specifically about: %s\n", s.Meta.MissingFields[0])
	} else {
		sb.WriteString("- Summarize the filters and ask for confirmation to search\n")
	}
	sb.WriteString("- Be friendly and conversational\n")
	sb.WriteString("- Format filters as bullet points\n")
	sb.WriteString("- Mention any GUESS confidence items as assumptions\n")
	sb.WriteString("- Respond in the same language as the user's input\n")
	return sb.String()
}

// fallbackResponse is the reply used when the oracle cannot produce one.
func fallbackResponse(s State) string {
	if s.Filters.Empty() {
		return welcomeReply
	}
	if s.Meta.ClarificationNeeded && s.Meta.ClarificationQuestion != "" {
		return "I found some search criteria. " + s.Meta.ClarificationQuestion
	}

	lines := make([]string, 0, len(filters.Fields))
	for _, field := range s.Filters.Filled() {
		lines = append(lines, fmt.Sprintf("• %s: %s", filters.Labels[field], s.Filters.FormatValue(field)))
	}
	return "Here's what I found:\n\n" + strings.Join(lines, "\n") + "\n\nShall I search with these filters? 🔍"
}
