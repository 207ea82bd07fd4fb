// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"strings"
)

// classificationSystemPrompt instructs the model to classify one meeting
// into the Enterprise Meeting Taxonomy and respond with the backend
// contract JSON. Per prd002-classification R5.1.
var classificationSystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var b strings.Builder
	b.WriteString(`You are a meeting classification system. Classify the meeting described by the user into exactly one specific type from the Enterprise Meeting Taxonomy below.

Taxonomy (category: specific types):
`)

	// Group the built-in rule table by category, preserving order.
	order := []string{CategoryOneOnOne, CategoryStrategic, CategoryExternal, CategoryCadence, CategoryBroadcast}
	byCategory := make(map[string][]string)
	for _, r := range defaultRules {
		byCategory[r.Category] = append(byCategory[r.Category], r.Type)
	}
	for _, cat := range order {
		fmt.Fprintf(&b, "- %s: %s\n", cat, strings.Join(byCategory[cat], "; "))
	}

	b.WriteString(`
Respond with a single JSON object and nothing else:
{"specific_type": "<one type from the taxonomy>", "category": "<its category>", "confidence": <0.0-1.0>, "reasoning": "<one short sentence>"}

Base the classification on the subject, body preview, attendee count, and duration. A two-person short meeting is almost always a One-on-One Meeting. Meetings with very large audiences are Informational & Broadcast.`)
	return b.String()
}

// formatClassificationPrompt renders one request as the user message.
func formatClassificationPrompt(req Request) string {
	return fmt.Sprintf("Subject: %s\nBody preview: %s\nAttendees: %d\nDuration: %d minutes",
		req.Subject, req.BodyPreview, req.AttendeeCount, req.DurationMin)
}
