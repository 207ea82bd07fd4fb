// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns each calendar event a type from the Enterprise
// Meeting Taxonomy. Two backends share one contract: an ordered keyword
// rule table and an LLM backend; the package-level Classifier is total
// and never surfaces backend errors to callers.
// Implements: prd002-classification (R1-R6);
//
//	docs/ARCHITECTURE § Classification.
package classify

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Taxonomy categories. Every specific type belongs to exactly one.
const (
	CategoryOneOnOne  = "One-on-One & Interpersonal"
	CategoryStrategic = "Strategic Planning & Decision"
	CategoryCadence   = "Internal Recurring (Cadence)"
	CategoryExternal  = "External & Client-Facing"
	CategoryBroadcast = "Informational & Broadcast"
	CategoryUnknown   = "Unknown"
)

// Specific types referenced by name elsewhere in the engine.
const (
	TypeOneOnOne  = "One-on-One Meeting"
	TypeStandup   = "Team Status Update/Standup"
	TypeBroadcast = "Company Broadcast"
	TypeUnknown   = "Unknown"
)

// validCategories is the closed set of acceptable Category values.
var validCategories = map[string]bool{
	CategoryOneOnOne:  true,
	CategoryStrategic: true,
	CategoryCadence:   true,
	CategoryExternal:  true,
	CategoryBroadcast: true,
	CategoryUnknown:   true,
}

// Rule is one entry of the keyword rule table. Rules are evaluated in
// order; the first rule with any keyword present in the subject or body
// wins (R2.1).
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Type     string   `yaml:"type"`
	Category string   `yaml:"category"`
}

// DefaultRules returns the built-in Enterprise Meeting Taxonomy rule
// table: 31 specific types across the five categories, most specific
// first. Callers must not mutate the returned slice.
func DefaultRules() []Rule {
	return defaultRules
}

var defaultRules = []Rule{
	// One-on-One & Interpersonal.
	{[]string{"1:1", "1-1", "one on one", "one-on-one", "1on1"}, TypeOneOnOne, CategoryOneOnOne},
	{[]string{"skip level", "skip-level"}, "Skip-Level Meeting", CategoryOneOnOne},
	{[]string{"coaching", "mentoring", "mentor "}, "Coaching / Mentoring Session", CategoryOneOnOne},
	{[]string{"performance review", "perf review", "connect review"}, "Performance Review", CategoryOneOnOne},
	{[]string{"career", "development plan"}, "Career Development Discussion", CategoryOneOnOne},
	{[]string{"feedback session", "feedback chat"}, "Feedback Session", CategoryOneOnOne},

	// Strategic Planning & Decision.
	{[]string{"strategy", "strategic"}, "Strategic Planning Session", CategoryStrategic},
	{[]string{"decision", "go/no-go", "go no go"}, "Decision-Making Meeting", CategoryStrategic},
	{[]string{"qbr", "quarterly business review"}, "Quarterly Business Review", CategoryStrategic},
	{[]string{"annual planning", "yearly planning"}, "Annual Planning", CategoryStrategic},
	{[]string{"kickoff", "kick-off", "kick off"}, "Project Kickoff", CategoryStrategic},
	{[]string{"roadmap"}, "Roadmap Review", CategoryStrategic},
	{[]string{"budget", "headcount", "resource planning"}, "Budget & Resource Planning", CategoryStrategic},
	{[]string{"architecture", "design review", "rfc review"}, "Architecture / Design Review", CategoryStrategic},
	{[]string{"workshop", "working session", "deep dive"}, "Problem-Solving Workshop", CategoryStrategic},
	{[]string{"brainstorm", "ideation"}, "Brainstorming Session", CategoryStrategic},

	// External & Client-Facing. Before cadence so "client sync" lands here.
	{[]string{"client", "customer check", "account review"}, "Client Check-in", CategoryExternal},
	{[]string{"sales", "pitch", "demo for"}, "Sales / Pitch Meeting", CategoryExternal},
	{[]string{"vendor", "partner", "supplier"}, "Vendor / Partner Meeting", CategoryExternal},
	{[]string{"discovery call", "user interview", "customer interview"}, "Customer Discovery Interview", CategoryExternal},

	// Internal Recurring (Cadence).
	{[]string{"standup", "stand-up", "stand up", "daily scrum"}, TypeStandup, CategoryCadence},
	{[]string{"sprint planning"}, "Sprint Planning", CategoryCadence},
	{[]string{"sprint review", "sprint demo"}, "Sprint Review / Demo", CategoryCadence},
	{[]string{"retro", "retrospective", "post-mortem", "postmortem"}, "Retrospective", CategoryCadence},
	{[]string{"ops review", "operations review", "on-call", "oncall"}, "Operations Review", CategoryCadence},
	{[]string{"staff meeting", "leads meeting"}, "Staff Meeting", CategoryCadence},
	{[]string{"weekly", "sync", "check-in", "checkin", "catch up", "catch-up"}, "Weekly Team Sync", CategoryCadence},

	// Informational & Broadcast.
	{[]string{"all hands", "all-hands", "town hall", "townhall"}, "All-Hands / Town Hall", CategoryBroadcast},
	{[]string{"announcement", "broadcast"}, TypeBroadcast, CategoryBroadcast},
	{[]string{"training", "onboarding", "enablement"}, "Training Session", CategoryBroadcast},
	{[]string{"webinar", "lunch and learn", "lunch & learn", "brown bag"}, "Webinar / Lunch & Learn", CategoryBroadcast},
}

// LoadRules reads a YAML rule list that replaces the built-in table.
// The file is a sequence of {keywords, type, category} entries and is
// validated the same way backend output is (R2.4).
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("taxonomy %s: no rules", path)
	}
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("taxonomy %s: rule %d has no keywords", path, i)
		}
		if strings.TrimSpace(r.Type) == "" {
			return nil, fmt.Errorf("taxonomy %s: rule %d has no type", path, i)
		}
		if !validCategories[r.Category] {
			return nil, fmt.Errorf("taxonomy %s: rule %d has unknown category %q", path, i, r.Category)
		}
	}
	return rules, nil
}

// TypeWeight returns the per-event scoring weight for a classified type:
// 1:1-like meetings highest, standups and broadcasts lowest
// (prd003-calendar-signals R3.1).
func TypeWeight(specificType, category string) float64 {
	if specificType == TypeStandup {
		return 3
	}
	switch category {
	case CategoryOneOnOne:
		return 10
	case CategoryStrategic:
		return 8
	case CategoryExternal:
		return 7
	case CategoryCadence:
		return 5
	case CategoryBroadcast:
		return 1
	}
	return 3 // Unknown
}
