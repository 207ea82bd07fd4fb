// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"fmt"
	"strings"
)

// KeywordBackend classifies by ordered keyword rules; the first rule with
// a keyword present in the subject or body wins (R2.1). It never fails,
// which makes it the universal fallback.
type KeywordBackend struct {
	rules []Rule
}

// NewKeywordBackend builds a keyword backend over rules, or the built-in
// table when rules is nil.
func NewKeywordBackend(rules []Rule) *KeywordBackend {
	if rules == nil {
		rules = defaultRules
	}
	return &KeywordBackend{rules: rules}
}

// Name implements Backend.
func (k *KeywordBackend) Name() string { return "keyword" }

// Rules returns the active rule table in evaluation order.
func (k *KeywordBackend) Rules() []Rule { return k.rules }

// Classify implements Backend. On no match it returns the default
// standup classification with confidence 0.4 (R2.2).
func (k *KeywordBackend) Classify(_ context.Context, req Request) (Classification, error) {
	text := strings.ToLower(req.Subject + " " + req.BodyPreview)

	for _, rule := range k.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return Classification{
					SpecificType: rule.Type,
					Category:     rule.Category,
					Confidence:   0.8,
					Reasoning:    fmt.Sprintf("matched keyword %q", kw),
				}, nil
			}
		}
	}

	return Classification{
		SpecificType: TypeStandup,
		Category:     CategoryCadence,
		Confidence:   0.4,
		Reasoning:    "no keyword match",
	}, nil
}
