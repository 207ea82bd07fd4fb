// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score composes the per-source signals into importance and
// final scores, and owns the evidence gates that decide who enters the
// ranked output. The gate conditions here are the authoritative
// definitions of chat-only, doc-only, and genuine collaboration.
// Implements: prd007-scoring (R1-R5);
//
//	docs/ARCHITECTURE § Scoring.
package score

import (
	"fmt"
	"time"

	"github.com/pdiddy/collab-engine/internal/chat"
	"github.com/pdiddy/collab-engine/internal/docshare"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// Scored holds the composed scores for one person.
type Scored struct {
	ImportanceScore float64
	FinalScore      float64

	// Confidence is the classifier confidence index over this person's
	// events, in [0,1].
	Confidence float64

	ChatScore float64
	DocScore  float64

	// ChatOnly and DocOnly mark relationships with no calendar footprint.
	// They are first-class: "I work with them but we never put it on the
	// calendar" must not be drowned out by invite volume (R3.4).
	ChatOnly bool
	DocOnly  bool
}

// Compute derives the scores for one person's aggregate (R1, R2).
func Compute(sig *types.PersonSignals, today time.Time) Scored {
	s := Scored{
		ChatScore: chat.Score(sig, today),
		DocScore:  docshare.Score(sig, today),
	}
	s.ChatOnly = sig.TotalMeetings == 0 && sig.ChatCount > 0
	s.DocOnly = sig.TotalMeetings == 0 && sig.TargetedShares() > 0

	quality := qualityIndex(sig)
	s.Confidence = confidenceIndex(sig)

	collaborationActivity := float64(sig.GenuineCollab) * 0.25 * 100
	interactionQuality := quality * 100 * 0.20
	confidenceContribution := s.Confidence * 50 * 0.20
	chatContribution := s.ChatScore * 0.20

	s.ImportanceScore = collaborationActivity + interactionQuality +
		confidenceContribution + chatContribution

	s.FinalScore = sig.MeetingScore + sig.GraphBoost
	if s.ChatOnly {
		s.FinalScore += s.ChatScore
	}
	if s.DocOnly {
		s.FinalScore += s.DocScore
	}
	return s
}

// qualityIndex summarizes the meeting mix in [0,1]: high when 1:1s and
// small working meetings dominate, low when broadcasts do (R2.2).
func qualityIndex(sig *types.PersonSignals) float64 {
	if sig.TotalMeetings == 0 {
		return 0
	}
	raw := float64(2*sig.OneOnOne+sig.SmallWorking+sig.OrganizedByUser-sig.Broadcast) /
		float64(2*sig.TotalMeetings)
	return clamp01(raw)
}

// confidenceIndex is the mean classifier confidence over the person's
// events, clamped to [0,1]; zero without calendar evidence.
func confidenceIndex(sig *types.PersonSignals) float64 {
	if sig.TotalMeetings == 0 {
		return 0
	}
	return clamp01(sig.ConfidenceSum / float64(sig.TotalMeetings))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Gated reports whether the person enters the ranked output (R3). All
// conditions must hold:
//
//  1. not system, not former (self never reaches the signal map);
//  2. at least one evidence source fires;
//  3. some form of genuine collaboration;
//  4. the minimum final score: >15 with calendar evidence, >5 when the
//     evidence is exclusively multi-source (chat/doc/graph).
func Gated(sig *types.PersonSignals, s Scored) bool {
	if sig.Person != nil && (sig.Person.IsSystem || sig.Person.IsFormer) {
		return false
	}

	graphTop := sig.GraphRank >= 1 && sig.GraphRank <= 10

	evidence := sig.TotalMeetings >= 2 ||
		sig.ChatCount >= 2 || s.ChatOnly ||
		sig.TargetedShares() >= 1 || s.DocOnly ||
		graphTop
	if !evidence {
		return false
	}

	genuine := sig.OneOnOne >= 1 || sig.OrganizedByUser >= 1 || sig.SmallWorking >= 1 ||
		sig.GenuineCollab >= 2 || s.ChatOnly || s.DocOnly || graphTop
	if !genuine {
		return false
	}

	if sig.TotalMeetings > 0 {
		return s.FinalScore > 15
	}
	return s.FinalScore > 5
}

// AssertionError reports a violated scoring invariant. It always
// indicates a bug and aborts the run (R5).
type AssertionError struct {
	Key string
	Msg string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("scoring assertion for %s: %s", e.Key, e.Msg)
}

// CheckInvariants validates the scored aggregate against the data-model
// invariants. The scorer never tolerates violations.
func CheckInvariants(sig *types.PersonSignals, s Scored) error {
	key := ""
	if sig.Person != nil {
		key = sig.Person.CanonicalKey
	}
	if s.FinalScore < 0 {
		return &AssertionError{key, fmt.Sprintf("negative final score %v", s.FinalScore)}
	}
	if s.ImportanceScore < 0 {
		return &AssertionError{key, fmt.Sprintf("negative importance score %v", s.ImportanceScore)}
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return &AssertionError{key, fmt.Sprintf("confidence %v out of [0,1]", s.Confidence)}
	}
	for name, v := range map[string]int{
		"total_meetings":    sig.TotalMeetings,
		"one_on_one":        sig.OneOnOne,
		"organized_by_user": sig.OrganizedByUser,
		"small_working":     sig.SmallWorking,
		"broadcast":         sig.Broadcast,
		"genuine_collab":    sig.GenuineCollab,
		"chat_count":        sig.ChatCount,
	} {
		if v < 0 {
			return &AssertionError{key, fmt.Sprintf("negative counter %s = %d", name, v)}
		}
	}
	return nil
}
