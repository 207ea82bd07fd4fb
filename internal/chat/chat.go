// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat translates per-conversation chat summaries into
// per-person signals and the chat collaboration score.
// Implements: prd004-chat-signals (R1-R3);
//
//	docs/ARCHITECTURE § Chat Signals.
package chat

import (
	"time"

	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// Extractor folds chat records into the per-person aggregates.
type Extractor struct {
	Normalizer *identity.Normalizer
	Directory  *identity.Directory
}

// Stats counts dropped chat records.
type Stats struct {
	Records         int
	InvalidIdentity int
	FilteredSelf    int
	FilteredSystem  int
	FilteredFormer  int
}

// Extract processes records in order, mutating signals in place. The
// most direct chat type seen wins; counts are additive; timestamps
// aggregate by min/max (R1).
func (x *Extractor) Extract(records []types.ChatRecord, signals map[string]*types.PersonSignals) Stats {
	var stats Stats

	for _, rec := range records {
		key, err := identity.Canonicalize(rec.OtherName, rec.OtherEmail)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		switch {
		case x.Normalizer.IsSelf(key):
			stats.FilteredSelf++
			continue
		case x.Normalizer.IsSystem(key):
			stats.FilteredSystem++
			continue
		case x.Normalizer.IsFormer(key) || x.Normalizer.IsFormerName(rec.OtherName):
			stats.FilteredFormer++
			continue
		}
		stats.Records++

		person, err := x.Directory.Upsert(rec.OtherName, rec.OtherEmail)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		sig, ok := signals[person.CanonicalKey]
		if !ok {
			sig = types.NewPersonSignals(person)
			signals[person.CanonicalKey] = sig
		}

		sig.ChatCount += rec.Count
		if rec.ChatType.Directness() > sig.ChatType.Directness() {
			sig.ChatType = rec.ChatType
		}
		if sig.FirstChatAt.IsZero() || (!rec.FirstMessageAt.IsZero() && rec.FirstMessageAt.Before(sig.FirstChatAt)) {
			sig.FirstChatAt = rec.FirstMessageAt
		}
		if rec.LastMessageAt.After(sig.LastChatAt) {
			sig.LastChatAt = rec.LastMessageAt
		}

		if len(sig.ChatEvidence) < 5 {
			ev := types.ChatEvidence{ChatType: rec.ChatType, Count: rec.Count}
			if !rec.LastMessageAt.IsZero() {
				ev.LastMessageAt = rec.LastMessageAt.Format("2006-01-02")
			}
			sig.ChatEvidence = append(sig.ChatEvidence, ev)
		}
	}
	return stats
}

// Score computes the chat collaboration score: a per-message base capped
// by directness plus a recency bonus (R2, R3).
func Score(sig *types.PersonSignals, today time.Time) float64 {
	if sig.ChatCount == 0 {
		return 0
	}

	var base float64
	switch sig.ChatType {
	case types.ChatOneOnOne:
		base = min(2.0*float64(sig.ChatCount), 50)
	case types.ChatGroup:
		base = min(1.0*float64(sig.ChatCount), 25)
	case types.ChatMeeting:
		base = min(0.5*float64(sig.ChatCount), 10)
	}

	return base + recencyBonus(sig.LastChatAt, today)
}

// recencyBonus rewards fresh conversations: 20/15/10/5 points for a last
// message within 7/30/90/180 days.
func recencyBonus(last time.Time, today time.Time) float64 {
	if last.IsZero() {
		return 0
	}
	days := int(today.Sub(last).Hours() / 24)
	switch {
	case days <= 7:
		return 20
	case days <= 30:
		return 15
	case days <= 90:
		return 10
	case days <= 180:
		return 5
	}
	return 0
}
