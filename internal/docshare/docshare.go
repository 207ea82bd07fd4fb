// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docshare converts outbound, targeted document shares into a
// collaboration signal, weighted by directness and share continuity.
// Inbound shares are counted for diagnostics only and never scored.
// Implements: prd005-document-signals (R1-R4);
//
//	docs/ARCHITECTURE § Document Signals.
package docshare

import (
	"time"

	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// broadcastAudience is the recipient count above which a share stops
// being targeted (R1.3).
const broadcastAudience = 5

// Extractor folds outbound shares into the per-person aggregates.
type Extractor struct {
	Normalizer *identity.Normalizer
	Directory  *identity.Directory
}

// Stats counts dropped share records.
type Stats struct {
	Shares          int
	Inbound         int
	Broadcast       int
	Inherited       int
	InvalidIdentity int
	FilteredSystem  int
	FilteredFormer  int
}

// Extract processes shares in order, mutating signals in place.
func (x *Extractor) Extract(shares []types.DocShare, signals map[string]*types.PersonSignals) Stats {
	var stats Stats

	for _, sh := range shares {
		if sh.Inherited {
			stats.Inherited++
			continue
		}
		if sh.RecipientCount > broadcastAudience {
			stats.Broadcast++
			continue
		}

		key, err := identity.Canonicalize(sh.RecipientName, sh.RecipientEmail)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}

		// A share addressed to the user is inbound regardless of how the
		// source labeled it.
		if sh.Inbound || x.Normalizer.IsSelf(key) {
			stats.Inbound++
			if sig := lookup(signals, key); sig != nil {
				sig.InboundShares++
			}
			continue
		}
		switch {
		case x.Normalizer.IsSystem(key):
			stats.FilteredSystem++
			continue
		case x.Normalizer.IsFormer(key) || x.Normalizer.IsFormerName(sh.RecipientName):
			stats.FilteredFormer++
			continue
		}
		stats.Shares++

		person, err := x.Directory.Upsert(sh.RecipientName, sh.RecipientEmail)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		sig, ok := signals[person.CanonicalKey]
		if !ok {
			sig = types.NewPersonSignals(person)
			signals[person.CanonicalKey] = sig
		}

		direct := shareIsDirect(sh)
		switch {
		case sh.Surface == types.SurfaceTeamsChat && direct:
			sig.ChatDirectShares++
		case sh.Surface == types.SurfaceTeamsChat:
			sig.ChatGroupShares++
		case direct:
			sig.DirectShares++
		default:
			sig.SmallGroupShares++
		}

		if !sh.SharedAt.IsZero() {
			sig.UniqueShareDays[sh.SharedAt.Format("2006-01-02")] = true
			if sig.FirstShareAt.IsZero() || sh.SharedAt.Before(sig.FirstShareAt) {
				sig.FirstShareAt = sh.SharedAt
			}
			if sh.SharedAt.After(sig.LastShareAt) {
				sig.LastShareAt = sh.SharedAt
			}
		}

		if len(sig.DocEvidence) < 5 {
			ev := types.DocEvidence{
				DocumentName: sh.DocumentName,
				Surface:      string(sh.Surface),
				ShareType:    string(types.ShareSmallGroup),
			}
			if direct {
				ev.ShareType = string(types.ShareDirect)
			}
			if !sh.SharedAt.IsZero() {
				ev.SharedAt = sh.SharedAt.Format("2006-01-02")
			}
			sig.DocEvidence = append(sig.DocEvidence, ev)
		}
	}
	return stats
}

func lookup(signals map[string]*types.PersonSignals, key string) *types.PersonSignals {
	return signals[key]
}

// shareIsDirect classifies directness: a single recipient (or a share
// the source already labeled direct) is direct; anything else within
// the targeted audience is small_group (R2.1).
func shareIsDirect(sh types.DocShare) bool {
	if sh.ShareType == types.ShareDirect {
		return true
	}
	if sh.ShareType == types.ShareSmallGroup {
		return false
	}
	return sh.RecipientCount <= 1
}

// Score computes the document collaboration score: per-share points by
// surface and directness, a recency bonus from the most recent share,
// and a continuity bonus from the number of distinct share days (R3).
func Score(sig *types.PersonSignals, today time.Time) float64 {
	points := 15.0*float64(sig.DirectShares) +
		10.0*float64(sig.SmallGroupShares) +
		12.0*float64(sig.ChatDirectShares) +
		8.0*float64(sig.ChatGroupShares)
	if points == 0 {
		return 0
	}

	if !sig.LastShareAt.IsZero() {
		days := int(today.Sub(sig.LastShareAt).Hours() / 24)
		switch {
		case days <= 7:
			points += 20
		case days <= 30:
			points += 15
		case days <= 90:
			points += 10
		case days <= 180:
			points += 5
		}
	}

	switch n := len(sig.UniqueShareDays); {
	case n >= 5:
		points += 15
	case n >= 3:
		points += 10
	case n == 2:
		points += 5
	}
	return points
}
