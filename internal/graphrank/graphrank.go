// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphrank imports the identity provider's own people ranking
// as an optional, independent signal.
// Implements: prd006-graph-ranking (R1, R2);
//
//	docs/ARCHITECTURE § Graph Ranking.
package graphrank

import (
	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// Stats counts dropped ranking entries.
type Stats struct {
	People          int
	InvalidIdentity int
	FilteredSelf    int
	FilteredSystem  int
	FilteredFormer  int
}

// Import assigns provider ranks and the rank boost to each person's
// signals. The rank is the 1-based position in the provider's list:
// filtered entries keep their slot so everyone below them stays at the
// rank the provider gave them.
func Import(people []types.GraphPerson, norm *identity.Normalizer, dir *identity.Directory, signals map[string]*types.PersonSignals) Stats {
	var stats Stats

	for i, gp := range people {
		rank := i + 1
		key, err := identity.Canonicalize(gp.Name, gp.Email)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		switch {
		case norm.IsSelf(key):
			stats.FilteredSelf++
			continue
		case norm.IsSystem(key):
			stats.FilteredSystem++
			continue
		case norm.IsFormer(key) || norm.IsFormerName(gp.Name):
			stats.FilteredFormer++
			continue
		}
		stats.People++

		person, err := dir.Upsert(gp.Name, gp.Email)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		if gp.JobTitle != "" && person.JobTitle == "" {
			person.JobTitle = gp.JobTitle
		}

		sig, ok := signals[person.CanonicalKey]
		if !ok {
			sig = types.NewPersonSignals(person)
			signals[person.CanonicalKey] = sig
		}
		sig.GraphRank = rank
		sig.GraphBoost = Boost(rank)
	}
	return stats
}

// Boost maps a provider rank to score points: the provider's top picks
// carry weight even without local evidence (R2.1).
func Boost(rank int) float64 {
	switch {
	case rank <= 0:
		return 0
	case rank <= 3:
		return 25
	case rank <= 10:
		return 15
	case rank <= 25:
		return 8
	case rank <= 50:
		return 3
	}
	return 0
}
