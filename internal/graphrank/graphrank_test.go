// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphrank

import (
	"testing"

	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

func TestBoost(t *testing.T) {
	tests := []struct {
		rank int
		want float64
	}{{0, 0}, {1, 25}, {3, 25}, {4, 15}, {10, 15}, {11, 8}, {25, 8}, {26, 3}, {50, 3}, {51, 0}}
	for _, tt := range tests {
		if got := Boost(tt.rank); got != tt.want {
			t.Errorf("Boost(%d) = %v, want %v", tt.rank, got, tt.want)
		}
	}
}

func TestImport(t *testing.T) {
	norm := identity.NewNormalizer(types.UserIdentity{Name: "Sam Ortiz", Email: "sam@contoso.com"}, nil, []string{"Alex Kim"})
	dir := identity.NewDirectory()
	signals := make(map[string]*types.PersonSignals)

	people := []types.GraphPerson{
		{Name: "Sam Ortiz", Email: "sam@contoso.com"}, // self: filtered but keeps slot 1
		{Name: "Jane Doe", Email: "jane@contoso.com", JobTitle: "PM"},
		{Name: "Alex Kim", Email: "alex@contoso.com"}, // former: filtered but keeps slot 3
		{Name: "Pat Lee", Email: "pat@contoso.com"},
	}
	stats := Import(people, norm, dir, signals)

	if stats.People != 2 || stats.FilteredSelf != 1 || stats.FilteredFormer != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	jane := signals["jane@contoso.com"]
	if jane.GraphRank != 2 || jane.GraphBoost != 25 {
		t.Errorf("jane rank/boost = %d/%v, want 2/25", jane.GraphRank, jane.GraphBoost)
	}
	if jane.Person.JobTitle != "PM" {
		t.Errorf("job title not carried through: %q", jane.Person.JobTitle)
	}

	// Pat holds the provider's position 4: filtering entries above must
	// not promote anyone into a higher boost band.
	pat := signals["pat@contoso.com"]
	if pat.GraphRank != 4 || pat.GraphBoost != 15 {
		t.Errorf("pat rank/boost = %d/%v, want 4/15", pat.GraphRank, pat.GraphBoost)
	}
}

func TestImportMergesWithExistingSignals(t *testing.T) {
	norm := identity.NewNormalizer(types.UserIdentity{Email: "sam@contoso.com"}, nil, nil)
	dir := identity.NewDirectory()
	signals := make(map[string]*types.PersonSignals)

	person, _ := dir.Upsert("Jane Doe", "jane@contoso.com")
	sig := types.NewPersonSignals(person)
	sig.TotalMeetings = 4
	signals[person.CanonicalKey] = sig

	Import([]types.GraphPerson{{Name: "Jane Doe", Email: "jane@contoso.com"}}, norm, dir, signals)

	if signals["jane@contoso.com"] != sig {
		t.Fatal("import must reuse the existing aggregate")
	}
	if sig.GraphRank != 1 || sig.TotalMeetings != 4 {
		t.Errorf("rank = %d, meetings = %d", sig.GraphRank, sig.TotalMeetings)
	}
}
