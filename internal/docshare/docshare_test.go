// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docshare

import (
	"testing"
	"time"

	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

var testToday = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func day(daysAgo int) time.Time {
	return testToday.AddDate(0, 0, -daysAgo)
}

func testExtractor() *Extractor {
	return &Extractor{
		Normalizer: identity.NewNormalizer(types.UserIdentity{Name: "Sam Ortiz", Email: "sam@contoso.com"}, nil, []string{"Alex Kim"}),
		Directory:  identity.NewDirectory(),
	}
}

func share(email string, surface types.ShareSurface, st types.ShareType, daysAgo int) types.DocShare {
	return types.DocShare{
		RecipientEmail: email,
		DocumentName:   "plan.docx",
		Surface:        surface,
		ShareType:      st,
		SharedAt:       day(daysAgo),
	}
}

func TestExtractCountsBySurfaceAndDirectness(t *testing.T) {
	x := testExtractor()
	signals := make(map[string]*types.PersonSignals)

	shares := []types.DocShare{
		share("jane@contoso.com", types.SurfaceOneDrive, types.ShareDirect, 3),
		share("jane@contoso.com", types.SurfaceOneDrive, types.ShareSmallGroup, 10),
		share("jane@contoso.com", types.SurfaceTeamsChat, types.ShareDirect, 20),
		share("jane@contoso.com", types.SurfaceTeamsChat, types.ShareSmallGroup, 30),
	}
	stats := x.Extract(shares, signals)

	if stats.Shares != 4 {
		t.Fatalf("shares = %d, want 4", stats.Shares)
	}
	sig := signals["jane@contoso.com"]
	if sig.DirectShares != 1 || sig.SmallGroupShares != 1 || sig.ChatDirectShares != 1 || sig.ChatGroupShares != 1 {
		t.Errorf("counters = %+v", sig)
	}
	if len(sig.UniqueShareDays) != 4 {
		t.Errorf("UniqueShareDays = %d, want 4", len(sig.UniqueShareDays))
	}
	if !sig.LastShareAt.Equal(day(3)) || !sig.FirstShareAt.Equal(day(30)) {
		t.Errorf("first/last = %v/%v", sig.FirstShareAt, sig.LastShareAt)
	}
}

func TestExtractDrops(t *testing.T) {
	x := testExtractor()
	signals := make(map[string]*types.PersonSignals)

	inherited := share("jane@contoso.com", types.SurfaceOneDrive, types.ShareDirect, 1)
	inherited.Inherited = true

	broadcast := share("jane@contoso.com", types.SurfaceOneDrive, "", 1)
	broadcast.RecipientCount = 12

	inbound := share("sam@contoso.com", types.SurfaceOneDrive, types.ShareDirect, 1)

	flagged := share("jane@contoso.com", types.SurfaceOneDrive, types.ShareDirect, 1)
	flagged.Inbound = true

	former := share("", types.SurfaceOneDrive, types.ShareDirect, 1)
	former.RecipientName = "Alex Kim"

	stats := x.Extract([]types.DocShare{inherited, broadcast, inbound, flagged, former}, signals)

	if stats.Inherited != 1 || stats.Broadcast != 1 || stats.Inbound != 2 || stats.FilteredFormer != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0 (nothing scorable)", len(signals))
	}
}

func TestShareIsDirect(t *testing.T) {
	if !shareIsDirect(types.DocShare{ShareType: types.ShareDirect, RecipientCount: 4}) {
		t.Error("explicit direct label wins")
	}
	if shareIsDirect(types.DocShare{ShareType: types.ShareSmallGroup, RecipientCount: 1}) {
		t.Error("explicit small_group label wins")
	}
	if !shareIsDirect(types.DocShare{RecipientCount: 1}) {
		t.Error("single recipient defaults to direct")
	}
	if shareIsDirect(types.DocShare{RecipientCount: 4}) {
		t.Error("several recipients default to small_group")
	}
}

func TestScore(t *testing.T) {
	sig := types.NewPersonSignals(nil)
	sig.DirectShares = 2      // 30
	sig.SmallGroupShares = 1  // 10
	sig.ChatDirectShares = 1  // 12
	sig.ChatGroupShares = 2   // 16
	sig.LastShareAt = day(10) // recency +15
	for _, d := range []int{10, 11, 12} {
		sig.UniqueShareDays[day(d).Format("2006-01-02")] = true // continuity +10
	}

	want := 30.0 + 10 + 12 + 16 + 15 + 10
	if got := Score(sig, testToday); got != want {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScoreContinuityBands(t *testing.T) {
	tests := []struct {
		days  int
		bonus float64
	}{{1, 0}, {2, 5}, {3, 10}, {4, 10}, {5, 15}, {9, 15}}
	for _, tt := range tests {
		sig := types.NewPersonSignals(nil)
		sig.DirectShares = 1
		sig.LastShareAt = day(400) // recency bonus 0
		for i := 0; i < tt.days; i++ {
			sig.UniqueShareDays[day(400+i).Format("2006-01-02")] = true
		}
		if got := Score(sig, testToday); got != 15+tt.bonus {
			t.Errorf("days=%d: Score() = %v, want %v", tt.days, got, 15+tt.bonus)
		}
	}
}

func TestScoreNoOutboundShares(t *testing.T) {
	sig := types.NewPersonSignals(nil)
	sig.InboundShares = 7
	if got := Score(sig, testToday); got != 0 {
		t.Errorf("inbound shares must not score, got %v", got)
	}
}
