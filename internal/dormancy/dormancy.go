// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dormancy labels each ranked person by days since their most
// recent interaction across all sources.
// Implements: prd008-dormancy (R1, R2);
//
//	docs/ARCHITECTURE § Dormancy.
package dormancy

import (
	"time"

	"github.com/pdiddy/collab-engine/pkg/types"
)

// Analysis is the dormancy verdict for one person.
type Analysis struct {
	Label types.DormancyLabel

	// DaysSince is days since last contact; nil when the person has no
	// timestamped interaction.
	DaysSince *int

	Kind types.ContactKind
}

// Analyze computes the dormancy label for one person. finalScore feeds
// the high-risk rule: a long-silent relationship is only high risk when
// it used to be strong (R2.3).
func Analyze(sig *types.PersonSignals, finalScore float64, cfg types.DormancyConfig, today time.Time) Analysis {
	last, kind, ok := sig.LastContact()
	if !ok {
		return Analysis{Label: types.DormancyUnknown}
	}

	// Whole calendar days: the time of day of either side never shifts
	// the count.
	days := int(dateOf(today).Sub(dateOf(last)).Hours() / 24)
	if days < 0 {
		days = 0
	}

	a := Analysis{DaysSince: &days, Kind: kind}
	switch {
	case days < cfg.CoolingDays:
		a.Label = types.DormancyActive
	case days < cfg.DormantDays:
		a.Label = types.DormancyCooling
	case days < cfg.HighRiskDays:
		a.Label = types.DormancyDormant
	case finalScore >= cfg.MinHistoricalScore:
		a.Label = types.DormancyHighRisk
	default:
		a.Label = types.DormancyDormant
	}
	return a
}

// dateOf truncates t to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
