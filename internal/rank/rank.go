// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders gated persons deterministically, partitions them
// by dormancy, and writes the report document atomically.
// Implements: prd009-ranking (R1-R4);
//
//	docs/ARCHITECTURE § Ranking.
package rank

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/collab-engine/internal/dormancy"
	"github.com/pdiddy/collab-engine/internal/score"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// Entry is one gated person ready for ranking.
type Entry struct {
	Sig      *types.PersonSignals
	Scored   score.Scored
	Dormancy dormancy.Analysis
}

// Rank sorts entries by the composite tie-break (final score desc,
// importance desc, total meetings desc, canonical key asc) and
// partitions them: active and unknown-recency persons form the
// collaborators list, everyone else the dormant list, truncated to
// dormantTopN (R1, R2).
func Rank(entries []Entry, dormantTopN int) (collaborators, dormant []types.RankedPerson) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Scored.FinalScore != b.Scored.FinalScore {
			return a.Scored.FinalScore > b.Scored.FinalScore
		}
		if a.Scored.ImportanceScore != b.Scored.ImportanceScore {
			return a.Scored.ImportanceScore > b.Scored.ImportanceScore
		}
		if a.Sig.TotalMeetings != b.Sig.TotalMeetings {
			return a.Sig.TotalMeetings > b.Sig.TotalMeetings
		}
		return a.Sig.Person.CanonicalKey < b.Sig.Person.CanonicalKey
	})

	for _, e := range entries {
		rp := toRanked(e)
		switch e.Dormancy.Label {
		case types.DormancyActive, types.DormancyUnknown:
			collaborators = append(collaborators, rp)
		default:
			dormant = append(dormant, rp)
		}
	}

	if dormantTopN > 0 && len(dormant) > dormantTopN {
		dormant = dormant[:dormantTopN]
	}
	return collaborators, dormant
}

func toRanked(e Entry) types.RankedPerson {
	return types.RankedPerson{
		Person:               *e.Sig.Person,
		FinalScore:           round2(e.Scored.FinalScore),
		ImportanceScore:      round2(e.Scored.ImportanceScore),
		Confidence:           round2(e.Scored.Confidence),
		TotalMeetings:        e.Sig.TotalMeetings,
		DormancyLabel:        e.Dormancy.Label,
		DaysSinceLastContact: e.Dormancy.DaysSince,
		LastContactKind:      e.Dormancy.Kind,
		ChatOnly:             e.Scored.ChatOnly,
		DocOnly:              e.Scored.DocOnly,
		Evidence: types.Evidence{
			Meetings:  e.Sig.MeetingEvidence,
			Chats:     e.Sig.ChatEvidence,
			Documents: e.Sig.DocEvidence,
			GraphRank: e.Sig.GraphRank,
		},
	}
}

// round2 keeps scores readable and the output stable across platforms.
func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// Counts tallies the partition for the report summary.
func Counts(collaborators, dormant []types.RankedPerson) types.SummaryCounts {
	c := types.SummaryCounts{Total: len(collaborators) + len(dormant)}
	for _, rp := range collaborators {
		switch rp.DormancyLabel {
		case types.DormancyUnknown:
			c.UnknownRecency++
		default:
			c.Active++
		}
	}
	for _, rp := range dormant {
		switch rp.DormancyLabel {
		case types.DormancyCooling:
			c.Cooling++
		case types.DormancyHighRisk:
			c.HighRisk++
		default:
			c.Dormant++
		}
	}
	return c
}

// WriteJSON writes the report as indented JSON to w.
func WriteJSON(report *types.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// WriteFile writes the report atomically: marshal to a temp file next to
// the target, fsync, then rename. A failed run leaves no partial output
// (R4.2).
func WriteFile(report *types.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	if err := WriteJSON(report, f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing report: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing report: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming report into place: %w", err)
	}
	return nil
}

// FormatSummary writes a short human-readable digest to w, for the CLI.
func FormatSummary(report *types.Report, w io.Writer) {
	c := report.Summary.Counts
	fmt.Fprintf(w, "%d collaborators ranked: %d active, %d cooling, %d dormant, %d high risk",
		c.Total, c.Active, c.Cooling, c.Dormant, c.HighRisk)
	if c.UnknownRecency > 0 {
		fmt.Fprintf(w, ", %d unknown recency", c.UnknownRecency)
	}
	fmt.Fprintln(w)

	for i, rp := range report.Collaborators {
		if i >= 10 {
			fmt.Fprintf(w, "  ... and %d more\n", len(report.Collaborators)-i)
			break
		}
		name := rp.Person.DisplayName
		if name == "" {
			name = rp.Person.CanonicalKey
		}
		fmt.Fprintf(w, "  %2d. %-30s  %7.2f  (%s)\n", i+1, name, rp.FinalScore, rp.DormancyLabel)
	}
}
