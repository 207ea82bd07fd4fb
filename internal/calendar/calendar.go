// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package calendar turns classified calendar events into per-attendee
// collaboration signals and additive per-meeting scores.
// Implements: prd003-calendar-signals (R1-R4);
//
//	docs/ARCHITECTURE § Calendar Signals.
package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/collab-engine/internal/classify"
	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// Extractor emits signals for every non-resource, non-self attendee of
// each event. Meetings are classified exactly once, here.
type Extractor struct {
	Classifier  *classify.Classifier
	Normalizer  *identity.Normalizer
	Directory   *identity.Directory
	Today       time.Time
	EvidenceCap int
	UserDomain  string
	Log         zerolog.Logger
}

// Stats counts records the extractor dropped or filtered.
type Stats struct {
	Events          int
	Cancelled       int
	InvalidIdentity int
	FilteredSelf    int
	FilteredSystem  int
	FilteredFormer  int
}

// Extract processes all events in order, mutating signals in place.
func (x *Extractor) Extract(ctx context.Context, events []types.MeetingEvent, signals map[string]*types.PersonSignals) Stats {
	var stats Stats

	for i := range events {
		ev := &events[i]
		if ev.IsCancelled {
			stats.Cancelled++
			continue
		}
		stats.Events++
		x.extractEvent(ctx, ev, signals, &stats)
	}
	return stats
}

func (x *Extractor) extractEvent(ctx context.Context, ev *types.MeetingEvent, signals map[string]*types.PersonSignals, stats *Stats) {
	participants := ev.Participants()
	size := len(participants)

	res := x.Classifier.Classify(ctx, classify.Request{
		Subject:       ev.Subject,
		BodyPreview:   ev.BodyPreview,
		AttendeeCount: size,
		DurationMin:   ev.DurationMinutes(),
	})
	ev.MeetingType = res.SpecificType
	ev.Category = res.Category
	ev.Confidence = res.Confidence

	organizerKey, err := identity.Canonicalize(ev.Organizer.Name, ev.Organizer.Email)
	userOrganized := err == nil && x.Normalizer.IsSelf(organizerKey)

	isBroadcastCat := res.Category == classify.CategoryBroadcast
	oneOnOne := size == 2 && !isBroadcastCat
	smallWorking := size >= 3 && size <= 8 && smallWorkingCategory(res.Category)
	broadcast := size > 20 || isBroadcastCat
	genuine := oneOnOne || userOrganized || smallWorking ||
		(res.Category == classify.CategoryStrategic && res.Confidence >= 0.6)

	base := x.baseScore(ev, res, size, userOrganized)

	for _, att := range participants {
		key, err := identity.Canonicalize(att.Name, att.Email)
		if err != nil {
			stats.InvalidIdentity++
			x.Log.Debug().Str("subject", ev.Subject).Msg("attendee with no usable identity")
			continue
		}
		switch {
		case x.Normalizer.IsSelf(key):
			stats.FilteredSelf++
			continue
		case x.Normalizer.IsSystem(key):
			stats.FilteredSystem++
			continue
		case x.Normalizer.IsFormer(key) || x.Normalizer.IsFormerName(att.Name):
			stats.FilteredFormer++
			continue
		}

		person, err := x.Directory.Upsert(att.Name, att.Email)
		if err != nil {
			stats.InvalidIdentity++
			continue
		}
		sig, ok := signals[person.CanonicalKey]
		if !ok {
			sig = types.NewPersonSignals(person)
			signals[person.CanonicalKey] = sig
		}

		sig.TotalMeetings++
		if oneOnOne {
			sig.OneOnOne++
		}
		if userOrganized {
			sig.OrganizedByUser++
		}
		if smallWorking {
			sig.SmallWorking++
		}
		if broadcast {
			sig.Broadcast++
		}
		if genuine {
			sig.GenuineCollab++
		}

		sig.MeetingScore += base
		sig.ConfidenceSum += res.Confidence
		if ev.Start.After(sig.LastMeetingAt) {
			sig.LastMeetingAt = ev.Start
		}

		if len(sig.MeetingEvidence) < x.EvidenceCap {
			sig.MeetingEvidence = append(sig.MeetingEvidence, types.MeetingEvidence{
				Subject:    ev.Subject,
				Date:       ev.Start.Format("2006-01-02"),
				Type:       res.SpecificType,
				Category:   res.Category,
				Size:       size,
				BaseScore:  base,
				IsExternal: externalDomain(att.Email, x.UserDomain),
			})
		}
	}
}

// baseScore computes one event's additive contribution (R3):
//
//	w_type × size_factor × recency_factor × organizer_factor × confidence_factor
//
// with the ×0.5 penalty when the event had nothing to classify.
func (x *Extractor) baseScore(ev *types.MeetingEvent, res classify.Result, size int, userOrganized bool) float64 {
	base := classify.TypeWeight(res.SpecificType, res.Category) *
		sizeFactor(size) *
		recencyFactor(daysSince(ev.Start, x.Today)) *
		organizerFactor(userOrganized) *
		confidenceFactor(res.Confidence)

	if strings.TrimSpace(ev.Subject) == "" && strings.TrimSpace(ev.BodyPreview) == "" {
		base *= 0.5
	}
	return base
}

// smallWorkingCategory reports whether the category qualifies a 3-8
// person meeting as small working (R2.4).
func smallWorkingCategory(category string) bool {
	switch category {
	case classify.CategoryStrategic, classify.CategoryCadence, classify.CategoryExternal:
		return true
	}
	return false
}

// sizeFactor discounts by audience size; >50 attendees contribute
// nothing (R3.2).
func sizeFactor(size int) float64 {
	switch {
	case size <= 2:
		return 1.0
	case size <= 8:
		return 0.8
	case size <= 20:
		return 0.5
	case size <= 50:
		return 0.1
	}
	return 0.0
}

// recencyFactor boosts recent events and discounts stale ones (R3.3).
func recencyFactor(days int) float64 {
	switch {
	case days <= 7:
		return 2.0
	case days <= 30:
		return 1.5
	case days <= 90:
		return 1.2
	case days <= 180:
		return 0.8
	}
	return 0.5
}

func organizerFactor(userOrganized bool) float64 {
	if userOrganized {
		return 1.25
	}
	return 1.0
}

func confidenceFactor(confidence float64) float64 {
	return 0.5 + 0.5*confidence
}

// daysSince returns whole days from t to today, never negative. A zero t
// is treated as maximally stale.
func daysSince(t, today time.Time) int {
	if t.IsZero() {
		return 1 << 20
	}
	d := int(today.Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// externalDomain reports whether email belongs to a different domain
// than the subject user. Reported on evidence only; never scored.
func externalDomain(email, userDomain string) bool {
	if userDomain == "" {
		return false
	}
	_, domain, ok := strings.Cut(strings.ToLower(email), "@")
	return ok && domain != userDomain
}
