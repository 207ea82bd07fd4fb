// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot decodes the four JSON input snapshots into engine
// records. Each loader fails only for its own source; the engine decides
// whether that is fatal (strict mode) or the source runs empty.
// Implements: prd010-engine (R2);
//
//	docs/ARCHITECTURE § Inputs.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/collab-engine/pkg/types"
)

// ErrMalformedInput marks a snapshot file that exists but cannot be
// decoded or has an unexpected root type.
var ErrMalformedInput = errors.New("malformed input snapshot")

// timeLayouts are the accepted timestamp formats, Graph's 7-digit
// fractional form included.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a snapshot timestamp. The zero time is returned for
// empty or unparseable values; callers treat zero as "no timestamp".
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// graphDateTime is Graph's {dateTime, timeZone} pair.
type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// graphEmailAddress is Graph's nested {name, address} pair.
type graphEmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type rawAttendee struct {
	Type         string            `json:"type"`
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type rawEvent struct {
	ID          string        `json:"id"`
	Subject     string        `json:"subject"`
	BodyPreview string        `json:"bodyPreview"`
	Start       graphDateTime `json:"start"`
	End         graphDateTime `json:"end"`
	Organizer   struct {
		EmailAddress graphEmailAddress `json:"emailAddress"`
	} `json:"organizer"`
	Attendees       []rawAttendee `json:"attendees"`
	IsOnlineMeeting bool          `json:"isOnlineMeeting"`
	IsCancelled     bool          `json:"isCancelled"`
}

// decodeList decodes a snapshot whose root is either a bare JSON array
// or a Graph-style {"value": [...]} envelope.
func decodeList(path string, data []byte, out any) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil || envelope.Value == nil {
			return fmt.Errorf("%w: %s: expected array or {\"value\": [...]}", ErrMalformedInput, path)
		}
		data = envelope.Value
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	return nil
}

func attendeeRole(t string) types.AttendeeRole {
	switch strings.ToLower(t) {
	case "optional":
		return types.RoleOptional
	case "resource":
		return types.RoleResource
	}
	return types.RoleRequired
}

// LoadCalendar reads the calendar events snapshot.
func LoadCalendar(path string) ([]types.MeetingEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []rawEvent
	if err := decodeList(path, data, &raw); err != nil {
		return nil, err
	}

	events := make([]types.MeetingEvent, 0, len(raw))
	for _, r := range raw {
		ev := types.MeetingEvent{
			ID:          r.ID,
			Subject:     r.Subject,
			BodyPreview: r.BodyPreview,
			Start:       ParseTime(r.Start.DateTime),
			End:         ParseTime(r.End.DateTime),
			Organizer: types.Attendee{
				Name:  r.Organizer.EmailAddress.Name,
				Email: r.Organizer.EmailAddress.Address,
			},
			IsOnline:    r.IsOnlineMeeting,
			IsCancelled: r.IsCancelled,
		}
		// Calendar invariant: end >= start. Clamp rather than drop so the
		// event still counts with zero duration.
		if ev.End.Before(ev.Start) {
			ev.End = ev.Start
		}
		for _, a := range r.Attendees {
			ev.Attendees = append(ev.Attendees, types.Attendee{
				Name:  a.EmailAddress.Name,
				Email: a.EmailAddress.Address,
				Role:  attendeeRole(a.Type),
			})
		}
		events = append(events, ev)
	}
	return events, nil
}

type rawChat struct {
	DisplayName    string `json:"display_name"`
	Email          string `json:"email"`
	ChatType       string `json:"chat_type"`
	ChatCount      int    `json:"chat_count"`
	FirstMessageAt string `json:"first_message_at"`
	LastMessageAt  string `json:"last_message_at"`
}

// LoadChats reads the Teams chat analysis snapshot: a map from
// other-person key to conversation summary. The map key doubles as the
// identity when the record carries no name or email of its own.
func LoadChats(path string) ([]types.ChatRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]rawChat
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}

	records := make([]types.ChatRecord, 0, len(raw))
	for key, r := range raw {
		rec := types.ChatRecord{
			OtherName:      r.DisplayName,
			OtherEmail:     r.Email,
			ChatType:       types.ChatType(r.ChatType),
			Count:          r.ChatCount,
			FirstMessageAt: ParseTime(r.FirstMessageAt),
			LastMessageAt:  ParseTime(r.LastMessageAt),
		}
		if rec.OtherName == "" && rec.OtherEmail == "" {
			if strings.Contains(key, "@") {
				rec.OtherEmail = key
			} else {
				rec.OtherName = key
			}
		}
		records = append(records, rec)
	}
	// The map iteration order is random; sort for run determinism.
	// Email-keyed records first, name-only records after them.
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if (a.OtherEmail == "") != (b.OtherEmail == "") {
			return b.OtherEmail == ""
		}
		if a.OtherEmail != b.OtherEmail {
			return a.OtherEmail < b.OtherEmail
		}
		return a.OtherName < b.OtherName
	})
	return records, nil
}

type rawShare struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	DocumentID     string `json:"document_id"`
	DocumentName   string `json:"document_name"`
	Surface        string `json:"surface"`
	ShareType      string `json:"share_type"`
	SharedAt       string `json:"shared_at"`
	RecipientCount int    `json:"recipient_count"`
	Inbound        bool   `json:"inbound"`
	Inherited      bool   `json:"inherited"`
}

// LoadDocShares reads the document collaboration snapshot.
func LoadDocShares(path string) ([]types.DocShare, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []rawShare
	if err := decodeList(path, data, &raw); err != nil {
		return nil, err
	}

	shares := make([]types.DocShare, 0, len(raw))
	for _, r := range raw {
		shares = append(shares, types.DocShare{
			RecipientName:  r.RecipientName,
			RecipientEmail: r.RecipientEmail,
			DocumentID:     r.DocumentID,
			DocumentName:   r.DocumentName,
			Surface:        types.ShareSurface(strings.ToLower(r.Surface)),
			ShareType:      types.ShareType(strings.ToLower(r.ShareType)),
			SharedAt:       ParseTime(r.SharedAt),
			RecipientCount: r.RecipientCount,
			Inbound:        r.Inbound,
			Inherited:      r.Inherited,
		})
	}
	return shares, nil
}

type rawGraphPerson struct {
	Name                 string  `json:"name"`
	DisplayName          string  `json:"displayName"`
	Email                string  `json:"email"`
	JobTitle             string  `json:"jobTitle"`
	RelevanceScore       float64 `json:"relevanceScore"`
	ScoredEmailAddresses []struct {
		Address        string  `json:"address"`
		RelevanceScore float64 `json:"relevanceScore"`
	} `json:"scoredEmailAddresses"`
}

// LoadGraphPeople reads the identity provider's people ranking snapshot,
// preserving provider order (rank 1 first). Both the flattened form and
// Graph's scoredEmailAddresses form are accepted.
func LoadGraphPeople(path string) ([]types.GraphPerson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []rawGraphPerson
	if err := decodeList(path, data, &raw); err != nil {
		return nil, err
	}

	people := make([]types.GraphPerson, 0, len(raw))
	for _, r := range raw {
		p := types.GraphPerson{
			Name:           r.Name,
			Email:          r.Email,
			JobTitle:       r.JobTitle,
			RelevanceScore: r.RelevanceScore,
		}
		if p.Name == "" {
			p.Name = r.DisplayName
		}
		if p.Email == "" && len(r.ScoredEmailAddresses) > 0 {
			p.Email = r.ScoredEmailAddresses[0].Address
			if p.RelevanceScore == 0 {
				p.RelevanceScore = r.ScoredEmailAddresses[0].RelevanceScore
			}
		}
		people = append(people, p)
	}
	return people, nil
}
