// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Person is one deduplicated collaborator. All signal streams join on
// CanonicalKey. Per prd001-identity R1.1: lowercased primary email when
// available, otherwise the normalized display name.
type Person struct {
	// CanonicalKey uniquely identifies the person for the duration of a run.
	CanonicalKey string `json:"canonical_key" yaml:"canonical_key"`

	// DisplayName is the first non-empty display name seen for this person.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Aliases collects later display-name variants (R1.3).
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// PrimaryEmail is the lowercased email address, if any source carried one.
	PrimaryEmail string `json:"primary_email,omitempty" yaml:"primary_email,omitempty"`

	// JobTitle is carried through from the graph people ranking when present.
	JobTitle string `json:"job_title,omitempty" yaml:"job_title,omitempty"`

	// IsSystem marks service accounts (booking bots, room mailboxes, noreply).
	IsSystem bool `json:"is_system,omitempty" yaml:"is_system,omitempty"`

	// IsFormer marks people on the configured former-employees list.
	IsFormer bool `json:"is_former,omitempty" yaml:"is_former,omitempty"`
}

// ChatType orders conversation kinds by directness: oneOnOne > group > meeting.
type ChatType string

const (
	ChatOneOnOne ChatType = "oneOnOne"
	ChatGroup    ChatType = "group"
	ChatMeeting  ChatType = "meeting"
)

// Directness returns the ordering rank of the chat type (higher is more
// direct). Unknown types rank below all known ones.
func (c ChatType) Directness() int {
	switch c {
	case ChatOneOnOne:
		return 3
	case ChatGroup:
		return 2
	case ChatMeeting:
		return 1
	}
	return 0
}

// MeetingEvidence is a compact excerpt of one scored calendar event.
// Evidence is never the raw record (prd009-ranking R3.4).
type MeetingEvidence struct {
	Subject    string  `json:"subject" yaml:"subject"`
	Date       string  `json:"date" yaml:"date"`
	Type       string  `json:"type" yaml:"type"`
	Category   string  `json:"category" yaml:"category"`
	Size       int     `json:"size" yaml:"size"`
	BaseScore  float64 `json:"base_score" yaml:"base_score"`
	IsExternal bool    `json:"is_external,omitempty" yaml:"is_external,omitempty"`
}

// ChatEvidence summarizes the chat relationship with one person.
type ChatEvidence struct {
	ChatType      ChatType `json:"chat_type" yaml:"chat_type"`
	Count         int      `json:"count" yaml:"count"`
	LastMessageAt string   `json:"last_message_at,omitempty" yaml:"last_message_at,omitempty"`
}

// DocEvidence is a compact excerpt of one outbound document share.
type DocEvidence struct {
	DocumentName string `json:"document_name" yaml:"document_name"`
	Surface      string `json:"surface" yaml:"surface"`
	ShareType    string `json:"share_type" yaml:"share_type"`
	SharedAt     string `json:"shared_at,omitempty" yaml:"shared_at,omitempty"`
}

// PersonSignals is the internal per-person aggregate the extractors fill in.
// Each extractor updates only its own slice of the record; once scoring
// starts the aggregate is treated as immutable.
type PersonSignals struct {
	Person *Person

	// Meeting counters (prd003-calendar-signals R2).
	TotalMeetings   int
	OneOnOne        int
	OrganizedByUser int
	SmallWorking    int
	Broadcast       int
	GenuineCollab   int

	// MeetingScore is the additive sum of per-event base scores.
	MeetingScore float64

	// ConfidenceSum accumulates classifier confidence across this person's
	// events; divided by TotalMeetings it yields the confidence index.
	ConfidenceSum float64

	LastMeetingAt time.Time

	// Chat signals (prd004-chat-signals R1, R2).
	ChatCount   int
	ChatType    ChatType
	FirstChatAt time.Time
	LastChatAt  time.Time

	// Document signals (prd005-document-signals R2, R3).
	DirectShares     int
	SmallGroupShares int
	ChatDirectShares int
	ChatGroupShares  int
	UniqueShareDays  map[string]bool
	FirstShareAt     time.Time
	LastShareAt      time.Time
	InboundShares    int // diagnostics only; never scored

	// Graph signals (prd006-graph-ranking R1, R2). GraphRank 0 means absent.
	GraphRank  int
	GraphBoost float64

	// Evidence, capped per source at collection time.
	MeetingEvidence []MeetingEvidence
	ChatEvidence    []ChatEvidence
	DocEvidence     []DocEvidence
}

// NewPersonSignals returns an empty aggregate for p.
func NewPersonSignals(p *Person) *PersonSignals {
	return &PersonSignals{
		Person:          p,
		UniqueShareDays: make(map[string]bool),
	}
}

// TargetedShares returns the number of outbound targeted shares across both
// surfaces.
func (s *PersonSignals) TargetedShares() int {
	return s.DirectShares + s.SmallGroupShares + s.ChatDirectShares + s.ChatGroupShares
}

// LastContact returns the most recent interaction timestamp across all
// sources and the kind of interaction that produced it. ok is false when
// the person has no timestamped interaction at all.
func (s *PersonSignals) LastContact() (at time.Time, kind ContactKind, ok bool) {
	if !s.LastMeetingAt.IsZero() {
		at, kind, ok = s.LastMeetingAt, ContactMeeting, true
	}
	if !s.LastChatAt.IsZero() && s.LastChatAt.After(at) {
		at, kind, ok = s.LastChatAt, ContactChat, true
	}
	if !s.LastShareAt.IsZero() && s.LastShareAt.After(at) {
		at, kind, ok = s.LastShareAt, ContactShare, true
	}
	return at, kind, ok
}

// ContactKind names the source of the most recent interaction.
type ContactKind string

const (
	ContactMeeting ContactKind = "meeting"
	ContactChat    ContactKind = "chat"
	ContactShare   ContactKind = "share"
)
