// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AttendeeRole is the invitation role of a meeting attendee. Resources
// (rooms, equipment) are excluded from all collaboration counts.
type AttendeeRole string

const (
	RoleRequired AttendeeRole = "required"
	RoleOptional AttendeeRole = "optional"
	RoleResource AttendeeRole = "resource"
)

// Attendee is one entry on a meeting's attendee list, in source order.
type Attendee struct {
	Name  string       `json:"name" yaml:"name"`
	Email string       `json:"email" yaml:"email"`
	Role  AttendeeRole `json:"role" yaml:"role"`
}

// MeetingEvent is one calendar event after snapshot decoding. MeetingType
// and Category are assigned exactly once by the classifier.
type MeetingEvent struct {
	ID          string     `json:"id" yaml:"id"`
	Subject     string     `json:"subject" yaml:"subject"`
	BodyPreview string     `json:"body_preview,omitempty" yaml:"body_preview,omitempty"`
	Start       time.Time  `json:"start" yaml:"start"`
	End         time.Time  `json:"end" yaml:"end"`
	Organizer   Attendee   `json:"organizer" yaml:"organizer"`
	Attendees   []Attendee `json:"attendees" yaml:"attendees"`
	IsOnline    bool       `json:"is_online,omitempty" yaml:"is_online,omitempty"`
	IsCancelled bool       `json:"is_cancelled,omitempty" yaml:"is_cancelled,omitempty"`

	MeetingType string  `json:"meeting_type,omitempty" yaml:"meeting_type,omitempty"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	Confidence  float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// DurationMinutes returns the event length in whole minutes, never negative.
func (e MeetingEvent) DurationMinutes() int {
	if e.End.Before(e.Start) {
		return 0
	}
	return int(e.End.Sub(e.Start).Minutes())
}

// Participants returns the non-resource attendees.
func (e MeetingEvent) Participants() []Attendee {
	out := make([]Attendee, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		if a.Role == RoleResource {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ChatRecord is one per-conversation summary from the chat analysis snapshot.
type ChatRecord struct {
	// OtherName and OtherEmail identify the counterpart; at least one is set.
	OtherName  string `json:"other_name,omitempty" yaml:"other_name,omitempty"`
	OtherEmail string `json:"other_email,omitempty" yaml:"other_email,omitempty"`

	ChatType       ChatType  `json:"chat_type" yaml:"chat_type"`
	Count          int       `json:"count" yaml:"count"`
	FirstMessageAt time.Time `json:"first_message_at" yaml:"first_message_at"`
	LastMessageAt  time.Time `json:"last_message_at" yaml:"last_message_at"`
}

// ShareSurface is where an outbound document share happened.
type ShareSurface string

const (
	SurfaceOneDrive  ShareSurface = "onedrive"
	SurfaceTeamsChat ShareSurface = "teams_chat"
)

// ShareType classifies the directness of an outbound share.
type ShareType string

const (
	ShareDirect     ShareType = "direct"
	ShareSmallGroup ShareType = "small_group"
)

// DocShare is one outbound document share from the document collaboration
// snapshot. Inbound shares and broadcasts are dropped by the extractor,
// not here (prd005-document-signals R1.2).
type DocShare struct {
	RecipientName  string       `json:"recipient_name,omitempty" yaml:"recipient_name,omitempty"`
	RecipientEmail string       `json:"recipient_email,omitempty" yaml:"recipient_email,omitempty"`
	DocumentID     string       `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	DocumentName   string       `json:"document_name" yaml:"document_name"`
	Surface        ShareSurface `json:"surface" yaml:"surface"`
	ShareType      ShareType    `json:"share_type" yaml:"share_type"`
	SharedAt       time.Time    `json:"shared_at,omitzero" yaml:"shared_at,omitempty"`

	// RecipientCount is the total audience of the grant, when the source
	// reports it. Zero means unreported (treated as 1 for direct shares).
	RecipientCount int `json:"recipient_count,omitempty" yaml:"recipient_count,omitempty"`

	// Inbound marks shares where the subject user is the recipient.
	Inbound bool `json:"inbound,omitempty" yaml:"inbound,omitempty"`

	// Inherited marks permission grants inherited from a parent folder.
	Inherited bool `json:"inherited,omitempty" yaml:"inherited,omitempty"`
}

// GraphPerson is one entry from the identity provider's people ranking,
// in provider order (rank 1 first).
type GraphPerson struct {
	Name           string  `json:"name,omitempty" yaml:"name,omitempty"`
	Email          string  `json:"email,omitempty" yaml:"email,omitempty"`
	JobTitle       string  `json:"job_title,omitempty" yaml:"job_title,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}
