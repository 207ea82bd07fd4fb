// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-engine/pkg/types"
)

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2026-08-14T09:30:00Z", time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)},
		{"graph fractional", "2026-08-14T09:30:00.0000000", time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)},
		{"no zone", "2026-08-14T09:30:00", time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)},
		{"date only", "2026-08-14", time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "not-a-time", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ParseTime(tt.in).Equal(tt.want), "got %v want %v", ParseTime(tt.in), tt.want)
		})
	}
}

const calendarFixture = `[
  {
    "id": "AAMk1",
    "subject": "Weekly 1:1",
    "bodyPreview": "agenda",
    "start": {"dateTime": "2026-08-10T10:00:00.0000000", "timeZone": "UTC"},
    "end": {"dateTime": "2026-08-10T10:30:00.0000000", "timeZone": "UTC"},
    "organizer": {"emailAddress": {"name": "Sam Ortiz", "address": "sam@contoso.com"}},
    "attendees": [
      {"type": "required", "emailAddress": {"name": "Sam Ortiz", "address": "sam@contoso.com"}},
      {"type": "required", "emailAddress": {"name": "Jane Doe", "address": "jane@contoso.com"}},
      {"type": "resource", "emailAddress": {"name": "Room 4A", "address": "room-4a@contoso.com"}}
    ],
    "isOnlineMeeting": true
  },
  {
    "id": "AAMk2",
    "subject": "Backwards event",
    "start": {"dateTime": "2026-08-11T10:00:00Z", "timeZone": "UTC"},
    "end": {"dateTime": "2026-08-11T09:00:00Z", "timeZone": "UTC"},
    "organizer": {"emailAddress": {"name": "Jane Doe", "address": "jane@contoso.com"}},
    "attendees": []
  }
]`

func TestLoadCalendar(t *testing.T) {
	events, err := LoadCalendar(writeSnapshot(t, "calendar.json", calendarFixture))
	require.NoError(t, err)
	require.Len(t, events, 2)

	ev := events[0]
	assert.Equal(t, "Weekly 1:1", ev.Subject)
	assert.Equal(t, "sam@contoso.com", ev.Organizer.Email)
	assert.Equal(t, 30, ev.DurationMinutes())
	assert.Len(t, ev.Attendees, 3)
	assert.Len(t, ev.Participants(), 2, "resources excluded")
	assert.Equal(t, types.RoleResource, ev.Attendees[2].Role)

	// end < start is clamped, never negative.
	assert.Equal(t, 0, events[1].DurationMinutes())
}

func TestLoadCalendarValueEnvelope(t *testing.T) {
	events, err := LoadCalendar(writeSnapshot(t, "calendar.json", `{"value": `+calendarFixture+`}`))
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestLoadCalendarMalformed(t *testing.T) {
	_, err := LoadCalendar(writeSnapshot(t, "calendar.json", `{"events": 7}`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = LoadCalendar(writeSnapshot(t, "calendar.json", `not json`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestLoadCalendarMissingFile(t *testing.T) {
	_, err := LoadCalendar(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadChats(t *testing.T) {
	path := writeSnapshot(t, "chats.json", `{
	  "jane@contoso.com": {"chat_type": "oneOnOne", "chat_count": 30,
	    "first_message_at": "2026-07-01T08:00:00Z", "last_message_at": "2026-08-20T17:12:00Z"},
	  "Pat Lee": {"chat_type": "group", "chat_count": 4,
	    "last_message_at": "2026-06-15T09:00:00Z"},
	  "amir@contoso.com": {"display_name": "Amir N", "email": "amir@contoso.com",
	    "chat_type": "meeting", "chat_count": 2}
	}`)

	records, err := LoadChats(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Deterministic order: email-keyed records first (by email), name-only
	// records after them (by name).
	assert.Equal(t, "amir@contoso.com", records[0].OtherEmail)
	assert.Equal(t, "jane@contoso.com", records[1].OtherEmail)
	assert.Equal(t, "Pat Lee", records[2].OtherName)

	assert.Equal(t, types.ChatOneOnOne, records[1].ChatType)
	assert.Equal(t, 30, records[1].Count)
	assert.False(t, records[1].LastMessageAt.IsZero())
}

func TestLoadDocShares(t *testing.T) {
	path := writeSnapshot(t, "docs.json", `[
	  {"recipient_name": "Jane Doe", "recipient_email": "jane@contoso.com",
	   "document_name": "Q3 Plan.docx", "surface": "OneDrive", "share_type": "Direct",
	   "shared_at": "2026-08-01T12:00:00Z"},
	  {"recipient_name": "Team", "document_name": "notes.md", "surface": "teams_chat",
	   "share_type": "small_group", "recipient_count": 4, "inbound": true}
	]`)

	shares, err := LoadDocShares(path)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, types.SurfaceOneDrive, shares[0].Surface)
	assert.Equal(t, types.ShareDirect, shares[0].ShareType)
	assert.True(t, shares[1].Inbound)
}

func TestLoadGraphPeople(t *testing.T) {
	path := writeSnapshot(t, "people.json", `{"value": [
	  {"displayName": "Jane Doe", "jobTitle": "PM",
	   "scoredEmailAddresses": [{"address": "jane@contoso.com", "relevanceScore": 22.5}]},
	  {"name": "Pat Lee", "email": "pat@contoso.com", "relevanceScore": 11.0}
	]}`)

	people, err := LoadGraphPeople(path)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Jane Doe", people[0].Name)
	assert.Equal(t, "jane@contoso.com", people[0].Email)
	assert.Equal(t, 22.5, people[0].RelevanceScore)
	assert.Equal(t, "PM", people[0].JobTitle)
	assert.Equal(t, "Pat Lee", people[1].Name)
}
