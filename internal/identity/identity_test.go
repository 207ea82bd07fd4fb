// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"errors"
	"testing"

	"github.com/pdiddy/collab-engine/pkg/types"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		inName  string
		inEmail string
		want    string
		wantErr bool
	}{
		{"email wins over name", "Jane Doe", "Jane.Doe@Contoso.com", "jane.doe@contoso.com", false},
		{"email trimmed and lowered", "", "  ADA@Example.COM ", "ada@example.com", false},
		{"name fallback collapses whitespace", "  Jane   Q.  Doe ", "", "jane q. doe", false},
		{"both blank fails", "   ", "", "", true},
		{"whitespace-only email falls back to name", "Bob", "   ", "bob", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.inName, tt.inEmail)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIdentity) {
					t.Fatalf("err = %v, want ErrInvalidIdentity", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Canonicalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizerSelf(t *testing.T) {
	n := NewNormalizer(types.UserIdentity{Name: "Sam Ortiz", Email: "sam@contoso.com"}, nil, nil)

	if !n.IsSelf("sam@contoso.com") {
		t.Error("email key should be self")
	}
	if !n.IsSelf("sam ortiz") {
		t.Error("name key should be self")
	}
	if n.IsSelf("pat@contoso.com") {
		t.Error("other person flagged as self")
	}
}

func TestNormalizerSystem(t *testing.T) {
	n := NewNormalizer(types.UserIdentity{}, []string{"noreply", "bookings@", "Room-"}, nil)

	for _, key := range []string{
		"noreply@contoso.com",
		"bookings@contoso.com",
		"room-4a@contoso.com",
	} {
		if !n.IsSystem(key) {
			t.Errorf("IsSystem(%q) = false, want true", key)
		}
	}
	if n.IsSystem("jane@contoso.com") {
		t.Error("regular address flagged as system")
	}
}

func TestNormalizerFormer(t *testing.T) {
	n := NewNormalizer(types.UserIdentity{}, nil, []string{"  Alex   Kim ", "old.hand@contoso.com"})

	if !n.IsFormer("alex kim") {
		t.Error("normalized former name not matched")
	}
	if !n.IsFormerName("ALEX  KIM") {
		t.Error("IsFormerName should fold case and whitespace")
	}
	if !n.IsFormer("old.hand@contoso.com") {
		t.Error("former email key not matched")
	}
	if n.IsFormer("jane@contoso.com") {
		t.Error("current employee flagged as former")
	}
}

func TestDirectoryDedup(t *testing.T) {
	d := NewDirectory()

	p1, err := d.Upsert("Jane Doe", "jane@contoso.com")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := d.Upsert("JANE DOE", "Jane@Contoso.com")
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Fatal("same email should map to one Person")
	}
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
	if p1.DisplayName != "Jane Doe" {
		t.Errorf("first display name should win, got %q", p1.DisplayName)
	}
	// Case-only variants are not aliases.
	if len(p1.Aliases) != 0 {
		t.Errorf("aliases = %v, want none", p1.Aliases)
	}

	if _, err := d.Upsert("Jane A. Doe", "jane@contoso.com"); err != nil {
		t.Fatal(err)
	}
	if len(p1.Aliases) != 1 || p1.Aliases[0] != "Jane A. Doe" {
		t.Errorf("aliases = %v, want [Jane A. Doe]", p1.Aliases)
	}
}

func TestDirectoryNameOnlyThenEmail(t *testing.T) {
	d := NewDirectory()

	p, err := d.Upsert("Pat Lee", "")
	if err != nil {
		t.Fatal(err)
	}
	if p.CanonicalKey != "pat lee" {
		t.Fatalf("key = %q, want %q", p.CanonicalKey, "pat lee")
	}
	if p.PrimaryEmail != "" {
		t.Fatalf("unexpected email %q", p.PrimaryEmail)
	}

	// A later record with an email creates a distinct person: keys join on
	// email when present, name otherwise.
	q, err := d.Upsert("Pat Lee", "pat@contoso.com")
	if err != nil {
		t.Fatal(err)
	}
	if q == p {
		t.Error("email-keyed person should be distinct from name-keyed one")
	}
}
