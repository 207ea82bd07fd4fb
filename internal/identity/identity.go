// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity canonicalizes people across signal sources and gates
// out the subject user, service accounts, and former employees.
// Implements: prd001-identity (R1-R3);
//
//	docs/ARCHITECTURE § Identity.
package identity

import (
	"errors"
	"strings"

	"github.com/pdiddy/collab-engine/pkg/types"
)

// ErrInvalidIdentity is returned when a record carries neither an email
// nor a display name.
var ErrInvalidIdentity = errors.New("identity: neither email nor name")

// Canonicalize derives the canonical key for a person: the lowercased,
// trimmed email when available, otherwise the lowercased display name
// with whitespace runs collapsed (R1.1).
func Canonicalize(name, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email != "" {
		return strings.ToLower(email), nil
	}
	name = collapseWhitespace(name)
	if name == "" {
		return "", ErrInvalidIdentity
	}
	return strings.ToLower(name), nil
}

// collapseWhitespace trims and folds internal whitespace runs to single
// spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalizer answers the self/system/former questions against the run
// configuration. It is immutable after construction.
type Normalizer struct {
	selfKeys       map[string]bool
	systemPatterns []string
	formerKeys     map[string]bool
}

// NewNormalizer builds a Normalizer from the run configuration. Both the
// user's email and normalized display name count as self keys so either
// form of the identity is dropped (R2.1).
func NewNormalizer(user types.UserIdentity, systemAccounts, formerEmployees []string) *Normalizer {
	n := &Normalizer{
		selfKeys:   make(map[string]bool),
		formerKeys: make(map[string]bool),
	}
	if k, err := Canonicalize("", user.Email); err == nil {
		n.selfKeys[k] = true
	}
	if k, err := Canonicalize(user.Name, ""); err == nil {
		n.selfKeys[k] = true
	}
	for _, p := range systemAccounts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			n.systemPatterns = append(n.systemPatterns, p)
		}
	}
	for _, f := range formerEmployees {
		k := strings.ToLower(collapseWhitespace(f))
		if k != "" {
			n.formerKeys[k] = true
		}
	}
	return n
}

// IsSelf reports whether key identifies the subject user.
func (n *Normalizer) IsSelf(key string) bool {
	return n.selfKeys[key]
}

// IsSystem reports whether key matches any configured system-account
// pattern. Matching is a case-insensitive substring test, so patterns
// like "noreply" or "bookings@" cover whole address families (R2.2).
func (n *Normalizer) IsSystem(key string) bool {
	for _, p := range n.systemPatterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

// IsFormer reports whether key (or the normalized display name it was
// derived from) is on the former-employees list (R2.3).
func (n *Normalizer) IsFormer(key string) bool {
	return n.formerKeys[key]
}

// IsFormerName is like IsFormer but checks a raw display name, for
// sources that key people by email while the exclusion list carries
// names.
func (n *Normalizer) IsFormerName(name string) bool {
	return n.formerKeys[strings.ToLower(collapseWhitespace(name))]
}

// Directory maps canonical keys to Person records. A key maps to exactly
// one Person for the duration of a run; the first non-empty display name
// wins and later variants become aliases (R1.3).
type Directory struct {
	people map[string]*types.Person
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{people: make(map[string]*types.Person)}
}

// Upsert returns the Person for (name, email), creating it on first
// sight. Name variants differing from the stored display name are
// recorded as aliases.
func (d *Directory) Upsert(name, email string) (*types.Person, error) {
	key, err := Canonicalize(name, email)
	if err != nil {
		return nil, err
	}

	name = collapseWhitespace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	p, ok := d.people[key]
	if !ok {
		p = &types.Person{
			CanonicalKey: key,
			DisplayName:  name,
			PrimaryEmail: email,
		}
		d.people[key] = p
		return p, nil
	}

	if p.DisplayName == "" {
		p.DisplayName = name
	} else if name != "" && !strings.EqualFold(name, p.DisplayName) && !containsFold(p.Aliases, name) {
		p.Aliases = append(p.Aliases, name)
	}
	if p.PrimaryEmail == "" {
		p.PrimaryEmail = email
	}
	return p, nil
}

// Lookup returns the Person for key, if present.
func (d *Directory) Lookup(key string) (*types.Person, bool) {
	p, ok := d.people[key]
	return p, ok
}

// Len returns the number of distinct people seen.
func (d *Directory) Len() int {
	return len(d.people)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
