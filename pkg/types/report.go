// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DormancyLabel partitions ranked collaborators by days since last contact.
type DormancyLabel string

const (
	DormancyActive   DormancyLabel = "active"
	DormancyCooling  DormancyLabel = "cooling"
	DormancyDormant  DormancyLabel = "dormant"
	DormancyHighRisk DormancyLabel = "high_risk"

	// DormancyUnknown marks gated persons with no timestamped interaction
	// (e.g. graph-only). They are reported under collaborators with this
	// label and counted separately in the summary.
	DormancyUnknown DormancyLabel = "unknown"
)

// Evidence bundles the capped per-source excerpts attached to a ranked
// person.
type Evidence struct {
	Meetings  []MeetingEvidence `json:"meetings,omitempty" yaml:"meetings,omitempty"`
	Chats     []ChatEvidence    `json:"chats,omitempty" yaml:"chats,omitempty"`
	Documents []DocEvidence     `json:"documents,omitempty" yaml:"documents,omitempty"`

	// GraphRank is the provider's 1-based rank when available.
	GraphRank int `json:"graph_rank,omitempty" yaml:"graph_rank,omitempty"`
}

// RankedPerson is one entry of the final ranked output.
// Invariants (prd007-scoring R4, prd009-ranking R1): FinalScore >= 0,
// Confidence in [0,1], and the output ordering is FinalScore desc,
// ImportanceScore desc, TotalMeetings desc, CanonicalKey asc.
type RankedPerson struct {
	Person Person `json:"person" yaml:"person"`

	FinalScore      float64 `json:"final_score" yaml:"final_score"`
	ImportanceScore float64 `json:"importance_score" yaml:"importance_score"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`

	TotalMeetings int `json:"total_meetings" yaml:"total_meetings"`

	DormancyLabel        DormancyLabel `json:"dormancy_label" yaml:"dormancy_label"`
	DaysSinceLastContact *int          `json:"days_since_last_contact,omitempty" yaml:"days_since_last_contact,omitempty"`
	LastContactKind      ContactKind   `json:"last_contact_kind,omitempty" yaml:"last_contact_kind,omitempty"`

	// ChatOnly and DocOnly mark persons ranked without calendar evidence.
	ChatOnly bool `json:"chat_only,omitempty" yaml:"chat_only,omitempty"`
	DocOnly  bool `json:"doc_only,omitempty" yaml:"doc_only,omitempty"`

	Evidence Evidence `json:"evidence" yaml:"evidence"`
}

// SummaryCounts tallies the dormancy partition of the ranked output.
type SummaryCounts struct {
	Total          int `json:"total" yaml:"total"`
	Active         int `json:"active" yaml:"active"`
	Cooling        int `json:"cooling" yaml:"cooling"`
	Dormant        int `json:"dormant" yaml:"dormant"`
	HighRisk       int `json:"high_risk" yaml:"high_risk"`
	UnknownRecency int `json:"unknown_recency" yaml:"unknown_recency"`
}

// Warnings carries soft-failure diagnostics. The run still produces a
// complete output document when any of these are non-zero (prd010-engine
// R4.3).
type Warnings struct {
	SourcesOmitted       []string `json:"sources_omitted,omitempty" yaml:"sources_omitted,omitempty"`
	InvalidIdentity      int      `json:"invalid_identity,omitempty" yaml:"invalid_identity,omitempty"`
	FilteredSelf         int      `json:"filtered_self,omitempty" yaml:"filtered_self,omitempty"`
	FilteredSystem       int      `json:"filtered_system,omitempty" yaml:"filtered_system,omitempty"`
	FilteredFormer       int      `json:"filtered_former,omitempty" yaml:"filtered_former,omitempty"`
	ClassifierFallbacks  int      `json:"classifier_fallbacks,omitempty" yaml:"classifier_fallbacks,omitempty"`
	InboundSharesIgnored int      `json:"inbound_shares_ignored,omitempty" yaml:"inbound_shares_ignored,omitempty"`
}

// Summary heads the report document.
type Summary struct {
	GeneratedAt       string        `json:"generated_at" yaml:"generated_at"`
	Today             string        `json:"today" yaml:"today"`
	Counts            SummaryCounts `json:"counts" yaml:"counts"`
	ClassifierBackend string        `json:"classifier_backend" yaml:"classifier_backend"`
	Warnings          Warnings      `json:"warnings" yaml:"warnings"`
}

// Report is the single JSON document one run emits.
type Report struct {
	Summary              Summary        `json:"summary" yaml:"summary"`
	Collaborators        []RankedPerson `json:"collaborators" yaml:"collaborators"`
	DormantCollaborators []RankedPerson `json:"dormant_collaborators" yaml:"dormant_collaborators"`
}
