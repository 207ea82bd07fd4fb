// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine orchestrates one full ranking run: load the input
// snapshots, fold them into per-person signals, score, gate, label, and
// write the ranked report. The pipeline is strictly sequential; each
// stage finishes before the next starts.
// Implements: prd010-engine (R1-R5);
//
//	docs/ARCHITECTURE § Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/collab-engine/internal/calendar"
	"github.com/pdiddy/collab-engine/internal/chat"
	"github.com/pdiddy/collab-engine/internal/classify"
	"github.com/pdiddy/collab-engine/internal/docshare"
	"github.com/pdiddy/collab-engine/internal/dormancy"
	"github.com/pdiddy/collab-engine/internal/graphrank"
	"github.com/pdiddy/collab-engine/internal/identity"
	"github.com/pdiddy/collab-engine/internal/rank"
	"github.com/pdiddy/collab-engine/internal/score"
	"github.com/pdiddy/collab-engine/internal/snapshot"
	"github.com/pdiddy/collab-engine/pkg/types"
)

// ErrConfig marks configuration the engine cannot run with. The CLI maps
// it to its own exit code.
var ErrConfig = errors.New("invalid configuration")

// ErrInput marks a fatal input failure under strict mode.
var ErrInput = errors.New("input snapshot")

// Engine runs the ranking pipeline for one configuration.
type Engine struct {
	cfg types.EngineConfig
	log zerolog.Logger

	// now is the wall clock, replaceable in tests.
	now func() time.Time
}

// New builds an Engine. Defaults are applied here so callers can hand in
// a sparse configuration.
func New(cfg types.EngineConfig, log zerolog.Logger) *Engine {
	cfg.ApplyDefaults()
	return &Engine{cfg: cfg, log: log, now: time.Now}
}

// Run executes the full pipeline and returns the report. When OutputPath
// is set the report is also written atomically before returning (R5.2).
func (e *Engine) Run(ctx context.Context) (*types.Report, error) {
	if e.cfg.User.Email == "" && e.cfg.User.Name == "" {
		return nil, fmt.Errorf("%w: subject user has neither email nor name", ErrConfig)
	}

	today, err := e.resolveToday()
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("today", today.Format("2006-01-02")).
		Str("user", e.cfg.User.Email).Msg("starting ranking run")

	classifier, cache, err := e.buildClassifier()
	if err != nil {
		return nil, err
	}
	if cache != nil {
		defer cache.Close()
	}

	var warnings types.Warnings

	events, err := loadSource(e, "calendar", e.cfg.Inputs.Calendar, &warnings, snapshot.LoadCalendar)
	if err != nil {
		return nil, err
	}
	chats, err := loadSource(e, "chats", e.cfg.Inputs.Chats, &warnings, snapshot.LoadChats)
	if err != nil {
		return nil, err
	}
	shares, err := loadSource(e, "documents", e.cfg.Inputs.Documents, &warnings, snapshot.LoadDocShares)
	if err != nil {
		return nil, err
	}
	graphPeople, err := loadSource(e, "graph_people", e.cfg.Inputs.GraphPeople, &warnings, snapshot.LoadGraphPeople)
	if err != nil {
		return nil, err
	}

	norm := identity.NewNormalizer(e.cfg.User, e.cfg.SystemAccounts, e.cfg.FormerEmployees)
	dir := identity.NewDirectory()
	signals := make(map[string]*types.PersonSignals)

	calStats := (&calendar.Extractor{
		Classifier:  classifier,
		Normalizer:  norm,
		Directory:   dir,
		Today:       today,
		EvidenceCap: e.cfg.EvidenceCap,
		UserDomain:  userDomain(e.cfg.User.Email),
		Log:         e.log,
	}).Extract(ctx, events, signals)

	chatStats := (&chat.Extractor{Normalizer: norm, Directory: dir}).Extract(chats, signals)
	docStats := (&docshare.Extractor{Normalizer: norm, Directory: dir}).Extract(shares, signals)
	graphStats := graphrank.Import(graphPeople, norm, dir, signals)

	warnings.InvalidIdentity = calStats.InvalidIdentity + chatStats.InvalidIdentity +
		docStats.InvalidIdentity + graphStats.InvalidIdentity
	warnings.FilteredSelf = calStats.FilteredSelf + chatStats.FilteredSelf + graphStats.FilteredSelf
	warnings.FilteredSystem = calStats.FilteredSystem + chatStats.FilteredSystem +
		docStats.FilteredSystem + graphStats.FilteredSystem
	warnings.FilteredFormer = calStats.FilteredFormer + chatStats.FilteredFormer +
		docStats.FilteredFormer + graphStats.FilteredFormer
	warnings.ClassifierFallbacks = classifier.Fallbacks()
	warnings.InboundSharesIgnored = docStats.Inbound

	e.log.Info().
		Int("events", calStats.Events).
		Int("chat_records", chatStats.Records).
		Int("shares", docStats.Shares).
		Int("graph_people", graphStats.People).
		Int("persons", len(signals)).
		Msg("signal extraction complete")

	entries, err := e.scoreAndGate(signals, today)
	if err != nil {
		return nil, err
	}

	collaborators, dormantList := rank.Rank(entries, e.cfg.DormantTopN)

	report := &types.Report{
		Summary: types.Summary{
			GeneratedAt:       e.now().UTC().Format(time.RFC3339),
			Today:             today.Format("2006-01-02"),
			Counts:            rank.Counts(collaborators, dormantList),
			ClassifierBackend: classifier.BackendName(),
			Warnings:          warnings,
		},
		Collaborators:        collaborators,
		DormantCollaborators: dormantList,
	}

	if e.cfg.OutputPath != "" {
		if err := rank.WriteFile(report, e.cfg.OutputPath); err != nil {
			return nil, err
		}
		e.log.Info().Str("path", e.cfg.OutputPath).
			Int("ranked", report.Summary.Counts.Total).Msg("report written")
	}
	return report, nil
}

// scoreAndGate walks the signal map in key order, computes scores,
// enforces the data-model invariants, and keeps only gated persons.
func (e *Engine) scoreAndGate(signals map[string]*types.PersonSignals, today time.Time) ([]rank.Entry, error) {
	keys := make([]string, 0, len(signals))
	for k := range signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []rank.Entry
	for _, k := range keys {
		sig := signals[k]
		s := score.Compute(sig, today)
		if err := score.CheckInvariants(sig, s); err != nil {
			return nil, err
		}
		if !score.Gated(sig, s) {
			continue
		}
		entries = append(entries, rank.Entry{
			Sig:      sig,
			Scored:   s,
			Dormancy: dormancy.Analyze(sig, s.FinalScore, e.cfg.Dormancy, today),
		})
	}
	return entries, nil
}

// resolveToday parses the configured anchor date or captures the system
// date, once per run (R1.3).
func (e *Engine) resolveToday() (time.Time, error) {
	if e.cfg.Today == "" {
		n := e.now().UTC()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", e.cfg.Today)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: today %q is not YYYY-MM-DD", ErrConfig, e.cfg.Today)
	}
	return t, nil
}

// buildClassifier assembles the classifier per configuration: keyword
// rules (built-in or taxonomy file), the primary backend, and the
// optional cache. LLM startup failure falls back to keywords unless the
// configuration forbids it (R3.2).
func (e *Engine) buildClassifier() (*classify.Classifier, *classify.Cache, error) {
	var rules []classify.Rule
	if path := e.cfg.Classifier.TaxonomyPath; path != "" {
		var err error
		rules, err = classify.LoadRules(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: taxonomy: %v", ErrConfig, err)
		}
	}
	keyword := classify.NewKeywordBackend(rules)

	var primary classify.Backend = keyword
	if e.cfg.Classifier.Backend == types.BackendLLM {
		llm, err := classify.NewLLMBackend(e.cfg.Classifier.LLM)
		switch {
		case err == nil:
			primary = llm
		case e.cfg.Classifier.LLM.DisableFallback:
			return nil, nil, fmt.Errorf("%w: llm backend: %v", ErrConfig, err)
		default:
			e.log.Warn().Err(err).Msg("llm backend unavailable, using keyword classifier")
		}
	}

	opts := []classify.Option{classify.WithLogger(e.log)}
	var cache *classify.Cache
	if path := e.cfg.Classifier.CachePath; path != "" {
		c, err := classify.OpenCache(path)
		if err != nil {
			// A broken cache degrades the run, it does not fail it.
			e.log.Warn().Err(err).Str("path", path).Msg("classification cache unavailable")
		} else {
			cache = c
			opts = append(opts, classify.WithCache(c))
		}
	}
	return classify.New(primary, keyword, opts...), cache, nil
}

// loadSource loads one snapshot. An empty path means the source was not
// configured and runs empty without a warning. A load failure is fatal
// under strict mode; otherwise the source is omitted and recorded (R2.3).
func loadSource[T any](e *Engine, name, path string, w *types.Warnings, load func(string) ([]T, error)) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	records, err := load(path)
	if err != nil {
		if e.cfg.StrictInputs {
			return nil, fmt.Errorf("%w %s: %v", ErrInput, name, err)
		}
		e.log.Warn().Err(err).Str("source", name).Msg("input snapshot omitted")
		w.SourcesOmitted = append(w.SourcesOmitted, name)
		return nil, nil
	}
	return records, nil
}

func userDomain(email string) string {
	_, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return ""
	}
	return domain
}
