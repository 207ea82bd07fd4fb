// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Request carries the event features the classifier sees. The engine
// never hands backends the raw event.
type Request struct {
	Subject       string
	BodyPreview   string
	AttendeeCount int
	DurationMin   int
}

// Fingerprint returns a stable ID for the request, used as the cache
// key. First 16 hex characters of SHA-256 over all four fields.
func (r Request) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d", r.Subject, r.BodyPreview, r.AttendeeCount, r.DurationMin)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// Classification is the shared backend output contract (R1.2).
type Classification struct {
	SpecificType string  `json:"specific_type"`
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Backend classifies one meeting. Implementations may fail; the
// Classifier wrapper is what guarantees totality.
type Backend interface {
	Name() string
	Classify(ctx context.Context, req Request) (Classification, error)
}

// Result is a tagged classification: which backend actually produced it,
// whether it came from the cache, and whether a fallback occurred.
type Result struct {
	Classification
	BackendUsed string
	FromCache   bool
	FellBack    bool
}

// Classifier wraps a primary backend with keyword fallback, hard priors,
// and an optional cache. It is total: Classify never returns an error
// (R4.1).
type Classifier struct {
	primary  Backend
	fallback *KeywordBackend
	cache    *Cache
	log      zerolog.Logger

	fallbacks int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCache attaches a classification cache. Cache errors are logged and
// ignored; a broken cache never fails a classification.
func WithCache(c *Cache) Option {
	return func(cl *Classifier) { cl.cache = c }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) Option {
	return func(cl *Classifier) { cl.log = log }
}

// New builds a Classifier. fallback must not be nil; primary may equal
// fallback when the keyword backend is the configured one.
func New(primary Backend, fallback *KeywordBackend, opts ...Option) *Classifier {
	c := &Classifier{
		primary:  primary,
		fallback: fallback,
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fallbacks returns how many classifications fell back to keywords.
func (c *Classifier) Fallbacks() int {
	return c.fallbacks
}

// BackendName returns the configured primary backend's name.
func (c *Classifier) BackendName() string {
	return c.primary.Name()
}

// Classify labels one meeting. The pipeline treats this as an opaque,
// synchronous, total function: backend failures fall back to keywords
// and hard priors are applied last (R3, R4).
func (c *Classifier) Classify(ctx context.Context, req Request) Result {
	// Events with no subject and no body carry nothing to classify (R3.1).
	if strings.TrimSpace(req.Subject) == "" && strings.TrimSpace(req.BodyPreview) == "" {
		return applyPriors(req, Result{
			Classification: Classification{
				SpecificType: TypeUnknown,
				Category:     CategoryUnknown,
				Confidence:   0.25,
				Reasoning:    "no subject or body",
			},
			BackendUsed: c.primary.Name(),
		})
	}

	fp := req.Fingerprint()
	if c.cache != nil {
		if cls, backend, ok := c.cacheGet(fp); ok {
			return applyPriors(req, Result{Classification: cls, BackendUsed: backend, FromCache: true})
		}
	}

	cls, err := c.primary.Classify(ctx, req)
	if err == nil {
		err = validate(cls)
	}
	if err != nil {
		c.fallbacks++
		c.log.Warn().Err(err).Str("backend", c.primary.Name()).
			Str("subject", req.Subject).Msg("classifier fell back to keywords")
		cls, _ = c.fallback.Classify(ctx, req)
		return applyPriors(req, Result{Classification: cls, BackendUsed: c.fallback.Name(), FellBack: true})
	}

	if c.cache != nil {
		if err := c.cache.Put(fp, cls, c.primary.Name()); err != nil {
			c.log.Warn().Err(err).Msg("classification cache write failed")
		}
	}
	return applyPriors(req, Result{Classification: cls, BackendUsed: c.primary.Name()})
}

func (c *Classifier) cacheGet(fp string) (Classification, string, bool) {
	cls, backend, ok, err := c.cache.Get(fp)
	if err != nil {
		c.log.Warn().Err(err).Msg("classification cache read failed")
		return Classification{}, "", false
	}
	return cls, backend, ok
}

// validate checks backend output against the contract: known category,
// non-empty type, confidence in [0,1] (R1.3).
func validate(cls Classification) error {
	if strings.TrimSpace(cls.SpecificType) == "" {
		return fmt.Errorf("empty specific_type")
	}
	if !validCategories[cls.Category] {
		return fmt.Errorf("unknown category %q", cls.Category)
	}
	if cls.Confidence < 0 || cls.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", cls.Confidence)
	}
	return nil
}

// applyPriors enforces the structural hard priors, which outrank any
// backend (R3.2, R3.3):
//
//   - >50 attendees is a broadcast, full stop; per-attendee collaboration
//     for such an event is zeroed downstream by the size factor.
//   - <=15 min with exactly 2 attendees is a 1:1 unless a high-confidence
//     (>=0.8) non-fallback backend call says otherwise.
func applyPriors(req Request, res Result) Result {
	if req.AttendeeCount > 50 {
		if res.Category != CategoryBroadcast {
			res.SpecificType = TypeBroadcast
			res.Category = CategoryBroadcast
			res.Reasoning = fmt.Sprintf("%d attendees: broadcast prior", req.AttendeeCount)
		}
		if res.Confidence < 0.9 {
			res.Confidence = 0.9
		}
		return res
	}

	if req.AttendeeCount == 2 && req.DurationMin > 0 && req.DurationMin <= 15 {
		override := !res.FellBack && res.BackendUsed == llmBackendName && res.Confidence >= 0.8
		if res.Category != CategoryOneOnOne && !override {
			res.SpecificType = TypeOneOnOne
			res.Category = CategoryOneOnOne
			res.Confidence = 0.85
			res.Reasoning = "short two-person meeting: 1:1 prior"
		}
	}
	return res
}
