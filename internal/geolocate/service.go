package geolocate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/cache"
	"github.com/linnemanlabs/beacon/internal/hf"
)

const (
	// DefaultTTL is how long resolved locations stay cached.
	DefaultTTL = time.Hour

	// nerTimeout bounds a single NER call. Timing out the call never
	// propagates to sibling work; the cascade just moves on.
	nerTimeout = 10 * time.Second
)

// placeIndicators qualify "miscellaneous" NER entities as location-like.
var placeIndicators = []string{"street", "avenue", "road", "park", "bridge", "center"}

// Recognizer is the external named-entity capability. *hf.Client satisfies it.
type Recognizer interface {
	TokenClassification(ctx context.Context, model, text string) ([]hf.Entity, error)
}

// Hooks are optional observation callbacks invoked during extraction.
// The zero value is valid and observes nothing.
type Hooks struct {
	OnCacheHit func()
	OnResult   func(method Method, duration float64)
	OnNERCall  func(duration float64, failed bool)
}

// strategy is one step of the resolution cascade: it returns a definite
// answer or "no answer", never an error.
type strategy struct {
	name    string
	method  Method
	resolve func(ctx context.Context, text string) (string, bool)
}

// Service resolves locations from free text, consulting the cache first and
// evaluating strategies in order until one yields a definite answer.
type Service struct {
	cache      *cache.Store
	ttl        time.Duration
	strategies []strategy
	logger     log.Logger
	hooks      Hooks
}

// NewService creates a resolver. rec may be nil when no NER credential is
// configured; the cascade then consists of the pattern fallback alone.
func NewService(store *cache.Store, rec Recognizer, model string, logger log.Logger, hooks Hooks) *Service {
	if store == nil {
		panic(xerrors.New("cache store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}

	s := &Service{
		cache:  store,
		ttl:    DefaultTTL,
		logger: logger,
		hooks:  hooks,
	}

	if rec != nil {
		s.strategies = append(s.strategies, strategy{
			name:    "ner",
			method:  MethodNERAndPatterns,
			resolve: s.nerStrategy(rec, model),
		})
	}
	s.strategies = append(s.strategies, strategy{
		name:   "patterns",
		method: MethodPatternsOnly,
		resolve: func(_ context.Context, text string) (string, bool) {
			return matchPatterns(text)
		},
	})

	return s
}

// SetTTL overrides the cache TTL for resolved locations.
func (s *Service) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Extract resolves a location from description. It never returns an error:
// every internal failure degrades into a well-formed Extraction and a logged
// diagnostic.
func (s *Service) Extract(ctx context.Context, description string) (out Extraction) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, fmt.Errorf("panic: %v", r), "location extraction panicked")
			out = Extraction{Location: LocationUnknown, Confidence: 0, Method: MethodFailed}
		}
	}()

	key := cacheKey(description)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(Extraction); ok {
			if s.hooks.OnCacheHit != nil {
				s.hooks.OnCacheHit()
			}
			return cached
		}
	}

	for _, st := range s.strategies {
		loc, ok := st.resolve(ctx, description)
		if !ok {
			continue
		}

		out = Extraction{Location: loc, Confidence: 0.8, Method: st.method}
		s.cache.Set(key, out, s.ttl)
		s.observe(out.Method, start)
		s.logger.Info(ctx, "location resolved", "strategy", st.name, "location", loc)
		return out
	}

	// every strategy ran and none answered
	out = Extraction{Location: LocationUnknown, Confidence: 0.1, Method: MethodFailed}
	s.cache.Set(key, out, s.ttl)
	s.observe(out.Method, start)
	return out
}

func (s *Service) observe(m Method, start time.Time) {
	if s.hooks.OnResult != nil {
		s.hooks.OnResult(m, time.Since(start).Seconds())
	}
}

// nerStrategy wraps the external recognizer as a cascade step. Any failure
// is caught here and reported as "no answer", never propagated.
func (s *Service) nerStrategy(rec Recognizer, model string) func(ctx context.Context, text string) (string, bool) {
	return func(ctx context.Context, text string) (string, bool) {
		cctx, cancel := context.WithTimeout(ctx, nerTimeout)
		defer cancel()

		start := time.Now()
		entities, err := rec.TokenClassification(cctx, model, text)
		if s.hooks.OnNERCall != nil {
			s.hooks.OnNERCall(time.Since(start).Seconds(), err != nil)
		}
		if err != nil {
			s.logger.Warn(ctx, "ner call failed, falling back to patterns", "error", err)
			return "", false
		}

		return joinLocationEntities(entities)
	}
}

// joinLocationEntities keeps location-like entities from a NER response and
// concatenates their text. Location and organization groups always qualify;
// miscellaneous entities qualify only when their text carries a place
// indicator word.
func joinLocationEntities(entities []hf.Entity) (string, bool) {
	var parts []string
	for _, e := range entities {
		switch e.Group {
		case "LOC", "ORG":
			parts = append(parts, e.Word)
		case "MISC":
			lower := strings.ToLower(e.Word)
			for _, ind := range placeIndicators {
				if strings.Contains(lower, ind) {
					parts = append(parts, e.Word)
					break
				}
			}
		}
	}

	// strip wordpiece artifacts left by the tokenizer
	joined := strings.ReplaceAll(strings.Join(parts, " "), "##", "")
	joined = strings.Join(strings.Fields(joined), " ")
	if joined == "" {
		return "", false
	}
	return joined, true
}

func cacheKey(description string) string {
	sum := sha256.Sum256([]byte(description))
	return "loc:" + hex.EncodeToString(sum[:])[:16]
}
