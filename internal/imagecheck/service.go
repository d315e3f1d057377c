package imagecheck

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/cache"
	"github.com/linnemanlabs/beacon/internal/hf"
)

const (
	// DefaultTTL is how long verification results stay cached.
	DefaultTTL = time.Hour

	fetchTimeout    = 15 * time.Second
	classifyTimeout = 20 * time.Second

	// maxImageBytes caps how much of an image we pull for classification.
	maxImageBytes = 10 << 20
)

// disasterVocabulary upgrades an analyzed image to authentic when the top
// label mentions one of these.
var disasterVocabulary = []string{"flood", "fire", "damage", "destruction", "emergency", "disaster"}

// Classifier is the external image-classification capability. *hf.Client
// satisfies it.
type Classifier interface {
	ImageClassification(ctx context.Context, model string, image []byte) ([]hf.Label, error)
}

// Hooks are optional observation callbacks invoked during verification.
// The zero value is valid and observes nothing.
type Hooks struct {
	OnCacheHit func()
	OnResult   func(status Status)
	OnUpstream func(op string, duration float64, failed bool)
}

// Service verifies image URLs, consulting the cache first. With a classifier
// configured it fetches and classifies the image; without one it performs a
// header-only check.
type Service struct {
	cache      *cache.Store
	classifier Classifier
	model      string
	ttl        time.Duration
	httpClient *http.Client
	logger     log.Logger
	hooks      Hooks
}

// NewService creates a verifier. classifier may be nil when no credential is
// configured; every verification then takes the basic path.
func NewService(store *cache.Store, classifier Classifier, model string, logger log.Logger, hooks Hooks) *Service {
	if store == nil {
		panic(xerrors.New("cache store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		cache:      store,
		classifier: classifier,
		model:      model,
		ttl:        DefaultTTL,
		httpClient: &http.Client{Timeout: fetchTimeout},
		logger:     logger,
		hooks:      hooks,
	}
}

// SetTTL overrides the cache TTL for verification results.
func (s *Service) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Verify checks the image at rawURL. It never returns an error: every
// internal failure degrades into a well-formed Verification and a logged
// diagnostic.
func (s *Service) Verify(ctx context.Context, rawURL string) Verification {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		// cheap to recompute, not worth a cache slot
		out := Verification{
			Status:     StatusInvalid,
			Analysis:   "invalid image URL",
			Confidence: 0,
		}
		s.observe(out.Status)
		return out
	}

	key := cacheKey(rawURL)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.(Verification); ok {
			if s.hooks.OnCacheHit != nil {
				s.hooks.OnCacheHit()
			}
			return cached
		}
	}

	var out Verification
	if s.classifier != nil {
		out = s.advancedCheck(ctx, rawURL)
	} else {
		out = s.basicCheck(ctx, rawURL)
	}

	s.cache.Set(key, out, s.ttl)
	s.observe(out.Status)
	return out
}

// advancedCheck fetches the image bytes and submits them to the
// classification model. Failures here are terminal: they never fall through
// to the basic check.
func (s *Service) advancedCheck(ctx context.Context, rawURL string) Verification {
	image, err := s.fetchImage(ctx, rawURL)
	if err != nil {
		s.logger.Warn(ctx, "image fetch failed", "url", rawURL, "error", err)
		return errorResult(fmt.Sprintf("image fetch failed: %v", err))
	}

	cctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	start := time.Now()
	labels, err := s.classifier.ImageClassification(cctx, s.model, image)
	s.upstream("classify", start, err != nil)
	if err != nil {
		s.logger.Warn(ctx, "image classification failed", "url", rawURL, "error", err)
		return errorResult(fmt.Sprintf("classification failed: %v", err))
	}
	if len(labels) == 0 {
		return errorResult("classification returned no labels")
	}

	top := labels[0]
	out := Verification{
		Status:     StatusAnalyzed,
		Analysis:   fmt.Sprintf("classified as %q", top.Label),
		Confidence: top.Score,
		Details: map[string]any{
			"top_label": top.Label,
			"labels":    labels,
		},
	}

	lower := strings.ToLower(top.Label)
	for _, word := range disasterVocabulary {
		if strings.Contains(lower, word) {
			out.Status = StatusAuthentic
			out.Analysis = fmt.Sprintf("disaster imagery confirmed: %q", top.Label)
			break
		}
	}

	return out
}

func (s *Service) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.upstream("fetch", start, true)
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.upstream("fetch", start, true)
		return nil, fmt.Errorf("image origin returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	s.upstream("fetch", start, err != nil)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return body, nil
}

// basicCheck issues a header-only request and validates the content type.
func (s *Service) basicCheck(ctx context.Context, rawURL string) Verification {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return errorResult(fmt.Sprintf("create request: %v", err))
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.upstream("head", start, true)
		s.logger.Warn(ctx, "basic image check failed", "url", rawURL, "error", err)
		return errorResult(fmt.Sprintf("head request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.upstream("head", start, true)
		return errorResult(fmt.Sprintf("image origin returned %d", resp.StatusCode))
	}
	s.upstream("head", start, false)

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return Verification{
			Status:     StatusInvalid,
			Analysis:   fmt.Sprintf("URL does not serve an image (content-type %q)", contentType),
			Confidence: 0,
		}
	}

	return Verification{
		Status:     StatusBasicCheck,
		Analysis:   "URL serves image content; model analysis not configured",
		Confidence: 0.5,
		Details: map[string]any{
			"content_type":   contentType,
			"content_length": resp.Header.Get("Content-Length"),
		},
	}
}

func errorResult(analysis string) Verification {
	return Verification{
		Status:     StatusError,
		Analysis:   analysis,
		Confidence: 0,
	}
}

func (s *Service) observe(status Status) {
	if s.hooks.OnResult != nil {
		s.hooks.OnResult(status)
	}
}

func (s *Service) upstream(op string, start time.Time, failed bool) {
	if s.hooks.OnUpstream != nil {
		s.hooks.OnUpstream(op, time.Since(start).Seconds(), failed)
	}
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "img:" + hex.EncodeToString(sum[:])[:16]
}
