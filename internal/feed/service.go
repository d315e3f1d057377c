package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/cache"
)

// DefaultTTL is how long fetched report batches stay cached. Social content
// is volatile, so this is much shorter than the location/image TTLs.
const DefaultTTL = 15 * time.Minute

// Notifier receives the alert batch whenever triage detects priority alerts.
type Notifier interface {
	NotifyAlerts(ctx context.Context, disasterID string, alerts []Report) error
}

// Hooks are optional observation callbacks invoked during feed operations.
// The zero value is valid and observes nothing.
type Hooks struct {
	OnFetch  func(cacheHit bool, count int)
	OnAlerts func(count int)
}

// Service fetches report batches through the Provider with short-lived
// caching, and exposes the triage operations over fetched batches.
type Service struct {
	provider Provider
	cache    *cache.Store
	ttl      time.Duration
	notifier Notifier
	logger   log.Logger
	hooks    Hooks
}

// NewService creates a feed service. notifier may be nil.
func NewService(provider Provider, store *cache.Store, notifier Notifier, logger log.Logger, hooks Hooks) *Service {
	if provider == nil {
		panic(xerrors.New("report provider is required"))
	}
	if store == nil {
		panic(xerrors.New("cache store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		provider: provider,
		cache:    store,
		ttl:      DefaultTTL,
		notifier: notifier,
		logger:   logger,
		hooks:    hooks,
	}
}

// SetTTL overrides the cache TTL for report batches.
func (s *Service) SetTTL(ttl time.Duration) {
	s.ttl = ttl
}

// Fetch returns the report batch for a disaster, serving repeated requests
// from cache within the TTL.
func (s *Service) Fetch(ctx context.Context, disasterID string, tags []string) ([]Report, error) {
	key := cacheKey(disasterID, tags)
	if v, ok := s.cache.Get(key); ok {
		if cached, ok := v.([]Report); ok {
			if s.hooks.OnFetch != nil {
				s.hooks.OnFetch(true, len(cached))
			}
			return cached, nil
		}
	}

	reports, err := s.provider.Reports(ctx, disasterID, tags)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, reports, s.ttl)
	if s.hooks.OnFetch != nil {
		s.hooks.OnFetch(false, len(reports))
	}
	return reports, nil
}

// Alerts fetches the batch and runs priority alert detection over it. When
// alerts are found and a notifier is configured, the digest goes out
// best-effort: a notification failure never fails the triage.
func (s *Service) Alerts(ctx context.Context, disasterID string, tags []string) ([]Report, error) {
	reports, err := s.Fetch(ctx, disasterID, tags)
	if err != nil {
		return nil, err
	}

	alerts := DetectPriorityAlerts(reports)
	if s.hooks.OnAlerts != nil {
		s.hooks.OnAlerts(len(alerts))
	}

	if s.notifier != nil && len(alerts) > 0 {
		if err := s.notifier.NotifyAlerts(ctx, disasterID, alerts); err != nil {
			s.logger.Error(ctx, err, "alert notification failed", "disaster_id", disasterID)
		}
	}

	return alerts, nil
}

// Sentiment fetches the batch and annotates every report.
func (s *Service) Sentiment(ctx context.Context, disasterID string, tags []string) ([]AnnotatedReport, error) {
	reports, err := s.Fetch(ctx, disasterID, tags)
	if err != nil {
		return nil, err
	}
	return AnalyzeSentiment(reports), nil
}

func cacheKey(disasterID string, tags []string) string {
	sum := sha256.Sum256([]byte(disasterID + "|" + strings.Join(tags, ",")))
	return "feed:" + hex.EncodeToString(sum[:])[:16]
}
