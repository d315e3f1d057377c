package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linnemanlabs/beacon/internal/cache"
)

// fakeProvider scripts report batches for tests.
type fakeProvider struct {
	reports []Report
	err     error
	calls   int
}

func (f *fakeProvider) Reports(_ context.Context, _ string, _ []string) ([]Report, error) {
	f.calls++
	return f.reports, f.err
}

// fakeNotifier records alert notifications.
type fakeNotifier struct {
	calls  int
	lastID string
	last   []Report
	err    error
}

func (f *fakeNotifier) NotifyAlerts(_ context.Context, disasterID string, alerts []Report) error {
	f.calls++
	f.lastID = disasterID
	f.last = alerts
	return f.err
}

func TestFetch_CachesBatch(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reports: []Report{report("A", PriorityLow, "all clear", 0)}}
	svc := NewService(p, cache.New(), nil, nil, Hooks{})

	first, err := svc.Fetch(context.Background(), "d-1", []string{"flood"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := svc.Fetch(context.Background(), "d-1", []string{"flood"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (second fetch cached)", p.calls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached batch differs: %v vs %v", ids(first), ids(second))
	}
}

func TestFetch_DistinctKeysPerDisasterAndTags(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	svc := NewService(p, cache.New(), nil, nil, Hooks{})

	_, _ = svc.Fetch(context.Background(), "d-1", []string{"flood"})
	_, _ = svc.Fetch(context.Background(), "d-1", []string{"fire"})
	_, _ = svc.Fetch(context.Background(), "d-2", []string{"flood"})

	if p.calls != 3 {
		t.Errorf("provider calls = %d, want 3 (distinct cache keys)", p.calls)
	}
}

func TestFetch_TTLExpiry(t *testing.T) {
	t.Parallel()

	clk := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := cache.NewWithClock(func() time.Time { return clk })

	p := &fakeProvider{}
	svc := NewService(p, store, nil, nil, Hooks{})

	_, _ = svc.Fetch(context.Background(), "d-1", nil)
	clk = clk.Add(DefaultTTL + time.Minute)
	_, _ = svc.Fetch(context.Background(), "d-1", nil)

	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (batch expired)", p.calls)
	}
}

func TestFetch_ProviderErrorNotCached(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: errors.New("ingest down")}
	svc := NewService(p, cache.New(), nil, nil, Hooks{})

	if _, err := svc.Fetch(context.Background(), "d-1", nil); err == nil {
		t.Fatal("expected error from provider")
	}
	if _, err := svc.Fetch(context.Background(), "d-1", nil); err == nil {
		t.Fatal("expected error again")
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (errors are not cached)", p.calls)
	}
}

func TestAlerts_NotifiesOnDetection(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reports: []Report{
		report("A", PriorityUrgent, "water over the levee", 5*time.Minute),
		report("B", PriorityLow, "clouds clearing", 10*time.Minute),
	}}
	n := &fakeNotifier{}
	svc := NewService(p, cache.New(), n, nil, Hooks{})

	alerts, err := svc.Alerts(context.Background(), "d-1", nil)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if !equalIDs(ids(alerts), "A") {
		t.Errorf("alerts = %v, want [A]", ids(alerts))
	}
	if n.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", n.calls)
	}
	if n.lastID != "d-1" || !equalIDs(ids(n.last), "A") {
		t.Errorf("notified %s/%v, want d-1/[A]", n.lastID, ids(n.last))
	}
}

func TestAlerts_NoNotificationWithoutAlerts(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reports: []Report{report("B", PriorityLow, "calm evening", 0)}}
	n := &fakeNotifier{}
	svc := NewService(p, cache.New(), n, nil, Hooks{})

	alerts, err := svc.Alerts(context.Background(), "d-1", nil)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", ids(alerts))
	}
	if n.calls != 0 {
		t.Errorf("notifier calls = %d, want 0", n.calls)
	}
}

func TestAlerts_NotifierFailureDoesNotFailTriage(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reports: []Report{report("A", PriorityUrgent, "levee breach", 0)}}
	n := &fakeNotifier{err: errors.New("webhook 500")}
	svc := NewService(p, cache.New(), n, nil, Hooks{})

	alerts, err := svc.Alerts(context.Background(), "d-1", nil)
	if err != nil {
		t.Fatalf("Alerts returned error on notifier failure: %v", err)
	}
	if !equalIDs(ids(alerts), "A") {
		t.Errorf("alerts = %v, want [A]", ids(alerts))
	}
}

func TestSentiment_AnnotatesFetchedBatch(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{reports: []Report{
		report("A", PriorityLow, "volunteer support and relief, no danger", 0),
	}}
	svc := NewService(p, cache.New(), nil, nil, Hooks{})

	got, err := svc.Sentiment(context.Background(), "d-1", nil)
	if err != nil {
		t.Fatalf("Sentiment: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Sentiment != "positive" || got[0].SentimentScore != 2 {
		t.Errorf("annotation = %q/%d, want positive/2", got[0].Sentiment, got[0].SentimentScore)
	}
}

func TestHooks_FetchObserved(t *testing.T) {
	t.Parallel()

	var sources []bool
	hooks := Hooks{OnFetch: func(cacheHit bool, _ int) { sources = append(sources, cacheHit) }}

	p := &fakeProvider{}
	svc := NewService(p, cache.New(), nil, nil, hooks)

	_, _ = svc.Fetch(context.Background(), "d-1", nil)
	_, _ = svc.Fetch(context.Background(), "d-1", nil)

	if len(sources) != 2 || sources[0] != false || sources[1] != true {
		t.Errorf("OnFetch cacheHit observations = %v, want [false true]", sources)
	}
}
