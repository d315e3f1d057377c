package imagecheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linnemanlabs/beacon/internal/cache"
	"github.com/linnemanlabs/beacon/internal/hf"
)

// fakeClassifier scripts image-classification responses for tests.
type fakeClassifier struct {
	labels []hf.Label
	err    error
	calls  int
}

func (f *fakeClassifier) ImageClassification(_ context.Context, _ string, _ []byte) ([]hf.Label, error) {
	f.calls++
	return f.labels, f.err
}

func newImageOrigin(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify_InvalidURL(t *testing.T) {
	t.Parallel()

	svc := NewService(cache.New(), nil, "", nil, Hooks{})

	tests := []struct {
		name string
		url  string
	}{
		{"not a url", "not a url"},
		{"empty", ""},
		{"bad scheme", "ftp://example.com/img.jpg"},
		{"scheme only", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := svc.Verify(context.Background(), tt.url)
			if got.Status != StatusInvalid {
				t.Errorf("Status = %q, want %q", got.Status, StatusInvalid)
			}
			if got.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", got.Confidence)
			}
		})
	}
}

func TestVerify_InvalidURLNotCached(t *testing.T) {
	t.Parallel()

	store := cache.New()
	svc := NewService(store, nil, "", nil, Hooks{})

	_ = svc.Verify(context.Background(), "not a url")
	if store.Len() != 0 {
		t.Errorf("cache entries = %d, want 0 (invalid URL is cheap to recompute)", store.Len())
	}
}

func TestVerify_BasicCheckImage(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "4096")
	})

	svc := NewService(cache.New(), nil, "", nil, Hooks{})
	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")

	if got.Status != StatusBasicCheck {
		t.Fatalf("Status = %q, want %q", got.Status, StatusBasicCheck)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
	if got.Details["content_type"] != "image/jpeg" {
		t.Errorf("content_type = %v, want image/jpeg", got.Details["content_type"])
	}
	if got.Details["content_length"] != "4096" {
		t.Errorf("content_length = %v, want 4096", got.Details["content_length"])
	}
}

func TestVerify_BasicCheckNonImage(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})

	svc := NewService(cache.New(), nil, "", nil, Hooks{})
	got := svc.Verify(context.Background(), origin.URL+"/page")

	if got.Status != StatusInvalid {
		t.Errorf("Status = %q, want %q for non-image content type", got.Status, StatusInvalid)
	}
}

func TestVerify_BasicCheckOriginError(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	svc := NewService(cache.New(), nil, "", nil, Hooks{})
	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")

	if got.Status != StatusError {
		t.Errorf("Status = %q, want %q", got.Status, StatusError)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestVerify_BasicCheckUnreachable(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(_ http.ResponseWriter, _ *http.Request) {})
	url := origin.URL + "/photo.jpg"
	origin.Close()

	svc := NewService(cache.New(), nil, "", nil, Hooks{})
	got := svc.Verify(context.Background(), url)

	if got.Status != StatusError {
		t.Errorf("Status = %q, want %q for unreachable origin", got.Status, StatusError)
	}
}

func TestVerify_AdvancedAnalyzed(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	})

	clf := &fakeClassifier{labels: []hf.Label{
		{Label: "seashore", Score: 0.91},
		{Label: "lakeside", Score: 0.04},
	}}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")
	if got.Status != StatusAnalyzed {
		t.Fatalf("Status = %q, want %q", got.Status, StatusAnalyzed)
	}
	if got.Confidence != 0.91 {
		t.Errorf("Confidence = %v, want top label score 0.91", got.Confidence)
	}
	if got.Details["top_label"] != "seashore" {
		t.Errorf("top_label = %v, want seashore", got.Details["top_label"])
	}
}

func TestVerify_AdvancedAuthentic(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{1, 2, 3})
	})

	clf := &fakeClassifier{labels: []hf.Label{{Label: "flooded street", Score: 0.88}}}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")
	if got.Status != StatusAuthentic {
		t.Fatalf("Status = %q, want %q for disaster vocabulary match", got.Status, StatusAuthentic)
	}
	if got.Confidence != 0.88 {
		t.Errorf("Confidence = %v, want 0.88", got.Confidence)
	}
	if !strings.Contains(got.Analysis, "flooded street") {
		t.Errorf("Analysis = %q, want it to mention the label", got.Analysis)
	}
}

func TestVerify_AdvancedClassifierErrorDoesNotFallThrough(t *testing.T) {
	t.Parallel()

	headCalls := 0
	origin := newImageOrigin(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			headCalls++
		}
		_, _ = w.Write([]byte{1})
	})

	clf := &fakeClassifier{err: errors.New("model loading")}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")
	if got.Status != StatusError {
		t.Fatalf("Status = %q, want %q", got.Status, StatusError)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
	if headCalls != 0 {
		t.Errorf("basic check ran %d times; advanced failures must be terminal", headCalls)
	}
}

func TestVerify_AdvancedFetchError(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	clf := &fakeClassifier{labels: []hf.Label{{Label: "flood", Score: 0.9}}}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	got := svc.Verify(context.Background(), origin.URL+"/gone.jpg")
	if got.Status != StatusError {
		t.Fatalf("Status = %q, want %q", got.Status, StatusError)
	}
	if clf.calls != 0 {
		t.Errorf("classifier calls = %d, want 0 when fetch fails", clf.calls)
	}
}

func TestVerify_AdvancedNoLabels(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{1})
	})

	clf := &fakeClassifier{}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	got := svc.Verify(context.Background(), origin.URL+"/photo.jpg")
	if got.Status != StatusError {
		t.Errorf("Status = %q, want %q for empty label list", got.Status, StatusError)
	}
}

func TestVerify_CachesResult(t *testing.T) {
	t.Parallel()

	fetches := 0
	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		fetches++
		_, _ = w.Write([]byte{1})
	})

	clf := &fakeClassifier{labels: []hf.Label{{Label: "fire damage", Score: 0.95}}}
	svc := NewService(cache.New(), clf, "test-model", nil, Hooks{})

	url := origin.URL + "/photo.jpg"
	first := svc.Verify(context.Background(), url)
	second := svc.Verify(context.Background(), url)

	if fetches != 1 || clf.calls != 1 {
		t.Errorf("fetches = %d, classifier calls = %d; want 1 each (second verify cached)", fetches, clf.calls)
	}
	if first.Status != second.Status || first.Confidence != second.Confidence {
		t.Errorf("cached result %+v differs from original %+v", second, first)
	}
}

func TestVerify_ErrorResultsAreCached(t *testing.T) {
	t.Parallel()

	hits := 0
	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	})

	svc := NewService(cache.New(), nil, "", nil, Hooks{})

	url := origin.URL + "/photo.jpg"
	_ = svc.Verify(context.Background(), url)
	got := svc.Verify(context.Background(), url)

	if hits != 1 {
		t.Errorf("origin hits = %d, want 1 (error result cached)", hits)
	}
	if got.Status != StatusError {
		t.Errorf("Status = %q, want %q", got.Status, StatusError)
	}
}

func TestVerify_HooksObserved(t *testing.T) {
	t.Parallel()

	origin := newImageOrigin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	})

	var statuses []Status
	var ops []string
	hooks := Hooks{
		OnResult:   func(s Status) { statuses = append(statuses, s) },
		OnUpstream: func(op string, _ float64, _ bool) { ops = append(ops, op) },
	}
	svc := NewService(cache.New(), nil, "", nil, hooks)

	_ = svc.Verify(context.Background(), origin.URL+"/photo.png")

	if len(statuses) != 1 || statuses[0] != StatusBasicCheck {
		t.Errorf("OnResult observations = %v, want one basic_check", statuses)
	}
	if fmt.Sprint(ops) != "[head]" {
		t.Errorf("OnUpstream ops = %v, want [head]", ops)
	}
}
