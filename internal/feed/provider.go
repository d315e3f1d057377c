package feed

import "context"

// Provider produces the raw report batch for a disaster, already filtered by
// tags. Keeping generation behind an interface keeps the triage logic
// testable without fixtures.
type Provider interface {
	Reports(ctx context.Context, disasterID string, tags []string) ([]Report, error)
}
