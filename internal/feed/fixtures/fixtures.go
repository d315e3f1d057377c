// Package fixtures provides a feed.Provider backed by synthesized reports.
// It stands in for the real social ingestion pipeline in dev and testing;
// generation is separated from triage so the latter stays independently
// testable.
package fixtures

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/beacon/internal/feed"
)

// candidate is one fixture report before IDs and timestamps are attached.
type candidate struct {
	user       string
	content    string
	age        time.Duration
	priority   feed.Priority
	location   string
	keywords   []string
	platform   string
	verified   bool
	engagement feed.Engagement
}

var candidates = []candidate{
	{
		user:       "storm_watcher_tx",
		content:    "URGENT: family trapped on roof near Buffalo Bayou, water still rising, send help",
		age:        12 * time.Minute,
		priority:   feed.PriorityUrgent,
		location:   "Houston, TX",
		keywords:   []string{"flood", "rescue", "trapped"},
		platform:   "twitter",
		verified:   false,
		engagement: feed.Engagement{Likes: 212, Shares: 340, Replies: 58},
	},
	{
		user:       "harris_county_oem",
		content:    "Evacuation order issued for zones A and B, shelters open at Delmar Stadium",
		age:        25 * time.Minute,
		priority:   feed.PriorityHigh,
		location:   "Harris County, TX",
		keywords:   []string{"evacuation", "shelter", "flood"},
		platform:   "twitter",
		verified:   true,
		engagement: feed.Engagement{Likes: 890, Shares: 1200, Replies: 143},
	},
	{
		user:       "local_volunteer",
		content:    "Volunteer boat crews staging at the church on Main Street, we have room for supplies",
		age:        40 * time.Minute,
		priority:   feed.PriorityMedium,
		location:   "Houston, TX",
		keywords:   []string{"volunteer", "rescue", "supplies"},
		platform:   "facebook",
		verified:   false,
		engagement: feed.Engagement{Likes: 156, Shares: 89, Replies: 34},
	},
	{
		user:       "weather_spotter_99",
		content:    "Rain finally easing up on the west side, creek levels holding steady",
		age:        55 * time.Minute,
		priority:   feed.PriorityLow,
		location:   "Katy, TX",
		keywords:   []string{"weather", "update"},
		platform:   "twitter",
		verified:   false,
		engagement: feed.Engagement{Likes: 45, Shares: 12, Replies: 8},
	},
	{
		user:       "redcross_gulf",
		content:    "Relief supplies and medical support arriving tonight, families rescued today are safe at the shelter",
		age:        time.Hour + 10*time.Minute,
		priority:   feed.PriorityMedium,
		location:   "Houston, TX",
		keywords:   []string{"relief", "shelter", "medical"},
		platform:   "twitter",
		verified:   true,
		engagement: feed.Engagement{Likes: 567, Shares: 423, Replies: 76},
	},
	{
		user:       "bayou_resident",
		content:    "Power out on our block, transformer fire near the substation, critical situation for neighbors on oxygen",
		age:        time.Hour + 30*time.Minute,
		priority:   feed.PriorityHigh,
		location:   "Pasadena, TX",
		keywords:   []string{"power", "fire", "medical"},
		platform:   "facebook",
		verified:   false,
		engagement: feed.Engagement{Likes: 98, Shares: 67, Replies: 41},
	},
}

// Provider synthesizes report batches from the fixed candidate set.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider.
func New() *Provider {
	return &Provider{now: time.Now}
}

// NewWithClock creates a fixture provider with an injected clock. For tests.
func NewWithClock(now func() time.Time) *Provider {
	return &Provider{now: now}
}

// Reports returns the candidate set filtered by tags, with fresh IDs and
// timestamps anchored to the current time. The disaster ID only namespaces
// the batch; every disaster sees the same candidates.
func (p *Provider) Reports(_ context.Context, _ string, tags []string) ([]feed.Report, error) {
	now := p.now()

	reports := make([]feed.Report, 0, len(candidates))
	for _, c := range candidates {
		r := feed.Report{
			ID:         ulid.Make().String(),
			User:       c.user,
			Content:    c.content,
			Timestamp:  now.Add(-c.age),
			Priority:   c.priority,
			Location:   c.location,
			Keywords:   c.keywords,
			Platform:   c.platform,
			Verified:   c.verified,
			Engagement: c.engagement,
		}
		if feed.MatchesTags(r, tags) {
			reports = append(reports, r)
		}
	}
	return reports, nil
}
