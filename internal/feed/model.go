// Package feed triages batches of social-media style disaster reports:
// priority alert detection, sentiment annotation, and tag-filtered fetching
// through a Provider. Triage operations are pure and never touch the cache;
// batches are cached one layer up by the Service.
package feed

import "time"

// Priority is the urgency attached to a report by its producer.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to its sort weight. Unrecognized values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Engagement carries a report's interaction counters.
type Engagement struct {
	Likes   int `json:"likes"`
	Shares  int `json:"shares"`
	Replies int `json:"replies"`
}

// Report is one externally-produced disaster report. Triage only reads it;
// annotation produces new records.
type Report struct {
	ID         string     `json:"id"`
	User       string     `json:"user"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Priority   Priority   `json:"priority"`
	Location   string     `json:"location"`
	Keywords   []string   `json:"keywords"`
	Platform   string     `json:"platform"`
	Verified   bool       `json:"verified"`
	Engagement Engagement `json:"engagement"`
}

// AnnotatedReport is a report plus its sentiment annotation. The embedded
// report is a copy; the original is never mutated.
type AnnotatedReport struct {
	Report
	Sentiment      string `json:"sentiment"`
	SentimentScore int    `json:"sentiment_score"`
}
