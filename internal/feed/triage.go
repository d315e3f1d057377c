package feed

import (
	"sort"
	"strings"
)

// urgentVocabulary flags a report as a priority alert regardless of its
// declared priority.
var urgentVocabulary = []string{"urgent", "sos", "emergency", "help", "trapped", "critical", "evacuation", "danger"}

// positiveVocabulary and negativeVocabulary drive the keyword-differential
// sentiment score.
var (
	positiveVocabulary = []string{"help", "safe", "rescued", "volunteer", "support", "relief"}
	negativeVocabulary = []string{"trapped", "danger", "emergency", "critical", "urgent", "flood", "fire"}
)

// MatchesTags reports whether any tag is a case-insensitive substring of one
// of the report's keywords or of its content. An empty tag list matches
// everything.
func MatchesTags(r Report, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	content := strings.ToLower(r.Content)
	for _, tag := range tags {
		t := strings.ToLower(tag)
		if strings.Contains(content, t) {
			return true
		}
		for _, kw := range r.Keywords {
			if strings.Contains(strings.ToLower(kw), t) {
				return true
			}
		}
	}
	return false
}

// DetectPriorityAlerts keeps reports whose content carries urgent vocabulary
// or whose priority is already urgent, sorted by priority rank descending
// with ties broken by timestamp descending. The sort is stable, so equal
// keys keep their input order.
func DetectPriorityAlerts(reports []Report) []Report {
	var alerts []Report
	for _, r := range reports {
		if r.Priority == PriorityUrgent || containsAny(r.Content, urgentVocabulary) {
			alerts = append(alerts, r)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Priority.Rank(), alerts[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})

	return alerts
}

// AnalyzeSentiment annotates each report with a sentiment label and integer
// score: positive-keyword occurrences minus negative-keyword occurrences in
// its content. Pure: inputs are never mutated.
func AnalyzeSentiment(reports []Report) []AnnotatedReport {
	out := make([]AnnotatedReport, 0, len(reports))
	for _, r := range reports {
		content := strings.ToLower(r.Content)

		score := 0
		for _, w := range positiveVocabulary {
			score += strings.Count(content, w)
		}
		for _, w := range negativeVocabulary {
			score -= strings.Count(content, w)
		}

		sentiment := "neutral"
		switch {
		case score > 0:
			sentiment = "positive"
		case score < 0:
			sentiment = "negative"
		}

		out = append(out, AnnotatedReport{
			Report:         r,
			Sentiment:      sentiment,
			SentimentScore: score,
		})
	}
	return out
}

func containsAny(content string, vocabulary []string) bool {
	lower := strings.ToLower(content)
	for _, w := range vocabulary {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
