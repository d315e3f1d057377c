// Package slack posts priority-alert digests to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/beacon/internal/feed"
)

const (
	maxAlertsShown = 5
	maxContentLen  = 300
	httpTimeout    = 10 * time.Second
)

// Notifier sends alert digests to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, NotifyAlerts is
// a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// NotifyAlerts posts a digest of the detected priority alerts to the
// configured webhook. If no webhook URL is configured, it returns nil
// immediately.
func (n *Notifier) NotifyAlerts(ctx context.Context, disasterID string, alerts []feed.Report) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(disasterID, alerts)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(disasterID string, alerts []feed.Report) map[string]any {
	blocks := []map[string]any{
		headerBlock(disasterID, len(alerts)),
		{"type": "divider"},
	}
	for i, alert := range alerts {
		if i >= maxAlertsShown {
			break
		}
		blocks = append(blocks, alertBlock(alert))
	}
	if len(alerts) > maxAlertsShown {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("_...and %d more alerts._", len(alerts)-maxAlertsShown),
			},
		})
	}
	blocks = append(blocks, map[string]any{"type": "divider"}, contextBlock(disasterID))

	return map[string]any{"blocks": blocks}
}

func headerBlock(disasterID string, count int) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("\U0001f6a8 %d priority alerts for disaster %s", count, disasterID),
		},
	}
}

func alertBlock(r feed.Report) map[string]any {
	lines := []string{
		fmt.Sprintf("%s *@%s* (%s, %s)", priorityEmoji(r.Priority), r.User, r.Priority, r.Platform),
		truncate(r.Content, maxContentLen),
	}
	if r.Location != "" {
		lines = append(lines, fmt.Sprintf("\U0001f4cd %s", r.Location))
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": strings.Join(lines, "\n"),
		},
	}
}

func contextBlock(disasterID string) map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("beacon • disaster %s • %s", disasterID, time.Now().UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}

func priorityEmoji(p feed.Priority) string {
	switch p {
	case feed.PriorityUrgent:
		return "\U0001f534" // red circle
	case feed.PriorityHigh:
		return "\U0001f7e0" // orange circle
	case feed.PriorityMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// back up to a rune boundary so the cut never emits invalid UTF-8
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
