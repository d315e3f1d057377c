package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds service-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	HFAPIToken            string
	HFBaseURL             string
	NERModel              string
	ImageModel            string
	LocationTTLHours      float64
	ImageTTLHours         float64
	FeedTTLMinutes        int
	APIToken              string
	SlackWebhookURL       string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.HFAPIToken, "hf-api-token", "", "Hugging Face Inference API token (empty = pattern/basic fallbacks only)")
	fs.StringVar(&c.HFBaseURL, "hf-base-url", "https://api-inference.huggingface.co", "Hugging Face Inference API base URL")
	fs.StringVar(&c.NERModel, "ner-model", "dslim/bert-base-NER", "token-classification model for location extraction")
	fs.StringVar(&c.ImageModel, "image-model", "microsoft/resnet-50", "image-classification model for image verification")
	fs.Float64Var(&c.LocationTTLHours, "location-ttl-hours", 1.0, "hours to cache location extractions (0 < h <= 168)")
	fs.Float64Var(&c.ImageTTLHours, "image-ttl-hours", 1.0, "hours to cache image verifications (0 < h <= 168)")
	fs.IntVar(&c.FeedTTLMinutes, "feed-ttl-minutes", 15, "minutes to cache feed batches (1..1440)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token protecting the API (empty = no auth)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for priority alert digests")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Inference needs somewhere to go and models to call
	if c.HFBaseURL == "" {
		errs = append(errs, errors.New("HF_BASE_URL is required"))
	}
	if c.NERModel == "" {
		errs = append(errs, errors.New("NER_MODEL is required"))
	}
	if c.ImageModel == "" {
		errs = append(errs, errors.New("IMAGE_MODEL is required"))
	}

	// Cache lifetimes
	// Written as negated range checks so NaN is rejected too
	if !(c.LocationTTLHours > 0 && c.LocationTTLHours <= 168) {
		errs = append(errs, fmt.Errorf("invalid LOCATION_TTL_HOURS %g (must be in (0, 168])", c.LocationTTLHours))
	}
	if !(c.ImageTTLHours > 0 && c.ImageTTLHours <= 168) {
		errs = append(errs, fmt.Errorf("invalid IMAGE_TTL_HOURS %g (must be in (0, 168])", c.ImageTTLHours))
	}
	if c.FeedTTLMinutes <= 0 || c.FeedTTLMinutes > 1440 {
		errs = append(errs, fmt.Errorf("invalid FEED_TTL_MINUTES %d (must be 1..1440)", c.FeedTTLMinutes))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
