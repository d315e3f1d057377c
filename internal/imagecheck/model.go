// Package imagecheck verifies the authenticity of disaster imagery by URL.
// It defines the Service (URL validation, advanced model-based analysis or a
// basic header check, caching) and the Classifier interface for the external
// image-classification capability.
package imagecheck

// Status is the terminal state of a verification.
type Status string

const (
	// StatusInvalid means the URL failed validation or the target is not
	// an image.
	StatusInvalid Status = "invalid"

	// StatusBasicCheck means only the lightweight header check ran.
	StatusBasicCheck Status = "basic_check"

	// StatusAnalyzed means the classification model ran.
	StatusAnalyzed Status = "analyzed"

	// StatusAuthentic means the model's top label matches disaster
	// vocabulary.
	StatusAuthentic Status = "authentic"

	// StatusError means an upstream call failed.
	StatusError Status = "error"
)

// Verification is the outcome of an image check. Immutable, created per call.
type Verification struct {
	Status     Status         `json:"status"`
	Analysis   string         `json:"analysis"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details,omitempty"`
}
