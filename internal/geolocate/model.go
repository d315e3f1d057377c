package geolocate

// Method records which resolution path produced an extraction.
type Method string

const (
	// MethodNERAndPatterns means the external NER capability contributed.
	MethodNERAndPatterns Method = "ner_and_patterns"

	// MethodPatternsOnly means the regex fallback produced the answer.
	MethodPatternsOnly Method = "patterns_only"

	// MethodFailed means no path produced an answer.
	MethodFailed Method = "failed"
)

// LocationUnknown is the location value for extractions with no answer.
const LocationUnknown = "unknown"

// Extraction is the outcome of a location resolution. Immutable, created per
// call.
type Extraction struct {
	Location   string  `json:"location"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}
