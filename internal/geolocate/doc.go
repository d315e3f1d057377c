// Package geolocate resolves location mentions in free-text disaster
// descriptions. It defines the Service (cache lookup, strategy cascade,
// degraded results), the Recognizer interface (external NER capability), and
// the deterministic pattern fallback.
package geolocate
