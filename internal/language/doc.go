// Package language normalizes language codes so audio renditions tagged with
// BCP-47 values like "en-US" can be compared against the two-letter
// preference from configuration.
package language
