// Package language provides language code normalization and matching.
//
// Keep-language filters and default-language promotion accept any of the
// ISO 639-1 code, ISO 639-2 code, or English display name of a language;
// all comparisons are consolidated here so track filtering and track
// property synthesis agree on what counts as "the same language".
package language
