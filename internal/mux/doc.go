// Package mux turns a job plus global settings into the exact argument
// list for an mkvmerge invocation, or an mkvpropedit directive list for
// the in-place fast path. Argument ordering is load-bearing: mkvmerge
// binds per-track flags to the next file argument, so every builder here
// emits flags in a fixed, deterministic order.
package mux
