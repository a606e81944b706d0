// Package cacheline names the padding constant used throughout this module
// to keep producer-only and consumer-only words off each other's cache
// lines. Every ring variant this codebase has ever shipped (ring24, ring,
// ring32, ring56) hand-rolled its own [56]byte / [64]byte padding fields;
// this package exists so the number only needs justifying once.
package cacheline

// Size is the assumed destructive-interference size for this build's
// target hardware. 64 bytes covers essentially every deployed x86-64 and
// arm64 part; on exotic targets with wider physical lines the only cost
// of under-estimating is lost isolation, never correctness — pushIndex,
// popIndex and size are still updated atomically regardless of padding.
const Size = 64
