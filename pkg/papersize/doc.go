// Package papersize maps physical document dimensions to named paper sizes.
//
// Classification normalises the input so that orientation does not matter,
// then walks a reference table ordered by ascending area and returns the
// first entry whose short and long sides both lie within Tolerance of the
// input. The ordering makes the result deterministic when two sizes are
// close to each other.
//
// When no entry matches, Classify falls back to a coarse area bucket. The
// fallback is deliberately lossy: it only guarantees that a larger area never
// maps to a smaller bucket. Use Match to tell an exact match from a fallback.
package papersize
