// Package psola changes the playback speed of a fully buffered audio signal
// while preserving pitch, using pitch-synchronous overlap-add resynthesis.
//
// Each step estimates the local pitch period, synthesizes one idealized
// cycle by blending two adjacent observed cycles, and crossfades from the
// previous cycle to the new one while a fractional read head advances
// through the input at the configured speed. Voiced regions narrow the
// period search to track pitch continuity; unvoiced regions fall back to
// the full range.
package psola
