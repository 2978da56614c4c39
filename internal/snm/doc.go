// Package snm computes the static noise margin of a butterfly plot.
//
// Two transfer curves are resampled onto a shared uniform grid, split into
// two lobes at their crossing, and the largest square that fits between the
// upper and lower envelopes is found in each lobe. The reported margin is the
// smaller of the two squares.
//
// Everything here is pure: loading curves, printing reports and storing
// results live in the internal/butterfly, internal/report and internal/db
// packages.
package snm
