// Package analysis turns a stimulus and the signal captured back from the
// device under test into a frequency response curve.
//
// The response of bin k is the level of the measured spectrum relative to the
// reference spectrum:
//
//	H[k] = 20 * log10(|M[k]| / |R[k]|)
//
// Both spectra come from a real FFT over the full signal length, so the bins
// are k*sampleRate/n for k in [0, n/2]. A uniformly scaled copy of the
// reference therefore gives a flat curve at 20*log10(factor).
//
// # Usage
//
//	aligned, _, _ := analysis.Align(stimulus, captured, 0)
//	curve, _ := analysis.Compare(stimulus, aligned)
//	curve.ResponseDb, _ = analysis.Smooth(curve.ResponseDb, 100)
package analysis
