// Package analysis inspects recorded telemetry series.
//
//   - [NewSpectrum]: power spectrum of a uniformly sampled series, used to
//     find sloshing and flutter frequencies
//   - [FitTrend]: least-squares line through a series, used to tell a slow
//     energy drift from noise
//
// # Example
//
//	sp, err := analysis.NewSpectrum(energy, interval)
//	if err == nil {
//	    f, power := sp.Dominant()
//	}
package analysis
