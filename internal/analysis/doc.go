// Package analysis extracts oscillation content from recorded telemetry.
//
// A tumbling or disturbed spacecraft shows up as periodic body rates. The
// package zero-pads a rate series to a power of two, removes its mean and
// reports the dominant frequency:
//
//	peak := analysis.DominantFrequency(rates, 1/frameDt)
//	if peak.Frequency > 0 {
//	    period := 1 / peak.Frequency
//	}
package analysis
