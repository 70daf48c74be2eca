package analysis

import (
	"errors"
	"math"
	"math/cmplx"
)

var ErrLength = errors.New("analysis: fft requires a power of 2 length")

// FFT is a radix-2 Cooley-Tukey transform. len(data) must be a power of 2.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n&(n-1) != 0 {
		return nil, ErrLength
	}
	return fft(data), nil
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the magnitude of the first half of the transform.
func PowerSpectrum(data []float64) ([]float64, error) {
	f, err := FFT(data)
	if err != nil {
		return nil, err
	}
	ps := make([]float64, len(f)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps, nil
}

// Pad copies data into a zero-filled slice of the next power of 2 length,
// subtracting the mean so the DC bin does not dominate.
func Pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// Peak is the strongest non-DC spectral bin.
type Peak struct {
	Frequency float64 // Hz
	Power     float64
	Bin       int
}

// DominantFrequency finds the strongest oscillation in series sampled at
// sampleRate Hz. A constant or too-short series yields a zero Peak.
func DominantFrequency(series []float64, sampleRate float64) Peak {
	if len(series) < 4 || !(sampleRate > 0) {
		return Peak{}
	}
	padded := Pad(series)
	ps, err := PowerSpectrum(padded)
	if err != nil {
		return Peak{}
	}
	var p Peak
	for i := 1; i < len(ps); i++ {
		if ps[i] > p.Power {
			p = Peak{Bin: i, Power: ps[i]}
		}
	}
	if p.Bin == 0 || p.Power < 1e-9 {
		return Peak{}
	}
	p.Frequency = float64(p.Bin) * sampleRate / float64(len(padded))
	return p
}
