package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestFFT_Length(t *testing.T) {
	if _, err := FFT(make([]float64, 6)); !errors.Is(err, ErrLength) {
		t.Errorf("err = %v, want ErrLength", err)
	}
	out, err := FFT([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if real(out[0]) != 4 || math.Abs(real(out[1])) > 1e-12 {
		t.Errorf("constant signal transform = %v", out)
	}
}

func TestPad(t *testing.T) {
	got := Pad([]float64{1, 2, 3})
	want := []float64{-1, 0, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pad[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"slow", 0.5},
		{"medium", 2},
		{"fast", 8},
	}
	const rate = 64.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := make([]float64, 512)
			for i := range series {
				series[i] = 10 + 3*math.Sin(2*math.Pi*tt.freq*float64(i)/rate)
			}
			p := DominantFrequency(series, rate)
			if math.Abs(p.Frequency-tt.freq) > rate/512 {
				t.Errorf("dominant = %v Hz, want %v", p.Frequency, tt.freq)
			}
		})
	}
}

func TestDominantFrequency_Flat(t *testing.T) {
	if p := DominantFrequency([]float64{5, 5, 5, 5, 5, 5}, 60); p != (Peak{}) {
		t.Errorf("flat series peak = %+v", p)
	}
	if p := DominantFrequency([]float64{1, 2}, 60); p != (Peak{}) {
		t.Errorf("short series peak = %+v", p)
	}
}
