package audio

import (
	"math"
)

// Buffer is a mono sequence of float32 samples paired with a sample rate.
// Samples are nominally in [-1, 1]; the executor enforces that on output.
type Buffer struct {
	Samples []float32
	Rate    int
}

func New(samples []float32, rate int) Buffer {
	return Buffer{Samples: samples, Rate: rate}
}

func (b Buffer) Len() int { return len(b.Samples) }

// Duration returns the buffer length in seconds, 0 when the rate is unset.
func (b Buffer) Duration() float64 {
	if b.Rate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Rate)
}

// Clone returns a deep copy so capabilities can mutate freely.
func (b Buffer) Clone() Buffer {
	out := make([]float32, len(b.Samples))
	copy(out, b.Samples)
	return Buffer{Samples: out, Rate: b.Rate}
}

// Clip clamps every sample to [-1, 1] in place and returns the number of
// samples that were out of range.
func Clip(samples []float32) int {
	clipped := 0
	for i, s := range samples {
		switch {
		case s > 1:
			samples[i] = 1
			clipped++
		case s < -1:
			samples[i] = -1
			clipped++
		}
	}
	return clipped
}

// Sanitize coerces NaN and infinite samples to 0 in place and returns the
// number of samples touched.
func Sanitize(samples []float32) int {
	fixed := 0
	for i, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			samples[i] = 0
			fixed++
		}
	}
	return fixed
}

// IsFinite reports whether every sample is a finite number.
func IsFinite(samples []float32) bool {
	for _, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// RMS returns the root mean square level of the buffer.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Sine generates a test tone at the given frequency and amplitude.
func Sine(freq float64, amplitude float32, rate int, duration float64) Buffer {
	n := int(float64(rate) * duration)
	samples := make([]float32, n)
	for i := range samples {
		t := float64(i) / float64(rate)
		samples[i] = amplitude * float32(math.Sin(2*math.Pi*freq*t))
	}
	return Buffer{Samples: samples, Rate: rate}
}
