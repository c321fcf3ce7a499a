package audio

import (
	"math"
	"testing"
)

func TestClipClampsOutOfRange(t *testing.T) {
	samples := []float32{-2, -1, -0.5, 0, 0.5, 1, 3}
	clipped := Clip(samples)
	if clipped != 2 {
		t.Fatalf("expected 2 clipped samples, got %d", clipped)
	}
	if samples[0] != -1 || samples[6] != 1 {
		t.Fatalf("expected endpoints clamped, got %v", samples)
	}
	if samples[2] != -0.5 || samples[4] != 0.5 {
		t.Fatalf("in-range samples must be untouched, got %v", samples)
	}
}

func TestSanitizeCoercesNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	samples := []float32{0.5, nan, inf, -0.25}
	fixed := Sanitize(samples)
	if fixed != 2 {
		t.Fatalf("expected 2 sanitized samples, got %d", fixed)
	}
	if samples[1] != 0 || samples[2] != 0 {
		t.Fatalf("expected non-finite samples zeroed, got %v", samples)
	}
	if !IsFinite(samples) {
		t.Fatalf("expected finite buffer after sanitize")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := New([]float32{0.1, 0.2}, 16000)
	clone := orig.Clone()
	clone.Samples[0] = 0.9
	if orig.Samples[0] != 0.1 {
		t.Fatalf("clone must not alias the original samples")
	}
	if clone.Rate != 16000 {
		t.Fatalf("clone must keep the rate, got %d", clone.Rate)
	}
}

func TestSineProperties(t *testing.T) {
	buf := Sine(440, 0.5, 16000, 1.0)
	if buf.Len() != 16000 {
		t.Fatalf("expected 16000 samples, got %d", buf.Len())
	}
	if buf.Duration() != 1.0 {
		t.Fatalf("expected 1s duration, got %f", buf.Duration())
	}
	peak := Peak(buf.Samples)
	if peak > 0.5001 || peak < 0.49 {
		t.Fatalf("expected peak near 0.5, got %f", peak)
	}
	rms := RMS(buf.Samples)
	want := 0.5 / math.Sqrt2
	if math.Abs(rms-want) > 0.01 {
		t.Fatalf("expected rms near %f, got %f", want, rms)
	}
}
