package effects

import (
	"context"
	"math"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/tools"
)

// biquad is a direct-form-I second-order section with a0 normalized to 1.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

func (f biquad) process(in []float32) []float32 {
	out := make([]float32, len(in))
	var x1, x2, y1, y2 float64
	for i, s := range in {
		x := float64(s)
		y := f.b0*x + f.b1*x1 + f.b2*x2 - f.a1*y1 - f.a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = float32(y)
	}
	return out
}

// peakingCoeffs builds an RBJ cookbook peaking EQ section.
func peakingCoeffs(centerHz, gainDB, q float64, rate int) biquad {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * centerHz / float64(rate)
	sin, cos := math.Sin(w), math.Cos(w)
	alpha := sin / (2 * q)
	a0 := 1 + alpha/a
	return biquad{
		b0: (1 + alpha*a) / a0,
		b1: -2 * cos / a0,
		b2: (1 - alpha*a) / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha/a) / a0,
	}
}

// shelfCoeffs builds an RBJ cookbook shelf section with unit slope.
func shelfCoeffs(cutoffHz, gainDB float64, rate int, high bool) biquad {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * cutoffHz / float64(rate)
	sin, cos := math.Sin(w), math.Cos(w)
	beta := math.Sqrt(2*a) * sin

	if high {
		a0 := (a + 1) - (a-1)*cos + beta
		return biquad{
			b0: a * ((a + 1) + (a-1)*cos + beta) / a0,
			b1: -2 * a * ((a - 1) + (a+1)*cos) / a0,
			b2: a * ((a + 1) + (a-1)*cos - beta) / a0,
			a1: 2 * ((a - 1) - (a+1)*cos) / a0,
			a2: ((a + 1) - (a-1)*cos - beta) / a0,
		}
	}
	a0 := (a + 1) + (a-1)*cos + beta
	return biquad{
		b0: a * ((a + 1) - (a-1)*cos + beta) / a0,
		b1: 2 * a * ((a - 1) - (a+1)*cos) / a0,
		b2: a * ((a + 1) - (a-1)*cos - beta) / a0,
		a1: -2 * ((a - 1) + (a+1)*cos) / a0,
		a2: ((a + 1) + (a-1)*cos - beta) / a0,
	}
}

// inBand reports whether a filter frequency is usable at the buffer's rate.
func inBand(hz float64, rate int) bool {
	return hz > 0 && hz < float64(rate)/2
}

func peakFilterTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	center := p.Float("center_hz", 1000)
	gainDB := p.Float("gain_db", 0)
	q := p.Float("q", 1)
	if q <= 0 {
		q = 1
	}
	if !inBand(center, in.Rate) {
		return in, nil
	}
	in.Samples = peakingCoeffs(center, gainDB, q, in.Rate).process(in.Samples)
	return in, nil
}

func highShelfTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	cutoff := p.Float("cutoff_hz", 8000)
	gainDB := p.Float("gain_db", 0)
	if !inBand(cutoff, in.Rate) {
		return in, nil
	}
	in.Samples = shelfCoeffs(cutoff, gainDB, in.Rate, true).process(in.Samples)
	return in, nil
}

func lowShelfTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	cutoff := p.Float("cutoff_hz", 200)
	gainDB := p.Float("gain_db", 0)
	if !inBand(cutoff, in.Rate) {
		return in, nil
	}
	in.Samples = shelfCoeffs(cutoff, gainDB, in.Rate, false).process(in.Samples)
	return in, nil
}
