package effects

import (
	"context"
	"math"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/tools"
)

const maxSemitones = 72

func addLatencyTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	seconds := p.Float("seconds", 0.5)
	if seconds < 0 {
		seconds = 0
	}
	pad := make([]float32, int(seconds*float64(in.Rate)))
	in.Samples = append(pad, in.Samples...)
	return in, nil
}

func delayTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	seconds := p.Float("seconds", 0.3)
	feedback := clampF(p.Float("feedback", 0.4), 0, 0.95)
	mix := clampF(p.Float("mix", 0.5), 0, 1)

	lag := int(seconds * float64(in.Rate))
	if lag <= 0 {
		return in, nil
	}
	out := make([]float32, len(in.Samples))
	for i, s := range in.Samples {
		wet := float32(0)
		if i >= lag {
			wet = out[i-lag] * float32(feedback)
		}
		out[i] = s + wet*float32(mix)
	}
	in.Samples = out
	return in, nil
}

// reverbTool is a small Schroeder-style reverb: parallel comb filters
// followed by a dry/wet blend.
func reverbTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	decay := clampF(p.Float("decay", 0.5), 0, 0.95)
	mix := clampF(p.Float("mix", 0.3), 0, 1)

	combsMs := []float64{29.7, 37.1, 41.1, 43.7}
	wet := make([]float32, len(in.Samples))
	for _, ms := range combsMs {
		lag := int(ms / 1000 * float64(in.Rate))
		if lag <= 0 || lag >= len(in.Samples) {
			continue
		}
		buf := make([]float32, len(in.Samples))
		for i, s := range in.Samples {
			v := s
			if i >= lag {
				v += buf[i-lag] * float32(decay)
			}
			buf[i] = v
		}
		for i := range wet {
			wet[i] += buf[i] / float32(len(combsMs))
		}
	}
	for i := range in.Samples {
		in.Samples[i] = in.Samples[i]*(1-float32(mix)) + wet[i]*float32(mix)
	}
	return in, nil
}

// chorusTool thickens the signal with a short delay line whose read point
// sweeps around centre_delay_ms under a sine LFO.
func chorusTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	rateHz := clampF(p.Float("rate_hz", 1), 0, 20)
	depth := clampF(p.Float("depth", 0.25), 0, 1)
	centreMs := clampF(p.Float("centre_delay_ms", 7), 1, 50)
	feedback := float32(clampF(p.Float("feedback", 0), 0, 0.95))
	mix := float32(clampF(p.Float("mix", 0.25), 0, 1))

	centre := centreMs / 1000 * float64(in.Rate)
	sweep := centre * depth
	out := make([]float32, len(in.Samples))
	for i, s := range in.Samples {
		lag := centre + sweep*math.Sin(2*math.Pi*rateHz*float64(i)/float64(in.Rate))
		pos := float64(i) - lag
		var wet float32
		if pos >= 0 {
			j := int(pos)
			frac := float32(pos - float64(j))
			wet = in.Samples[j] * (1 - frac)
			if j+1 < len(in.Samples) {
				wet += in.Samples[j+1] * frac
			}
			if feedback > 0 {
				wet += out[j] * feedback
			}
		}
		out[i] = s*(1-mix) + wet*mix
	}
	in.Samples = out
	return in, nil
}

// phaserTool runs four first-order allpass stages whose corner frequency
// sweeps around centre_frequency_hz, then blends against the dry signal.
func phaserTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	rateHz := clampF(p.Float("rate_hz", 0.5), 0, 20)
	depth := clampF(p.Float("depth", 0.5), 0, 1)
	centreHz := clampF(p.Float("centre_frequency_hz", 1300), 20, float64(in.Rate)/2-1)
	feedback := clampF(p.Float("feedback", 0), 0, 0.95)
	mix := clampF(p.Float("mix", 0.25), 0, 1)

	const stages = 4
	var xPrev, yPrev [stages]float64
	out := make([]float32, len(in.Samples))
	var last float64
	for i, s := range in.Samples {
		f := centreHz * (1 + depth*math.Sin(2*math.Pi*rateHz*float64(i)/float64(in.Rate)))
		if ceil := float64(in.Rate)/2 - 1; f > ceil {
			f = ceil
		}
		tan := math.Tan(math.Pi * f / float64(in.Rate))
		g := (tan - 1) / (tan + 1)
		v := float64(s) + last*feedback
		for st := 0; st < stages; st++ {
			y := g*v + xPrev[st] - g*yPrev[st]
			xPrev[st], yPrev[st] = v, y
			v = y
		}
		last = v
		out[i] = float32(float64(s)*(1-mix) + v*mix)
	}
	in.Samples = out
	return in, nil
}

func timeStretchTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	rate := p.Float("rate", 1)
	if rate <= 0 {
		rate = 1
	}
	// rate above 1 plays faster, so duration shrinks by the same factor.
	in.Samples = stretchOLA(in.Samples, 1/rate)
	return in, nil
}

func voiceConversionTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	semitones := clampF(p.Float("semitones", 0), -maxSemitones, maxSemitones)
	in.Samples = pitchShift(in.Samples, semitones)
	return in, nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
