package effects

import (
	"context"
	"math"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/tools"
)

func gainTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	factor := dbToLinear(p.Float("gain_db", 0))
	for i := range in.Samples {
		in.Samples[i] *= factor
	}
	return in, nil
}

func invertTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	for i := range in.Samples {
		in.Samples[i] = -in.Samples[i]
	}
	return in, nil
}

func noiseGateTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	threshold := dbToLinear(p.Float("threshold_db", -50))
	for i, s := range in.Samples {
		if abs32(s) < threshold {
			in.Samples[i] = 0
		}
	}
	return in, nil
}

func compressorTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	threshold := float64(dbToLinear(p.Float("threshold_db", -18)))
	ratio := p.Float("ratio", 4)
	if ratio < 1 {
		ratio = 1
	}
	for i, s := range in.Samples {
		amp := math.Abs(float64(s))
		if amp <= threshold || amp == 0 {
			continue
		}
		compressed := threshold + (amp-threshold)/ratio
		in.Samples[i] = s * float32(compressed/amp)
	}
	return in, nil
}

func limiterTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	ceiling := dbToLinear(p.Float("ceiling_db", -1))
	for i, s := range in.Samples {
		if s > ceiling {
			in.Samples[i] = ceiling
		} else if s < -ceiling {
			in.Samples[i] = -ceiling
		}
	}
	return in, nil
}

func distortionTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	drive := p.Float("drive", 5)
	if drive < 1 {
		drive = 1
	}
	norm := float32(math.Tanh(drive))
	for i, s := range in.Samples {
		in.Samples[i] = float32(math.Tanh(drive*float64(s))) / norm
	}
	return in, nil
}

// clippingTool hard-clips at the threshold. Unlike limiter it is meant as a
// distortion effect, so the default threshold sits well below full scale.
func clippingTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	threshold := dbToLinear(p.Float("threshold_db", -6))
	for i, s := range in.Samples {
		if s > threshold {
			in.Samples[i] = threshold
		} else if s < -threshold {
			in.Samples[i] = -threshold
		}
	}
	return in, nil
}

func bitcrushTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	bits := p.Float("bits", 8)
	if bits < 1 {
		bits = 1
	} else if bits > 24 {
		bits = 24
	}
	levels := math.Pow(2, bits) - 1
	for i, s := range in.Samples {
		in.Samples[i] = float32(math.Round(float64(s)*levels/2) * 2 / levels)
	}
	return in, nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
