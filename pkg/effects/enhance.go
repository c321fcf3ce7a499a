package effects

import (
	"context"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/tools"
)

func highpassTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	cutoff := p.Float("cutoff_hz", 300)
	in.Samples = highpass(in.Samples, cutoff, in.Rate)
	return in, nil
}

func lowpassTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	cutoff := p.Float("cutoff_hz", 3000)
	in.Samples = lowpass(in.Samples, cutoff, in.Rate)
	return in, nil
}

// speechEnhancementTool brings a voice recording up to level. It is a pure
// amplitude scale; the chain's output stage handles clipping, so every
// output sample is exactly the input times 10^(gain_db/20).
func speechEnhancementTool(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
	factor := dbToLinear(p.Float("gain_db", 6))
	for i := range in.Samples {
		in.Samples[i] *= factor
	}
	return in, nil
}
