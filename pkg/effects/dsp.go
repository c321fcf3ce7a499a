// Package effects implements the built-in audio capabilities and registers
// them with a tool registry.
package effects

import "math"

// dbToLinear converts decibels to a linear amplitude factor.
func dbToLinear(db float64) float32 {
	return float32(math.Pow(10, db/20))
}

// resampleLinear reads the input at the given ratio with linear
// interpolation. A ratio above 1 shortens the output and raises pitch.
func resampleLinear(in []float32, ratio float64) []float32 {
	if len(in) == 0 || ratio <= 0 {
		return nil
	}
	n := int(float64(len(in)) / ratio)
	if n < 1 {
		n = 1
	}
	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

// stretchOLA changes duration by the given factor without changing pitch,
// using windowed overlap-add. A factor above 1 lengthens the output.
func stretchOLA(in []float32, factor float64) []float32 {
	if len(in) == 0 || factor <= 0 {
		return nil
	}
	const window = 1024
	if len(in) <= window {
		return resampleLinear(in, 1/factor)
	}
	synthHop := window / 4
	analysisHop := float64(synthHop) / factor

	outLen := int(float64(len(in)) * factor)
	out := make([]float32, outLen+window)
	weight := make([]float32, outLen+window)
	hann := make([]float32, window)
	for i := range hann {
		hann[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(window-1))))
	}

	for frame := 0; ; frame++ {
		read := int(float64(frame) * analysisHop)
		write := frame * synthHop
		if read+window > len(in) || write+window > len(out) {
			break
		}
		for i := 0; i < window; i++ {
			out[write+i] += in[read+i] * hann[i]
			weight[write+i] += hann[i]
		}
	}
	for i := range out {
		if weight[i] > 1e-6 {
			out[i] /= weight[i]
		}
	}
	if outLen > len(out) {
		outLen = len(out)
	}
	return out[:outLen]
}

// pitchShift moves pitch by the given semitones while keeping duration.
func pitchShift(in []float32, semitones float64) []float32 {
	if semitones == 0 {
		out := make([]float32, len(in))
		copy(out, in)
		return out
	}
	ratio := math.Pow(2, semitones/12)
	return resampleLinear(stretchOLA(in, ratio), ratio)
}

// onePoleCoeff derives the smoothing coefficient for a one-pole filter.
func onePoleCoeff(cutoffHz float64, rate int) float32 {
	if cutoffHz <= 0 || rate <= 0 {
		return 1
	}
	rc := 1 / (2 * math.Pi * cutoffHz)
	dt := 1 / float64(rate)
	return float32(dt / (rc + dt))
}

func lowpass(in []float32, cutoffHz float64, rate int) []float32 {
	alpha := onePoleCoeff(cutoffHz, rate)
	out := make([]float32, len(in))
	var prev float32
	for i, s := range in {
		prev += alpha * (s - prev)
		out[i] = prev
	}
	return out
}

func highpass(in []float32, cutoffHz float64, rate int) []float32 {
	low := lowpass(in, cutoffHz, rate)
	out := make([]float32, len(in))
	for i := range in {
		out[i] = in[i] - low[i]
	}
	return out
}
