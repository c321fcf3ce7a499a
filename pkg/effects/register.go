package effects

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonoralabs/sonora/pkg/audio"
	"github.com/sonoralabs/sonora/pkg/tools"
)

type catalogEntry struct {
	group string
	desc  tools.Descriptor
	cap   tools.Capability
}

func catalog() []catalogEntry {
	num := func(doc string, def float64) tools.ParamSpec {
		return tools.ParamSpec{Description: doc, Type: tools.TypeNumber, Default: def}
	}
	return []catalogEntry{
		{"enhancement", tools.Descriptor{
			Name:        "speech_enhancement",
			Description: "raises a voice recording by a clean decibel gain",
			Parameters: map[string]tools.ParamSpec{
				"gain_db": num("makeup gain in decibels", 6.0),
			},
		}, speechEnhancementTool},
		{"enhancement", tools.Descriptor{
			Name:        "voice_conversion",
			Description: "shifts the pitch of a voice without changing its speed",
			Parameters: map[string]tools.ParamSpec{
				"semitones": num("pitch shift in semitones, positive raises", 0.0),
			},
		}, voiceConversionTool},
		{"dynamics", tools.Descriptor{
			Name:        "gain",
			Description: "scales amplitude by a decibel amount",
			Parameters: map[string]tools.ParamSpec{
				"gain_db": num("gain in decibels, negative attenuates", 0.0),
			},
		}, gainTool},
		{"dynamics", tools.Descriptor{
			Name:        "invert",
			Description: "flips the polarity of every sample",
		}, invertTool},
		{"dynamics", tools.Descriptor{
			Name:        "noise_gate",
			Description: "silences samples below a threshold",
			Parameters: map[string]tools.ParamSpec{
				"threshold_db": num("gate threshold in decibels", -50.0),
			},
		}, noiseGateTool},
		{"dynamics", tools.Descriptor{
			Name:        "compressor",
			Description: "reduces dynamic range above a threshold",
			Parameters: map[string]tools.ParamSpec{
				"threshold_db": num("compression threshold in decibels", -18.0),
				"ratio":        num("compression ratio, 1 is off", 4.0),
			},
		}, compressorTool},
		{"dynamics", tools.Descriptor{
			Name:        "limiter",
			Description: "hard-limits peaks to a ceiling",
			Parameters: map[string]tools.ParamSpec{
				"ceiling_db": num("output ceiling in decibels", -1.0),
			},
		}, limiterTool},
		{"dynamics", tools.Descriptor{
			Name:        "distortion",
			Description: "soft-clips the signal for a saturated sound",
			Parameters: map[string]tools.ParamSpec{
				"drive": num("drive amount, higher is dirtier", 5.0),
			},
		}, distortionTool},
		{"dynamics", tools.Descriptor{
			Name:        "clipping",
			Description: "hard-clips the signal at a threshold for harsh distortion",
			Parameters: map[string]tools.ParamSpec{
				"threshold_db": num("clip threshold in decibels", -6.0),
			},
		}, clippingTool},
		{"dynamics", tools.Descriptor{
			Name:        "bitcrush",
			Description: "quantizes samples to a reduced bit depth",
			Parameters: map[string]tools.ParamSpec{
				"bits": num("target bit depth", 8.0),
			},
		}, bitcrushTool},
		{"filters", tools.Descriptor{
			Name:        "highpass_filter",
			Description: "removes content below a cutoff frequency",
			Parameters: map[string]tools.ParamSpec{
				"cutoff_hz": num("cutoff frequency in hertz", 300.0),
			},
		}, highpassTool},
		{"filters", tools.Descriptor{
			Name:        "lowpass_filter",
			Description: "removes content above a cutoff frequency",
			Parameters: map[string]tools.ParamSpec{
				"cutoff_hz": num("cutoff frequency in hertz", 3000.0),
			},
		}, lowpassTool},
		{"filters", tools.Descriptor{
			Name:        "peak_filter",
			Description: "boosts or cuts a band around a center frequency",
			Parameters: map[string]tools.ParamSpec{
				"center_hz": num("center frequency in hertz", 1000.0),
				"gain_db":   num("boost or cut in decibels", 0.0),
				"q":         num("band width, higher is narrower", 1.0),
			},
		}, peakFilterTool},
		{"filters", tools.Descriptor{
			Name:        "high_shelf",
			Description: "boosts or cuts everything above a shelf frequency",
			Parameters: map[string]tools.ParamSpec{
				"cutoff_hz": num("shelf frequency in hertz", 8000.0),
				"gain_db":   num("boost or cut in decibels", 0.0),
			},
		}, highShelfTool},
		{"filters", tools.Descriptor{
			Name:        "low_shelf",
			Description: "boosts or cuts everything below a shelf frequency",
			Parameters: map[string]tools.ParamSpec{
				"cutoff_hz": num("shelf frequency in hertz", 200.0),
				"gain_db":   num("boost or cut in decibels", 0.0),
			},
		}, lowShelfTool},
		{"time", tools.Descriptor{
			Name:        "add_latency",
			Description: "prepends silence to the recording",
			Parameters: map[string]tools.ParamSpec{
				"seconds": num("silence duration in seconds", 0.5),
			},
		}, addLatencyTool},
		{"time", tools.Descriptor{
			Name:        "delay",
			Description: "adds a feedback echo",
			Parameters: map[string]tools.ParamSpec{
				"seconds":  num("echo time in seconds", 0.3),
				"feedback": num("echo feedback, 0 to 0.95", 0.4),
				"mix":      num("wet mix, 0 to 1", 0.5),
			},
		}, delayTool},
		{"time", tools.Descriptor{
			Name:        "reverb",
			Description: "adds room ambience",
			Parameters: map[string]tools.ParamSpec{
				"decay": num("tail decay, 0 to 0.95", 0.5),
				"mix":   num("wet mix, 0 to 1", 0.3),
			},
		}, reverbTool},
		{"time", tools.Descriptor{
			Name:        "chorus",
			Description: "thickens the sound with a modulated short delay",
			Parameters: map[string]tools.ParamSpec{
				"rate_hz":         num("sweep speed in hertz", 1.0),
				"depth":           num("sweep depth, 0 to 1", 0.25),
				"centre_delay_ms": num("center delay in milliseconds", 7.0),
				"feedback":        num("delay feedback, 0 to 0.95", 0.0),
				"mix":             num("wet mix, 0 to 1", 0.25),
			},
		}, chorusTool},
		{"time", tools.Descriptor{
			Name:        "phaser",
			Description: "adds a sweeping notch movement to the sound",
			Parameters: map[string]tools.ParamSpec{
				"rate_hz":             num("sweep speed in hertz", 0.5),
				"depth":               num("sweep depth, 0 to 1", 0.5),
				"centre_frequency_hz": num("sweep center frequency in hertz", 1300.0),
				"feedback":            num("stage feedback, 0 to 0.95", 0.0),
				"mix":                 num("wet mix, 0 to 1", 0.25),
			},
		}, phaserTool},
		{"time", tools.Descriptor{
			Name:        "time_stretch",
			Description: "changes speed without changing pitch",
			Parameters: map[string]tools.ParamSpec{
				"rate": num("playback rate, above 1 is faster", 1.0),
			},
		}, timeStretchTool},
	}
}

// Register installs every built-in capability plus the list_capabilities
// meta tool, which reports the catalog through the run's note store.
func Register(reg *tools.Registry) error {
	groups := make(map[string]string)
	for _, e := range catalog() {
		if err := reg.Register(e.desc, e.cap); err != nil {
			return err
		}
		groups[e.desc.Name] = e.group
	}

	listDesc := tools.Descriptor{
		Name:        "list_capabilities",
		Description: "describes every available tool instead of changing the audio",
	}
	return reg.Register(listDesc, func(ctx context.Context, in audio.Buffer, p tools.Params) (audio.Buffer, error) {
		tools.NotesFrom(ctx).Add("list_capabilities", describeRegistry(reg, groups))
		return in, nil
	})
}

func describeRegistry(reg *tools.Registry, groups map[string]string) string {
	grouped := make(map[string][]tools.Descriptor)
	var order []string
	for _, desc := range reg.List() {
		g := groups[desc.Name]
		if g == "" {
			g = "meta"
		}
		if _, seen := grouped[g]; !seen {
			order = append(order, g)
		}
		grouped[g] = append(grouped[g], desc)
	}

	var b strings.Builder
	b.WriteString("Available capabilities:\n")
	for _, g := range order {
		fmt.Fprintf(&b, "\n%s:\n", g)
		for _, d := range grouped[g] {
			fmt.Fprintf(&b, "  %s: %s\n", d.Name, d.Description)
		}
	}
	return b.String()
}
