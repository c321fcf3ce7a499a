package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// ReadRaw loads a headerless little-endian float32 file recorded at the
// given sample rate.
func ReadRaw(path string, rate int) (Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Buffer{}, err
	}
	if len(data)%4 != 0 {
		return Buffer{}, fmt.Errorf("raw audio %s: %d bytes is not whole float32 samples", path, len(data))
	}
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return Buffer{Samples: samples, Rate: rate}, nil
}

// WriteRaw writes the buffer as headerless little-endian float32 samples.
func WriteRaw(path string, b Buffer) error {
	data := make([]byte, len(b.Samples)*4)
	for i, s := range b.Samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return os.WriteFile(path, data, 0o644)
}
