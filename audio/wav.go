package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
	"github.com/golang/glog"
)

// WAV format tags of the fmt chunk.
const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// errUnsupportedWav marks WAV files that are valid but whose encoding has no
// in-process decoder. Open hands them to ffmpeg unless the native decoder is forced.
var errUnsupportedWav = errors.New("unsupported WAV encoding")

func openWav(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, &DecodeError{Path: path, Err: errors.New("invalid WAV file")}
	}
	format, bitDepth := int(d.WavAudioFormat), int(d.BitDepth)
	scale, err := wavScale(format, bitDepth)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("missing WAV format")}
	}

	data := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = scale(v)
		if math.IsNaN(data[i]) || math.IsInf(data[i], 0) {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("invalid sample at %d", i)}
		}
	}

	glog.V(1).Infof("decoded wav %s: format %d, %d Hz, %d channels, %d bit, %d samples",
		path, format, buf.Format.SampleRate, buf.Format.NumChannels, bitDepth, len(data))

	return &pcmSource{
		path: path,
		samples: &Samples{
			Data:       data,
			Channels:   buf.Format.NumChannels,
			SampleRate: buf.Format.SampleRate,
		},
	}, nil
}

// wavScale returns the conversion from the integers go-audio/wav yields to
// samples in [-1, 1].
func wavScale(format, bitDepth int) (func(int) float64, error) {
	switch format {
	case wavFormatPCM:
		switch bitDepth {
		case 8:
			// 8 bit PCM is unsigned with silence at 128
			return func(v int) float64 { return float64(v-128) / 128 }, nil
		case 16, 24, 32:
			factor := math.Pow(2, float64(bitDepth-1))
			return func(v int) float64 { return float64(v) / factor }, nil
		}
	case wavFormatFloat:
		if bitDepth == 32 {
			// the decoder hands back the IEEE bits as a signed 32 bit integer
			return func(v int) float64 { return float64(math.Float32frombits(uint32(int32(v)))) }, nil
		}
	}
	return nil, fmt.Errorf("%w: format %d, %d bit", errUnsupportedWav, format, bitDepth)
}
