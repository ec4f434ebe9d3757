package audio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16 bit little endian stereo.
const mp3Channels = 2

func openMP3(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	data, dropped := decodeS16LE(raw, mp3Channels)
	if dropped > 0 {
		glog.Warningf("mp3 %s: dropping %d trailing bytes", path, dropped)
	}

	glog.V(1).Infof("decoded mp3 %s: %d Hz, %d samples", path, d.SampleRate(), len(data))

	return &pcmSource{
		path: path,
		samples: &Samples{
			Data:       data,
			Channels:   mp3Channels,
			SampleRate: d.SampleRate(),
		},
	}, nil
}

// decodeS16LE converts interleaved signed 16 bit little endian PCM to samples in
// [-1, 1). Bytes past the last complete frame are dropped and counted.
func decodeS16LE(raw []byte, channels int) ([]float64, int) {
	rem := len(raw) % (2 * channels)
	raw = raw[:len(raw)-rem]
	data := make([]float64, len(raw)/2)
	for i := range data {
		data[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}
	return data, rem
}
