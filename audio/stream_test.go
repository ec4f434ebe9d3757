package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeWav(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()
	writeWavFormat(t, path, sampleRate, 16, channels, wavFormatPCM, data)
}

// writeWavFormat writes data as stored words of the given bit depth under the
// given fmt tag.
func writeWavFormat(t *testing.T, path string, sampleRate, bitDepth, channels, format int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, format)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "podcast.mp3"), nil)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatal("expected ErrMissingSource, got", err)
	}
	_, err = Open(t.TempDir(), nil)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatal("expected ErrMissingSource for a directory, got", err)
	}
}

func TestOpenUnknownDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	writeWav(t, path, 8000, 1, make([]int, 10))
	if _, err := Open(path, &Config{Decoder: "gstreamer"}); err == nil {
		t.Fatal("expected error for unknown decoder")
	}
}

func TestOpenNativeUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path, &Config{Decoder: DecoderNative})
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatal("expected DecodeError, got", err)
	}
}

func TestOpenInvalidWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path, nil)
	var de *DecodeError
	if !errors.As(err, &de) || de.Path != path {
		t.Fatal("expected DecodeError, got", err)
	}
}

func TestWavSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// 4 stereo frames: L/R pairs
	writeWav(t, path, 8000, 2, []int{16384, -16384, 16384, 16384, -32768, 0, 0, 0})

	src, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.Path() != path {
		t.Fatal(src.Path())
	}
	if d := src.Duration(); d != 4.0/8000 {
		t.Fatal("duration", d)
	}

	s, err := src.Samples(8000)
	if err != nil {
		t.Fatal(err)
	}
	if s.Channels != 2 || s.Frames() != 4 {
		t.Fatal(s.Channels, s.Frames())
	}
	exp := []float64{0.5, -0.5, 0.5, 0.5, -1, 0, 0, 0}
	for i := range exp {
		if math.Abs(s.Data[i]-exp[i]) > 1e-9 {
			t.Fatal(exp, s.Data)
		}
	}

	buf, err := Load(src, 8000, true)
	if err != nil {
		t.Fatal(err)
	}
	mono := buf.Samples()
	expMono := []float64{0, 0.5, -0.5, 0}
	for i := range expMono {
		if math.Abs(mono[i]-expMono[i]) > 1e-9 {
			t.Fatal(expMono, mono)
		}
	}
}

func TestWavSourceResampled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	data := make([]int, 8000)
	writeWav(t, path, 8000, 1, data)

	src, err := Open(path, &Config{Decoder: DecoderNative})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	buf, err := Load(src, 44100, true)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 44100 {
		t.Fatal("expected one second at 44100 Hz, got", buf.Len())
	}
	if buf.Duration() != src.Duration() {
		t.Fatal(buf.Duration(), src.Duration())
	}
}

func decodeWavSamples(t *testing.T, path string) []float64 {
	t.Helper()
	src, err := Open(path, &Config{Decoder: DecoderNative})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	s, err := src.Samples(8000)
	if err != nil {
		t.Fatal(err)
	}
	return s.Data
}

func TestWav8BitUnsigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u8.wav")
	writeWavFormat(t, path, 8000, 8, 1, wavFormatPCM, []int{128, 128, 255, 0, 192})

	got := decodeWavSamples(t, path)
	exp := []float64{0, 0, 127.0 / 128, -1, 0.5}
	for i := range exp {
		if math.Abs(got[i]-exp[i]) > 1e-9 {
			t.Fatal(exp, got)
		}
	}

	// silence must stay silent through normalization
	path = filepath.Join(t.TempDir(), "silence.wav")
	writeWavFormat(t, path, 8000, 8, 1, wavFormatPCM, []int{128, 128, 128, 128})
	src, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	buf, err := Load(src, 8000, true)
	if err != nil {
		t.Fatal(err)
	}
	if p := buf.Peak(); p != 0 {
		t.Fatal("expected silence, got peak", p)
	}
}

func TestWavFloat32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f32.wav")
	exp := []float64{0.5, -0.25, 0.001, 0, -1}
	data := make([]int, len(exp))
	for i, v := range exp {
		data[i] = int(int32(math.Float32bits(float32(v))))
	}
	writeWavFormat(t, path, 8000, 32, 1, wavFormatFloat, data)

	got := decodeWavSamples(t, path)
	for i := range exp {
		if math.Abs(got[i]-exp[i]) > 1e-7 {
			t.Fatal(exp, got)
		}
	}
}

func TestWav32BitPCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s32.wav")
	writeWavFormat(t, path, 8000, 32, 1, wavFormatPCM, []int{1 << 30, -1 << 31})
	got := decodeWavSamples(t, path)
	if got[0] != 0.5 || got[1] != -1 {
		t.Fatal(got)
	}
}

func TestWavUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adpcm.wav")
	// format 2 is MS ADPCM
	writeWavFormat(t, path, 8000, 16, 1, 2, []int{1, 2, 3, 4})

	_, err := Open(path, &Config{Decoder: DecoderNative})
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, errUnsupportedWav) {
		t.Fatal("expected unsupported format DecodeError, got", err)
	}

	// 64 bit float has no in-process decoder either
	if _, err := wavScale(wavFormatFloat, 64); !errors.Is(err, errUnsupportedWav) {
		t.Fatal(err)
	}
}

// writeSilentMP3 writes n MPEG-1 Layer III frames (128 kbps, 44.1 kHz, stereo)
// whose side info and main data are all zero, which decode to digital silence.
func writeSilentMP3(t *testing.T, path string, n int) {
	t.Helper()
	const frameSize = 144 * 128000 / 44100 // 417 bytes, no padding
	data := make([]byte, 0, n*frameSize)
	for i := 0; i < n; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xff, 0xfb, 0x90, 0x00})
		data = append(data, frame...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMP3Source(t *testing.T) {
	path := filepath.Join(t.TempDir(), "podcast.mp3")
	writeSilentMP3(t, path, 10)

	src, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	s, err := src.Samples(44100)
	if err != nil {
		t.Fatal(err)
	}
	if s.Channels != 2 || s.SampleRate != 44100 {
		t.Fatal(s.Channels, s.SampleRate)
	}
	// 1152 samples per Layer III frame
	if s.Frames() != 10*1152 {
		t.Fatal("expected", 10*1152, "frames, got", s.Frames())
	}
	if d := src.Duration(); math.Abs(d-10*1152.0/44100) > 1e-12 {
		t.Fatal("duration", d)
	}
	for i, v := range s.Data {
		if v != 0 {
			t.Fatal("expected silence, got", v, "at", i)
		}
	}

	buf, err := Load(src, 22050, true)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 5*1152 || buf.Peak() != 0 {
		t.Fatal(buf.Len(), buf.Peak())
	}
}

func TestOpenInvalidMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	var de *DecodeError
	if _, err := Open(path, nil); !errors.As(err, &de) {
		t.Fatal("expected DecodeError, got", err)
	}
}

func TestDecodeS16LE(t *testing.T) {
	raw := []byte{
		0x00, 0x40, 0x00, 0xc0, // 16384, -16384
		0xff, 0x7f, 0x00, 0x80, // 32767, -32768
		0x01, 0x00, 0x02, // partial frame
	}
	got, dropped := decodeS16LE(raw, 2)
	if dropped != 3 {
		t.Fatal("expected 3 dropped bytes, got", dropped)
	}
	exp := []float64{0.5, -0.5, 32767.0 / 32768, -1}
	if len(got) != len(exp) {
		t.Fatal(exp, got)
	}
	for i := range exp {
		if got[i] != exp[i] {
			t.Fatal(exp, got)
		}
	}
}
