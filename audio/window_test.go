package audio

import (
	"math"
	"testing"
)

func ramp(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func TestBounds(t *testing.T) {
	const (
		fs = 100.0
		n  = 100 // one second
	)
	cases := []struct {
		name       string
		t, window  float64
		policy     Policy
		start, end int
	}{
		{"forward start", 0, 0.1, Forward, 0, 10},
		{"forward middle", 0.5, 0.1, Forward, 50, 60},
		{"forward rounds t", 0.504, 0.1, Forward, 50, 60},
		{"forward tail", 0.95, 0.1, Forward, 95, 100},
		{"forward at end", 1.0, 0.1, Forward, 100, 100},
		{"forward past end", 1.2, 0.1, Forward, 100, 100},
		{"centered start", 0, 0.1, Centered, 0, 5},
		{"centered middle", 0.5, 0.1, Centered, 45, 55},
		{"centered end", 1.0, 0.1, Centered, 95, 100},
		{"centered far past end", 3.0, 0.1, Centered, 100, 100},
		{"negative t", -0.5, 0.1, Forward, 0, 10},
		{"odd window", 0.5, 0.11, Centered, 45, 55},
		{"forward huge t", 1e300, 0.1, Forward, 100, 100},
		{"centered huge t", 1e300, 0.1, Centered, 100, 100},
		{"forward +Inf", math.Inf(1), 0.1, Forward, 100, 100},
		{"centered +Inf", math.Inf(1), 0.1, Centered, 100, 100},
		{"-Inf clamps to start", math.Inf(-1), 0.1, Forward, 0, 10},
		{"NaN clamps to start", math.NaN(), 0.1, Forward, 0, 10},
		{"centered just past end", 1.06, 0.1, Centered, 100, 100},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start, end := Bounds(c.t, n, fs, c.window, c.policy)
			if start != c.start || end != c.end {
				t.Fatalf("expected [%d, %d), got [%d, %d)", c.start, c.end, start, end)
			}
		})
	}
}

func TestWindowAtForwardEnd(t *testing.T) {
	buf := ramp(44100)
	duration := 1.0
	w := WindowAt(duration, buf, 44100, 0.05, Forward)
	if len(w) != 0 {
		t.Fatal("expected empty window at end of buffer, got", len(w))
	}

	// just before the end the window is the remainder of the buffer
	w = WindowAt(duration-0.01, buf, 44100, 0.05, Forward)
	if len(w) != 441 {
		t.Fatal("expected 441 samples, got", len(w))
	}
	if w[len(w)-1] != buf[len(buf)-1] {
		t.Fatal("window should end at the last sample")
	}
}

func TestWindowAtCenteredStart(t *testing.T) {
	buf := ramp(44100)
	w := WindowAt(0, buf, 44100, 0.1, Centered)
	if len(w) != 2205 {
		t.Fatal("expected half a window, got", len(w))
	}
	if w[0] != 0 {
		t.Fatal("window should start at sample 0, got", w[0])
	}
}

func TestWindowAtFullLength(t *testing.T) {
	buf := ramp(44100)
	for _, p := range []Policy{Forward, Centered} {
		w := WindowAt(0.5, buf, 44100, 0.1, p)
		if len(w) != 4410 {
			t.Fatal(p, "expected 4410 samples, got", len(w))
		}
	}
}

func TestSampler(t *testing.T) {
	buf := NewBuffer(ramp(1000), 1000)
	s := NewSampler(buf, 0.02, Centered)
	if s.WindowSamples() != 20 {
		t.Fatal(s.WindowSamples())
	}
	// repeated and out of order calls see the same data
	a := s.Window(0.5)
	_ = s.Window(0.9)
	_ = s.Window(0.1)
	b := s.Window(0.5)
	if len(a) != len(b) || a[0] != b[0] || a[0] != 490 {
		t.Fatal(a, b)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, exp := range map[string]Policy{
		"forward":  Forward,
		"Centered": Centered,
		" center ": Centered,
	} {
		p, err := ParsePolicy(in)
		if err != nil || p != exp {
			t.Fatal(in, p, err)
		}
	}
	if _, err := ParsePolicy("backward"); err == nil {
		t.Fatal("expected error")
	}

	var p Policy
	if err := p.UnmarshalText([]byte("centered")); err != nil || p != Centered {
		t.Fatal(p, err)
	}
	b, _ := Forward.MarshalText()
	if string(b) != "forward" {
		t.Fatal(string(b))
	}
}
