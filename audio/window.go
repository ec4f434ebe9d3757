package audio

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how a window is placed relative to the playback time.
type Policy int

// Window addressing policies
const (
	// Forward windows start at the sample for t and extend forward.
	Forward Policy = iota
	// Centered windows are centered on the sample for t.
	Centered
)

func (p Policy) String() string {
	switch p {
	case Forward:
		return "forward"
	case Centered:
		return "centered"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "forward" or "centered" (case insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward":
		return Forward, nil
	case "centered", "centred", "center":
		return Centered, nil
	}
	return 0, fmt.Errorf("unknown window policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// WindowSamples is the nominal number of samples in a window of the given duration.
func WindowSamples(windowDuration, sampleRate float64) int {
	return int(math.Round(windowDuration * sampleRate))
}

// Bounds returns the [start, end) sample indices of the window at time t in a buffer
// of length n. The result always satisfies 0 <= start <= end <= n; windows are
// clamped at the buffer edges and may be empty past the end.
func Bounds(t float64, n int, sampleRate, windowDuration float64, policy Policy) (start, end int) {
	ws := WindowSamples(windowDuration, sampleRate)
	// clamp in float space: converting an out of range float to int is undefined.
	// Past n+ws every policy yields an empty window.
	pos := math.Round(t * sampleRate)
	if !(pos > 0) {
		pos = 0
	} else if limit := float64(n) + float64(ws); pos > limit {
		pos = limit
	}
	center := int(pos)

	switch policy {
	case Centered:
		start = center - ws/2
		end = center + ws/2
	default:
		start = center
		end = center + ws
	}

	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

// WindowAt returns the slice of buffer that should be drawn at time t. The result
// aliases buffer and may be shorter than the nominal window, or empty, at the edges.
func WindowAt(t float64, buffer []float64, sampleRate, windowDuration float64, policy Policy) []float64 {
	start, end := Bounds(t, len(buffer), sampleRate, windowDuration, policy)
	return buffer[start:end]
}
