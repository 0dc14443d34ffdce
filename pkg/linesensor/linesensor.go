// Package linesensor turns analog IR array readings into a lateral error.
package linesensor

import "fmt"

const (
	DefaultChannels           = 8
	DefaultFullScale          = 1023
	DefaultSpacing            = 0.008 // metres between adjacent sensors
	DefaultDetectionThreshold = 0.5
)

// Source reads one raw sample from every channel of the array.
type Source interface {
	ReadChannels(dst []int) error
}

// Frame is a single tick's measurement.  Error is only meaningful when the
// line was found.
type Frame struct {
	Lost     bool
	Error    float64 // metres, positive when the line is towards the high-index end
	Position float64 // centroid in channel index space
	Sum      float64
}

func (f Frame) String() string {
	if f.Lost {
		return fmt.Sprintf("lost(sum=%.2f)", f.Sum)
	}
	return fmt.Sprintf("pos=%.2f err=%+.4fm sum=%.2f", f.Position, f.Error, f.Sum)
}

// Sensor holds the array calibration.
type Sensor struct {
	Channels  int `yaml:"channels"`
	FullScale int `yaml:"fullScale"`

	// Inverted is set when the line reads low (e.g. white line on dark floor
	// with reflectance sensors that read high on dark).
	Inverted bool `yaml:"inverted"`

	Spacing            float64 `yaml:"spacing"`
	DetectionThreshold float64 `yaml:"detectionThreshold"`
}

func Default() Sensor {
	return Sensor{
		Channels:           DefaultChannels,
		FullScale:          DefaultFullScale,
		Spacing:            DefaultSpacing,
		DetectionThreshold: DefaultDetectionThreshold,
	}
}

// Normalise maps a raw reading onto [0,1], where 1 means "on the line".
func (s Sensor) Normalise(raw int) float64 {
	v := float64(raw) / float64(s.FullScale)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if s.Inverted {
		v = 1 - v
	}
	return v
}

// Measure computes the weighted centroid of raw.  Readings beyond Channels are
// ignored; a frame with fewer than Channels readings is reported lost, as is
// one with no signal at all whatever the threshold.
func (s Sensor) Measure(raw []int) Frame {
	if len(raw) < s.Channels || s.Channels <= 0 {
		return Frame{Lost: true}
	}

	var sum, weighted float64
	for i := 0; i < s.Channels; i++ {
		v := s.Normalise(raw[i])
		sum += v
		weighted += v * float64(i)
	}
	if sum <= 0 || sum < s.DetectionThreshold {
		return Frame{Lost: true, Sum: sum}
	}

	position := weighted / sum
	center := float64(s.Channels-1) / 2
	return Frame{
		Error:    (position - center) * s.Spacing,
		Position: position,
		Sum:      sum,
	}
}

// Read samples src and measures the result, reusing buf if it is big enough.
func (s Sensor) Read(src Source, buf []int) (Frame, []int, error) {
	if cap(buf) < s.Channels {
		buf = make([]int, s.Channels)
	}
	buf = buf[:s.Channels]
	if err := src.ReadChannels(buf); err != nil {
		return Frame{Lost: true}, buf, err
	}
	return s.Measure(buf), buf, nil
}
