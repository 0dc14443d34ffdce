package linesensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllZeroIsLost(t *testing.T) {
	f := Default().Measure(make([]int, 8))
	assert.True(t, f.Lost)
	assert.Equal(t, 0.0, f.Sum)
}

func TestAllZeroIsLostWithZeroThreshold(t *testing.T) {
	s := Default()
	s.DetectionThreshold = 0
	f := s.Measure(make([]int, 8))
	assert.True(t, f.Lost)
	assert.False(t, math.IsNaN(f.Error))
	assert.False(t, math.IsNaN(f.Position))
}

func TestShortFrameIsLost(t *testing.T) {
	f := Default().Measure([]int{0, 0, 0, 1023, 1023})
	assert.True(t, f.Lost)

	f = Default().Measure(nil)
	assert.True(t, f.Lost)
}

func TestBelowThresholdIsLost(t *testing.T) {
	s := Default()
	f := s.Measure([]int{0, 0, 0, 100, 100, 0, 0, 0})
	assert.True(t, f.Lost)
	assert.InDelta(t, 200.0/1023, f.Sum, 1e-9)
}

func TestCenteredLine(t *testing.T) {
	f := Default().Measure([]int{0, 0, 0, 1023, 1023, 0, 0, 0})
	require.False(t, f.Lost)
	assert.InDelta(t, 3.5, f.Position, 1e-9)
	assert.InDelta(t, 0, f.Error, 1e-12)
}

func TestOffsetLine(t *testing.T) {
	s := Default()
	f := s.Measure([]int{0, 0, 0, 0, 0, 0, 1023, 0})
	require.False(t, f.Lost)
	assert.InDelta(t, 6, f.Position, 1e-9)
	assert.InDelta(t, 2.5*s.Spacing, f.Error, 1e-12)

	f = s.Measure([]int{1023, 1023, 0, 0, 0, 0, 0, 0})
	require.False(t, f.Lost)
	assert.InDelta(t, 0.5, f.Position, 1e-9)
	assert.InDelta(t, -3*s.Spacing, f.Error, 1e-12)
}

func TestWeightedCentroid(t *testing.T) {
	s := Default()
	s.Spacing = 0.01
	f := s.Measure([]int{0, 0, 0, 0, 1023, 511, 0, 0})
	require.False(t, f.Lost)
	want := (4*1023.0 + 5*511.0) / (1023.0 + 511.0)
	assert.InDelta(t, want, f.Position, 1e-9)
	assert.InDelta(t, (want-3.5)*0.01, f.Error, 1e-12)
}

func TestInvertedPolarity(t *testing.T) {
	s := Default()
	s.Inverted = true
	f := s.Measure([]int{1023, 1023, 1023, 0, 0, 1023, 1023, 1023})
	require.False(t, f.Lost)
	assert.InDelta(t, 3.5, f.Position, 1e-9)

	f = s.Measure([]int{1023, 1023, 1023, 1023, 1023, 1023, 1023, 1023})
	assert.True(t, f.Lost)
}

func TestNormaliseClamps(t *testing.T) {
	s := Default()
	assert.Equal(t, 0.0, s.Normalise(-5))
	assert.Equal(t, 1.0, s.Normalise(5000))
	assert.InDelta(t, 0.5, s.Normalise(511), 1e-3)
}

func TestOtherChannelCounts(t *testing.T) {
	s := Default()
	s.Channels = 5
	f := s.Measure([]int{0, 0, 1023, 0, 0})
	require.False(t, f.Lost)
	assert.InDelta(t, 0, f.Error, 1e-12)
}

type fakeSource struct {
	values []int
	err    error
}

func (f *fakeSource) ReadChannels(dst []int) error {
	if f.err != nil {
		return f.err
	}
	copy(dst, f.values)
	return nil
}

func TestRead(t *testing.T) {
	s := Default()
	src := &fakeSource{values: []int{0, 0, 0, 1023, 1023, 0, 0, 0}}
	f, buf, err := s.Read(src, nil)
	require.NoError(t, err)
	assert.Len(t, buf, 8)
	assert.False(t, f.Lost)

	src.err = errors.New("spi failure")
	f, _, err = s.Read(src, buf)
	assert.Error(t, err)
	assert.True(t, f.Lost)
}
