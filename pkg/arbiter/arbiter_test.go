package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tigerbot-team/linefollower/pkg/vision"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleAged(age time.Duration, lk float64, valid bool) vision.VisionSample {
	return vision.VisionSample{LkNorm: lk, Valid: valid, ReceivedAt: now.Add(-age)}
}

func TestFreshValidSampleIsTrusted(t *testing.T) {
	d := Arbitrate(now, sampleAged(199*time.Millisecond, 0.8, true), DefaultStalenessWindow)
	assert.True(t, d.UseVision)
	assert.Equal(t, 0.8, d.Lookahead)
	assert.Equal(t, 199*time.Millisecond, d.Age)
}

func TestStaleSampleIsNotTrusted(t *testing.T) {
	for _, valid := range []bool{true, false} {
		d := Arbitrate(now, sampleAged(201*time.Millisecond, 0.8, valid), DefaultStalenessWindow)
		assert.False(t, d.UseVision)
		assert.Equal(t, FallbackLookahead, d.Lookahead)
	}
}

func TestWindowEdgeIsStale(t *testing.T) {
	d := Arbitrate(now, sampleAged(200*time.Millisecond, 0.8, true), DefaultStalenessWindow)
	assert.False(t, d.UseVision)
}

func TestInvalidFreshSampleIsNotTrusted(t *testing.T) {
	d := Arbitrate(now, sampleAged(time.Millisecond, 0.9, false), DefaultStalenessWindow)
	assert.False(t, d.UseVision)
	assert.Equal(t, 0.0, d.Lookahead)
}

func TestNoSampleIsNotTrusted(t *testing.T) {
	d := Arbitrate(now, vision.VisionSample{}, DefaultStalenessWindow)
	assert.False(t, d.UseVision)
	assert.Equal(t, time.Duration(0), d.Age)
}

func TestArbitrateIsPure(t *testing.T) {
	s := sampleAged(50*time.Millisecond, 0.5, true)
	first := Arbitrate(now, s, DefaultStalenessWindow)
	second := Arbitrate(now, s, DefaultStalenessWindow)
	assert.Equal(t, first, second)
}
