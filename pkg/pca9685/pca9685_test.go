package pca9685

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	reg  byte
	data []byte
}

type fakePort struct {
	writes []write
	closed bool
}

func (f *fakePort) WriteReg(reg byte, buf []byte) error {
	f.writes = append(f.writes, write{reg, append([]byte(nil), buf...)})
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func TestPreScale(t *testing.T) {
	assert.Equal(t, byte(0x79), PreScale(50))
	assert.Equal(t, byte(3), PreScale(1600))
	assert.Equal(t, byte(3), PreScale(100000))
	assert.Equal(t, byte(255), PreScale(1))
}

func TestConfigure(t *testing.T) {
	f := &fakePort{}
	p := &PCA9685{dev: f}
	require.NoError(t, p.Configure(50))
	require.Len(t, f.writes, 4)
	assert.Equal(t, write{RegMode1, []byte{0x11}}, f.writes[0])
	assert.Equal(t, write{RegPreScale, []byte{0x79}}, f.writes[1])
	assert.Equal(t, write{RegMode1, []byte{0xa1}}, f.writes[3])
}

func TestSetDuty(t *testing.T) {
	f := &fakePort{}
	p := &PCA9685{dev: f}

	require.NoError(t, p.SetDuty(2, 0.5))
	assert.Equal(t, write{0x06 + 8, []byte{0, 0, 0xff, 0x07}}, f.writes[0])

	require.NoError(t, p.SetDuty(0, 0))
	assert.Equal(t, write{0x06, []byte{0, 0, 0, 0x10}}, f.writes[1])

	require.NoError(t, p.SetDuty(15, 1.7))
	assert.Equal(t, write{0x06 + 60, []byte{0, 0x10, 0, 0}}, f.writes[2])
}

func TestChannelRange(t *testing.T) {
	p := &PCA9685{dev: &fakePort{}}
	assert.Equal(t, ErrBadChannel, p.SetDuty(16, 0.5))
	assert.Equal(t, ErrBadChannel, p.SetFull(-1, true))
}

func TestClose(t *testing.T) {
	f := &fakePort{}
	p := &PCA9685{dev: f}
	require.NoError(t, p.Close())
	assert.True(t, f.closed)
}
