// Package mcp3008 reads the 8-channel 10-bit SPI ADC under the IR array.
package mcp3008

import (
	"io"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

const (
	NumChannels = 8
	FullScale   = 1023

	DefaultDevice = "/dev/spidev0.0"
	DefaultClock  = 1 * physic.MegaHertz
)

// conn is the transaction primitive of spi.Conn.
type conn interface {
	Tx(w, r []byte) error
}

type MCP3008 struct {
	c      conn
	closer io.Closer

	w, r [3]byte
}

func New(deviceFile string, clock physic.Frequency) (*MCP3008, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph")
	}

	p, err := spireg.Open(deviceFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SPI port %s", deviceFile)
	}

	if clock <= 0 {
		clock = DefaultClock
	}
	c, err := p.Connect(clock, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, errors.Wrapf(err, "failed to configure SPI port %s", deviceFile)
	}

	return &MCP3008{c: c, closer: p}, nil
}

// ReadChannel does a single-ended conversion on channel ch.
func (m *MCP3008) ReadChannel(ch int) (int, error) {
	if ch < 0 || ch >= NumChannels {
		return 0, errors.Errorf("mcp3008: channel %d out of range", ch)
	}
	// Start bit, then single-ended mode and the channel number in the top
	// nibble of the second byte.  The 10-bit result straddles the last two
	// bytes of the response.
	m.w = [3]byte{0x01, byte(0x08|ch) << 4, 0x00}
	if err := m.c.Tx(m.w[:], m.r[:]); err != nil {
		return 0, errors.Wrapf(err, "mcp3008: read of channel %d failed", ch)
	}
	return int(m.r[1]&0x03)<<8 | int(m.r[2]), nil
}

// ReadChannels fills dst with channels 0..len(dst)-1.
func (m *MCP3008) ReadChannels(dst []int) error {
	if len(dst) > NumChannels {
		return errors.Errorf("mcp3008: %d channels requested, only %d available", len(dst), NumChannels)
	}
	for i := range dst {
		v, err := m.ReadChannel(i)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (m *MCP3008) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}
