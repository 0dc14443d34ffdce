package vision

import "bytes"

const DefaultMaxLineLength = 32

// Framer splits a byte stream into newline-terminated lines using a fixed-size
// buffer.  A line that outgrows the buffer is dropped in full: the buffer is
// reset and input is skipped until the next newline.
type Framer struct {
	buf        []byte
	maxLen     int
	discarding bool
	overflowed int
}

func NewFramer(maxLen int) *Framer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	return &Framer{
		buf:    make([]byte, 0, maxLen),
		maxLen: maxLen,
	}
}

// Feed consumes p and returns any lines it completed, without their line
// terminators.
func (f *Framer) Feed(p []byte) []string {
	var lines []string
	for len(p) > 0 {
		nl := bytes.IndexByte(p, '\n')
		chunk := p
		if nl >= 0 {
			chunk = p[:nl]
		}

		if !f.discarding {
			if len(f.buf)+len(chunk) > f.maxLen {
				f.buf = f.buf[:0]
				f.discarding = true
				f.overflowed++
			} else {
				f.buf = append(f.buf, chunk...)
			}
		}

		if nl < 0 {
			break
		}
		if !f.discarding {
			lines = append(lines, string(bytes.TrimSuffix(f.buf, []byte{'\r'})))
		}
		f.buf = f.buf[:0]
		f.discarding = false
		p = p[nl+1:]
	}
	return lines
}

// Overflows returns the number of lines dropped for being too long.
func (f *Framer) Overflows() int {
	return f.overflowed
}
