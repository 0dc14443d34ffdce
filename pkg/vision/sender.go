package vision

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// Sender writes lookahead messages to the link; it is the vision side of the
// protocol and is used for bench testing.
type Sender struct {
	w io.Writer

	// Pause is slept after each write; some USB serial adapters drop bytes
	// when lines are written back to back.
	Pause time.Duration
}

func NewSender(w io.Writer) *Sender {
	return &Sender{
		w:     w,
		Pause: 500 * time.Microsecond,
	}
}

func (s *Sender) Send(lk float64, valid bool) error {
	if _, err := io.WriteString(s.w, FormatLine(lk, valid)); err != nil {
		return errors.Wrap(err, "failed to write vision line")
	}
	if s.Pause > 0 {
		time.Sleep(s.Pause)
	}
	return nil
}
