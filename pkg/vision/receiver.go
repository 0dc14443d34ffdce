package vision

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

const reopenDelay = 100 * time.Millisecond

// Receiver turns bytes from the vision link into samples in a Store.
type Receiver struct {
	framer *Framer
	store  *Store
	log    *zap.Logger

	// Clock stamps accepted samples.  Defaults to time.Now.
	Clock func() time.Time

	accepted, rejected int
}

func NewReceiver(store *Store, maxLineLength int, log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Receiver{
		framer: NewFramer(maxLineLength),
		store:  store,
		log:    log,
		Clock:  time.Now,
	}
}

// Feed processes whatever bytes are available.  It never blocks and may be
// called at any rate; malformed lines are dropped and leave the store alone.
func (r *Receiver) Feed(p []byte) (accepted int) {
	for _, line := range r.framer.Feed(p) {
		lk, valid, ok := ParseLine(line)
		if !ok {
			r.rejected++
			r.log.Debug("Dropped vision line", zap.String("line", line))
			continue
		}
		r.store.Update(VisionSample{
			LkNorm:     lk,
			Valid:      valid,
			ReceivedAt: r.Clock(),
		})
		r.accepted++
		accepted++
	}
	return
}

// Stats returns counts of accepted, rejected and overlong lines.
func (r *Receiver) Stats() (accepted, rejected, overflows int) {
	return r.accepted, r.rejected, r.framer.Overflows()
}

// LoopReading reads from ports produced by open until ctx is done.  A port that
// fails is closed and reopened; the control loop carries on in safe mode
// meanwhile because the store simply goes stale.
func (r *Receiver) LoopReading(ctx context.Context, open func() (io.ReadCloser, error)) {
	for ctx.Err() == nil {
		err := r.openAndLoop(ctx, open)
		if ctx.Err() != nil {
			return
		}
		r.log.Warn("Vision link stopped; will retry", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(reopenDelay):
		}
	}
}

func (r *Receiver) openAndLoop(ctx context.Context, open func() (io.ReadCloser, error)) error {
	port, err := open()
	if err != nil {
		return err
	}
	defer port.Close()

	// Unblock a pending Read when we're cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = port.Close()
		case <-stop:
		}
	}()

	r.log.Info("Vision link open")
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if n > 0 {
			r.Feed(buf[:n])
		}
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
