package vision

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestReceiver() (*Receiver, *Store) {
	var store Store
	r := NewReceiver(&store, DefaultMaxLineLength, nil)
	r.Clock = func() time.Time { return t0 }
	return r, &store
}

func TestReceiverAcceptsLine(t *testing.T) {
	r, store := newTestReceiver()

	assert.Equal(t, 1, r.Feed([]byte("L,0.42,1\n")))
	s := store.Latest()
	assert.InDelta(t, 0.42, s.LkNorm, 1e-9)
	assert.True(t, s.Valid)
	assert.Equal(t, t0, s.ReceivedAt)

	r.Feed([]byte("L,1.5,0\n"))
	s = store.Latest()
	assert.Equal(t, 1.0, s.LkNorm)
	assert.False(t, s.Valid)
}

func TestReceiverMalformedLeavesSampleUntouched(t *testing.T) {
	r, store := newTestReceiver()
	r.Feed([]byte("L,0.42,1\n"))
	before := store.Latest()

	r.Clock = func() time.Time { return t0.Add(time.Second) }
	for _, bad := range []string{
		"X,0.5,1\n",
		"L,,1\n",
		"L,0.5\n",
		"garbage\n",
		"L,0.9,1L,0.9,1L,0.9,1L,0.9,1L,0.9,1\n",
	} {
		assert.Equal(t, 0, r.Feed([]byte(bad)), bad)
		assert.Equal(t, before, store.Latest(), bad)
	}

	accepted, rejected, overflows := r.Stats()
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 4, rejected)
	assert.Equal(t, 1, overflows)
}

func TestLoopReadingFeedsStoreAndStops(t *testing.T) {
	r, store := newTestReceiver()
	pr, pw := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.LoopReading(ctx, func() (io.ReadCloser, error) {
			return pr, nil
		})
	}()

	_, err := pw.Write([]byte("L,0.75,1\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return store.Latest().Valid
	}, time.Second, time.Millisecond)
	assert.InDelta(t, 0.75, store.Latest().LkNorm, 1e-9)

	cancel()
	wg.Wait()
}

func TestLoopReadingRetriesFailedOpen(t *testing.T) {
	r, _ := newTestReceiver()
	ctx, cancel := context.WithCancel(context.Background())

	var lock sync.Mutex
	attempts := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.LoopReading(ctx, func() (io.ReadCloser, error) {
			lock.Lock()
			defer lock.Unlock()
			attempts++
			return nil, io.ErrClosedPipe
		})
	}()

	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return attempts >= 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
