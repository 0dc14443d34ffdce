package vision

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderReceiverRoundTrip(t *testing.T) {
	var link bytes.Buffer
	s := NewSender(&link)
	s.Pause = 0

	require.NoError(t, s.Send(0.8, true))
	require.NoError(t, s.Send(0.2, false))
	assert.Equal(t, "L,0.800,1\nL,0.200,0\n", link.String())

	r, store := newTestReceiver()
	assert.Equal(t, 2, r.Feed(link.Bytes()))
	assert.InDelta(t, 0.2, store.Latest().LkNorm, 1e-9)
	assert.False(t, store.Latest().Valid)
}
