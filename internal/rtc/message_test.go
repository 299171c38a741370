package rtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_HeartbeatRoundTrip(t *testing.T) {
	msg, err := NewMessage(MessageTypeHeartbeat, HeartbeatPayload{Seq: 42, SentAt: 1700000000})
	require.NoError(t, err)

	raw, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := DecodeMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeHeartbeat, decoded.Type)

	var hb HeartbeatPayload
	require.NoError(t, decoded.DecodePayload(&hb))
	assert.Equal(t, uint64(42), hb.Seq)
	assert.Equal(t, int64(1700000000), hb.SentAt)
}

func TestDecodeMessage_Garbage(t *testing.T) {
	_, err := DecodeMessage([]byte{0xff, 0x00, 0x13})
	assert.Error(t, err)
}
