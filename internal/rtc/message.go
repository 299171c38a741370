package rtc

import "github.com/vmihailenco/msgpack/v5"

// ControlChannelLabel is the data channel the presenter opens next to
// the media track for lightweight peer-to-peer control traffic.
const ControlChannelLabel = "control"

// Control message types.
const (
	MessageTypeHeartbeat = "heartbeat"
)

// Message represents all control data channel messages
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// HeartbeatPayload is sent periodically by the presenter so the
// viewer can show connection liveness.
type HeartbeatPayload struct {
	Seq    uint64 `msgpack:"seq"`
	SentAt int64  `msgpack:"sentAt"`
}

// DecodePayload decodes the message payload into the provided struct
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a new Message with the given type and payload
func NewMessage(t string, payload any) (Message, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: b}, nil
}

// Encode serialises the message for the data channel.
func (m Message) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeMessage parses a raw data channel frame.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := msgpack.Unmarshal(data, &m)
	return m, err
}
