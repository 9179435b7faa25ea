package feed

import "marketmaker/internal/codec"

const (
	TypeSnapshot = "snapshot"
	TypeResult   = "result"
	TypeAck      = "ack"
	TypeError    = "error"
)

// Envelope frames every websocket message. A result answers the snapshot
// with the same Seq and is acknowledged by an ack with that Seq.
type Envelope struct {
	Type   string              `json:"type"`
	Seq    uint64              `json:"seq"`
	State  *codec.TradingState `json:"state,omitempty"`
	Result *codec.Result       `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}
