// Package feed connects the trader to the exchange: a JSONL stream, a
// websocket endpoint the exchange dials, or a websocket client.
package feed

import (
	"sync"

	"marketmaker/internal/codec"
	"marketmaker/internal/core"
	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Sink receives every processed tick, e.g. a tape recorder or a journal.
type Sink interface {
	Record(snap *model.Snapshot, out core.Output) error
}

// Responder answers snapshots with the trader. It is safe for concurrent
// use; ticks are processed one at a time against a single state.
type Responder struct {
	mu     sync.Mutex
	trader *core.Trader
	state  *core.StrategyState
	sinks  []Sink
}

func NewResponder(trader *core.Trader, state *core.StrategyState, sinks ...Sink) *Responder {
	if state == nil {
		state = core.NewState()
	}
	return &Responder{trader: trader, state: state, sinks: sinks}
}

// Respond answers one snapshot document. A snapshot that cannot be
// processed gets an empty result that hands the trader data back unchanged.
func (r *Responder) Respond(doc codec.TradingState) (codec.Result, error) {
	snap, err := codec.FromTradingState(doc)
	if err != nil {
		return emptyResult(doc.TraderData), err
	}

	r.mu.Lock()
	out, err := r.trader.Run(snap, r.state)
	r.mu.Unlock()
	if err != nil {
		return emptyResult(doc.TraderData), err
	}

	for _, s := range r.sinks {
		if err := s.Record(snap, out); err != nil {
			logs.Warnf("record tick %d, err: %+v", snap.Timestamp, err)
		}
	}
	return codec.FromOutput(out), nil
}

// RespondRaw answers one encoded snapshot document with an encoded result.
func (r *Responder) RespondRaw(data []byte) ([]byte, error) {
	var doc codec.TradingState
	var res codec.Result
	var respondErr error
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		res, respondErr = emptyResult(""), errors.Wrap(exception.ErrMalformedSnapshot, err.Error())
	} else {
		res, respondErr = r.Respond(doc)
	}

	encoded, err := sonic.ConfigStd.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}
	return encoded, respondErr
}

// Answer replies to one envelope. Anything but a snapshot is a protocol error.
func (r *Responder) Answer(env Envelope) (Envelope, error) {
	if env.Type != TypeSnapshot || env.State == nil {
		err := errors.Wrapf(exception.ErrFeedProtocol, "unexpected %q envelope, seq %d", env.Type, env.Seq)
		return Envelope{Type: TypeError, Seq: env.Seq, Error: err.Error()}, err
	}

	res, err := r.Respond(*env.State)
	return Envelope{Type: TypeResult, Seq: env.Seq, Result: &res}, err
}

func emptyResult(traderData string) codec.Result {
	return codec.Result{Orders: map[string][]codec.Order{}, TraderData: traderData}
}
