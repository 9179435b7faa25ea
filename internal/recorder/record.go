package recorder

import (
	"marketmaker/internal/codec"
	"marketmaker/internal/core"
	"marketmaker/internal/model"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// Entry is one line of a tape: a snapshot and the answer given to it.
type Entry struct {
	State  codec.TradingState `json:"state"`
	Result codec.Result       `json:"result"`
}

// NewEntry converts a processed tick into a tape entry.
func NewEntry(snap *model.Snapshot, out core.Output) (Entry, error) {
	state, err := codec.ToTradingState(snap)
	if err != nil {
		return Entry{}, err
	}
	return Entry{State: state, Result: codec.FromOutput(out)}, nil
}

// Snapshot decodes the recorded snapshot.
func (e Entry) Snapshot() (*model.Snapshot, error) {
	return codec.FromTradingState(e.State)
}

// Output decodes the recorded answer.
func (e Entry) Output() core.Output {
	return codec.ToOutput(e.Result)
}

func encodeEntry(dst []byte, e Entry) ([]byte, error) {
	line, err := sonic.ConfigStd.Marshal(e)
	if err != nil {
		return dst, errors.Wrap(err, "marshal tape entry")
	}
	dst = append(dst[:0], line...)
	return append(dst, '\n'), nil
}

func decodeEntry(line []byte) (Entry, error) {
	var e Entry
	if err := sonic.ConfigStd.Unmarshal(line, &e); err != nil {
		return Entry{}, errors.Wrap(ErrCorruptEntry, err.Error())
	}
	return e, nil
}
