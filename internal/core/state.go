package core

import (
	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/strategy"
	"marketmaker/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// StrategyState is everything the trader remembers between ticks. The
// caller owns it and passes the same value to every Run.
type StrategyState struct {
	Tick   int64
	Memory *strategy.State
}

// NewState creates an empty state.
func NewState() *StrategyState {
	return &StrategyState{Memory: strategy.NewState()}
}

// Empty reports whether no tick has been processed yet.
func (s *StrategyState) Empty() bool {
	return s == nil || (s.Tick == 0 && s.Memory.Empty())
}

type stateData struct {
	Tick      int64                         `json:"tick"`
	EMAs      map[model.Product]pricing.EMA `json:"emas,omitempty"`
	Histories map[model.Product]historyData `json:"histories,omitempty"`
}

type historyData struct {
	Size   int             `json:"size"`
	Points []pricing.Point `json:"points"`
}

// EncodeState serializes st into a trader data string.
func EncodeState(st *StrategyState) (string, error) {
	if st == nil {
		return "", errors.Wrap(exception.ErrNilInstance, "strategy state")
	}
	data := stateData{Tick: st.Tick}
	if st.Memory != nil {
		if len(st.Memory.EMAs) != 0 {
			data.EMAs = make(map[model.Product]pricing.EMA, len(st.Memory.EMAs))
			for p, ema := range st.Memory.EMAs {
				data.EMAs[p] = *ema
			}
		}
		if len(st.Memory.Histories) != 0 {
			data.Histories = make(map[model.Product]historyData, len(st.Memory.Histories))
			for p, h := range st.Memory.Histories {
				data.Histories[p] = historyData{Size: h.Size(), Points: h.Points()}
			}
		}
	}

	s, err := sonic.ConfigStd.MarshalToString(data)
	if err != nil {
		return "", errors.Wrap(exception.ErrTraderDataEncode, err.Error())
	}
	return s, nil
}

// DecodeState restores a state from a trader data string.
func DecodeState(s string) (*StrategyState, error) {
	var data stateData
	if err := sonic.ConfigStd.UnmarshalFromString(s, &data); err != nil {
		return nil, errors.Wrap(exception.ErrTraderDataDecode, err.Error())
	}
	if data.Tick < 0 {
		return nil, errors.Wrapf(exception.ErrTraderDataDecode, "negative tick: %d", data.Tick)
	}

	st := NewState()
	st.Tick = data.Tick
	for p, ema := range data.EMAs {
		v := ema
		st.Memory.EMAs[p] = &v
	}
	for p, h := range data.Histories {
		if h.Size <= 0 {
			return nil, errors.Wrapf(exception.ErrTraderDataDecode, "history of %s has size %d", p, h.Size)
		}
		st.Memory.Histories[p] = pricing.RestoreMidHistory(h.Size, h.Points)
	}
	return st, nil
}
