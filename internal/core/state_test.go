package core

import (
	"testing"

	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTraderDataRoundTrip(t *testing.T) {
	st := NewState()
	st.Tick = 3
	st.Memory.EMA(model.Starfruit, 0.33).Update(5002)
	h := st.Memory.History(model.Coconut, 4)
	h.Put(100, 10000)
	h.Put(200, 10001.5)

	data, err := EncodeState(st)
	require.NoError(t, err)

	got, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, st, got)
	assert.False(t, got.Empty())
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	testCases := []struct {
		desc string
		data string
	}{
		{desc: "not json", data: "tick=3"},
		{desc: "negative tick", data: `{"tick":-1}`},
		{desc: "zero history size", data: `{"tick":1,"histories":{"COCONUT":{"size":0,"points":[]}}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := DecodeState(tc.data)
			assert.ErrorIs(t, err, exception.ErrTraderDataDecode)
		})
	}
}

func TestNewStateIsEmpty(t *testing.T) {
	assert.True(t, NewState().Empty())
	var st *StrategyState
	assert.True(t, st.Empty())
}
