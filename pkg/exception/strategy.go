package exception

import "github.com/yanun0323/errors"

var (
	ErrStrategyPanic       = errors.New("strategy: generator panicked")
	ErrStrategyDuplicate   = errors.New("strategy: product claimed by more than one generator")
	ErrStrategyInvalidKnob = errors.New("strategy: invalid parameter")
)

var (
	ErrTraderDataDecode = errors.New("trader data: decode failed")
	ErrTraderDataEncode = errors.New("trader data: encode failed")
)
