package exception

import "github.com/yanun0323/errors"

var (
	ErrMalformedSnapshot  = errors.New("market data: malformed snapshot")
	ErrMissingBook        = errors.New("market data: missing or one-sided order book")
	ErrMissingObservation = errors.New("market data: missing observation")
)
