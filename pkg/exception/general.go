package exception

import "github.com/yanun0323/errors"

// General errors
var (
	ErrNilInstance         = errors.New("nil instance")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrArgumentUnsupported = errors.New("argument unsupported")
)
