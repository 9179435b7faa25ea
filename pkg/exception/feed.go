package exception

import "github.com/yanun0323/errors"

// Feed errors
var (
	ErrFeedClosed      = errors.New("feed: closed")
	ErrFeedProtocol    = errors.New("feed: protocol error")
	ErrFeedNotAcked    = errors.New("feed: result not acknowledged")
	ErrJournalDisabled = errors.New("journal: disabled")
)
