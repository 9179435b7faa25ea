package recorder

import (
	"time"

	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

const (
	defaultSegmentMaxBytes int64 = 256 << 20
	defaultQueueSize             = 1024
	defaultBufferSize            = 64 * 1024
	defaultFilePrefix            = "tape"
	tapeSuffix                   = ".jsonl"
)

var defaultSegmentMaxDuration = time.Hour

// Config controls tape writer behavior.
type Config struct {
	Dir                string
	SegmentMaxBytes    int64
	SegmentMaxDuration time.Duration
	QueueSize          int
	BufferSize         int
	FilePrefix         string
	FlushInterval      time.Duration
	SyncInterval       time.Duration
}

// DefaultConfig returns a baseline configuration for the tape writer.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:                dir,
		SegmentMaxBytes:    defaultSegmentMaxBytes,
		SegmentMaxDuration: defaultSegmentMaxDuration,
		QueueSize:          defaultQueueSize,
		BufferSize:         defaultBufferSize,
		FilePrefix:         defaultFilePrefix,
		FlushInterval:      time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.SegmentMaxBytes == 0 {
		c.SegmentMaxBytes = defaultSegmentMaxBytes
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.FilePrefix == "" {
		c.FilePrefix = defaultFilePrefix
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.Dir == "":
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: Dir is empty")
	case c.SegmentMaxBytes <= 0:
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: SegmentMaxBytes must be > 0")
	case c.QueueSize <= 0:
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: QueueSize must be > 0")
	case c.BufferSize <= 0:
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: BufferSize must be > 0")
	case c.FilePrefix == "":
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: FilePrefix is empty")
	case c.FlushInterval < 0:
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: FlushInterval must be >= 0")
	case c.SyncInterval < 0:
		return errors.Wrap(exception.ErrInvalidArgument, "recorder config: SyncInterval must be >= 0")
	}
	return nil
}
