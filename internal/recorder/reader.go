package recorder

import (
	"bufio"
	"bytes"
	"io"

	"github.com/yanun0323/errors"
)

const defaultMaxLineSize = 16 << 20

// Reader decodes tape entries sequentially.
type Reader struct {
	r       *bufio.Reader
	maxLine int
	line    int
}

// NewReader wraps an io.Reader with tape decoding. A non-positive maxLine
// uses the default limit.
func NewReader(r io.Reader, maxLine int) *Reader {
	if maxLine <= 0 {
		maxLine = defaultMaxLineSize
	}
	return &Reader{r: bufio.NewReader(r), maxLine: maxLine}
}

// Next returns the next entry, skipping blank lines. It returns io.EOF
// after the last entry.
func (r *Reader) Next() (Entry, error) {
	for {
		raw, err := r.r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return Entry{}, errors.Wrap(err, "read tape")
		}
		if len(raw) == 0 && err == io.EOF {
			return Entry{}, io.EOF
		}

		r.line++
		if len(raw) > r.maxLine {
			return Entry{}, errors.Wrapf(ErrCorruptEntry, "line %d exceeds %d bytes", r.line, r.maxLine)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			if err == io.EOF {
				return Entry{}, io.EOF
			}
			continue
		}

		e, decodeErr := decodeEntry(trimmed)
		if decodeErr != nil {
			return Entry{}, errors.Wrapf(decodeErr, "line %d", r.line)
		}
		return e, nil
	}
}
