package feed

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

// Stream answers one JSON snapshot per input line with one JSON result per
// output line.
type Stream struct {
	in        *bufio.Reader
	out       *bufio.Writer
	responder *Responder
}

func NewStream(r io.Reader, w io.Writer, responder *Responder) *Stream {
	return &Stream{
		in:        bufio.NewReader(r),
		out:       bufio.NewWriter(w),
		responder: responder,
	}
}

// Run processes lines until the input ends, ctx is done or the process
// is shutting down. Lines are read in their own goroutine so an idle input
// never holds off cancellation.
func (s *Stream) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	for {
		select {
		case <-sys.Shutdown():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case l := <-lines:
			if l.err != nil && l.err != io.EOF {
				return errors.Wrap(l.err, "read snapshot line")
			}

			if trimmed := bytes.TrimSpace(l.data); len(trimmed) != 0 {
				res, err := s.responder.RespondRaw(trimmed)
				if err != nil {
					logs.Warnf("answer snapshot line, err: %+v", err)
				}
				if res != nil {
					if err := s.write(res); err != nil {
						return err
					}
				}
			}

			if l.err == io.EOF {
				return nil
			}
		}
	}
}

type line struct {
	data []byte
	err  error
}

// readLines feeds lines until the input fails or done is closed. A read
// still blocked when done closes ends with the input.
func (s *Stream) readLines(done <-chan struct{}) <-chan line {
	lines := make(chan line)
	go func() {
		for {
			data, err := s.in.ReadBytes('\n')
			select {
			case lines <- line{data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

func (s *Stream) write(res []byte) error {
	if _, err := s.out.Write(res); err != nil {
		return errors.Wrap(err, "write result line")
	}
	if err := s.out.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "write result line")
	}
	if err := s.out.Flush(); err != nil {
		return errors.Wrap(err, "flush result line")
	}
	return nil
}
