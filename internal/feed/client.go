package feed

import (
	"context"
	"time"

	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"
)

const (
	defaultAckTimeout = 3 * time.Second
	defaultBacklog    = 64
)

// Client dials the exchange, answers every snapshot envelope it pushes and
// waits for the exchange to acknowledge each result.
type Client struct {
	wss        *ws.WebSocket
	responder  *Responder
	ackTimeout time.Duration
	backlog    chan Envelope
}

func NewClient(ctx context.Context, url string, responder *Responder) *Client {
	return &Client{
		wss:        ws.New(ctx, url),
		responder:  responder,
		ackTimeout: defaultAckTimeout,
		backlog:    make(chan Envelope, defaultBacklog),
	}
}

// Run connects and serves until ctx is done or the process is shutting down.
func (c *Client) Run(ctx context.Context) error {
	if err := c.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	defer c.wss.Close()

	unsubscribe, closed := c.observe(ctx)
	defer unsubscribe()

	for {
		select {
		case <-sys.Shutdown():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-closed:
			return errors.Wrap(exception.ErrFeedClosed, "subscription ended")
		case env := <-c.backlog:
			reply, err := c.responder.Answer(env)
			if err != nil {
				logs.Warnf("answer seq %d, err: %+v", env.Seq, err)
			}
			if err := c.send(ctx, reply); err != nil {
				logs.Errorf("send result seq %d, err: %+v", reply.Seq, err)
			}
		}
	}
}

// observe moves snapshot envelopes into the backlog so the subscription
// never waits on an acknowledgement. closed is closed once the
// subscription ends.
func (c *Client) observe(ctx context.Context) (unsubscribe func(), closed <-chan struct{}) {
	ch, cancel := c.wss.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				env, ok := ws.ReadMessage[Envelope](m)
				if !ok {
					logs.Warnf("skip undecodable feed message")
					continue
				}
				if !answerable(env) {
					if err := unexpected(env); err != nil {
						logs.Warnf("skip feed message, err: %+v", err)
					}
					continue
				}

				select {
				case c.backlog <- env:
				default:
					logs.Warnf("drop snapshot seq %d, backlog full", env.Seq)
				}
			}
		}
	}()

	return cancel, done
}

func (c *Client) send(ctx context.Context, reply Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, c.ackTimeout)
	defer cancel()

	appendIntoRegister := false
	if err := c.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			if err := ws.WriteJSON(reply); err != nil {
				return errors.Wrap(err, "write result").With("seq", reply.Seq)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			ack, ok := ws.ReadMessage[Envelope](m)
			return acknowledges(ack, ok, reply.Seq)
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(exception.ErrFeedNotAcked, err.Error())
	}
	return nil
}

func answerable(env Envelope) bool {
	return env.Type == TypeSnapshot && env.State != nil
}

// unexpected reports why an inbound envelope gets no answer. Acks and
// errors settle pending results in send and are not protocol errors here.
func unexpected(env Envelope) error {
	switch env.Type {
	case TypeAck, TypeError:
		return nil
	case TypeSnapshot:
		return errors.Wrapf(exception.ErrFeedProtocol, "snapshot seq %d without state", env.Seq)
	default:
		return errors.Wrapf(exception.ErrFeedProtocol, "unexpected %q envelope, seq %d", env.Type, env.Seq)
	}
}

// acknowledges reports whether env settles the result with seq.
func acknowledges(env Envelope, ok bool, seq uint64) (bool, error) {
	if !ok || env.Seq != seq {
		return false, nil
	}
	switch env.Type {
	case TypeAck:
		return true, nil
	case TypeError:
		return false, errors.Wrapf(exception.ErrFeedNotAcked, "seq %d: %s", seq, env.Error)
	default:
		return false, nil
	}
}
