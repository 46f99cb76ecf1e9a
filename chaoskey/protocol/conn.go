package protocol

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
)

var ErrConnClosed = errors.New("protocol: connection closed")

// recvQueue bounds how far the reader goroutine runs ahead of the session.
const recvQueue = 256

// Conn carries frames over a byte stream. A single reader goroutine decodes
// incoming frames so the owner can either block on Recv or poll without
// blocking. Send may be called from one goroutine at a time per frame batch.
type Conn struct {
	rw io.ReadWriteCloser

	wmu sync.Mutex
	bw  *bufio.Writer

	frames    chan Frame
	closed    chan struct{}
	closeOnce sync.Once
	readErr   error // set before frames is closed
}

// NewConn starts reading frames from rw.
func NewConn(rw io.ReadWriteCloser) *Conn {
	c := &Conn{
		rw:     rw,
		bw:     bufio.NewWriter(rw),
		frames: make(chan Frame, recvQueue),
		closed: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	br := bufio.NewReader(c.rw)
	for {
		f, err := ReadFrame(br)
		if err != nil {
			select {
			case <-c.closed:
				err = ErrConnClosed
			default:
			}
			c.readErr = err
			close(c.frames)
			return
		}
		select {
		case c.frames <- f:
		case <-c.closed:
			c.readErr = ErrConnClosed
			close(c.frames)
			return
		}
	}
}

// Send writes frames in order and flushes once.
func (c *Conn) Send(frames ...Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	for _, f := range frames {
		if err := writeFrame(c.bw, f); err != nil {
			return err
		}
	}
	return c.bw.Flush()
}

// Recv blocks until a frame arrives, the stream fails or ctx is done.
func (c *Conn) Recv(ctx context.Context) (Frame, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return Frame{}, c.readErr
		}
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Poll returns a frame if one is already queued. ok is false when nothing
// is pending.
func (c *Conn) Poll() (f Frame, ok bool, err error) {
	select {
	case f, open := <-c.frames:
		if !open {
			return Frame{}, false, c.readErr
		}
		return f, true, nil
	default:
		return Frame{}, false, nil
	}
}

// Close closes the underlying stream and stops the reader.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.rw.Close()
	})
	return err
}
