package quic

import (
	"context"
	"net"
	"sync"
	"time"

	q "github.com/quic-go/quic-go"
)

// Linger bounds how long a dialing side waits, after closing its stream, for
// the accepting side to read the last frames and close the connection.
const Linger = 2 * time.Second

type Listener struct {
	inner *q.Listener
}

func Listen(addr string) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

func (l *Listener) Accept(ctx context.Context) (q.Connection, error) {
	return l.inner.Accept(ctx)
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

func Dial(ctx context.Context, addr string) (q.Connection, error) {
	tlsConf, err := NewClientTLSConfig()
	if err != nil {
		return nil, err
	}
	return q.DialAddr(ctx, addr, tlsConf, &q.Config{})
}

// Stream is the single bidirectional stream a session runs on. Closing it
// closes the whole connection.
type Stream struct {
	q.Stream
	conn      q.Connection
	linger    time.Duration
	closeOnce sync.Once
}

// OpenStream opens the session stream on a dialed connection.
func OpenStream(ctx context.Context, conn q.Connection) (*Stream, error) {
	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return &Stream{Stream: st, conn: conn, linger: Linger}, nil
}

// AcceptStream accepts the session stream on an accepted connection. The
// stream only shows up once the dialer has written to it.
func AcceptStream(ctx context.Context, conn q.Connection) (*Stream, error) {
	st, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, err
	}
	return &Stream{Stream: st, conn: conn}, nil
}

// Close sends FIN and tears the connection down. On the dialing side it
// first waits up to Linger for the peer to hang up, so frames still in
// flight are delivered.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.Stream.Close()
		if s.linger > 0 {
			t := time.NewTimer(s.linger)
			select {
			case <-s.conn.Context().Done():
			case <-t.C:
			}
			t.Stop()
		}
		s.Stream.CancelRead(0)
		_ = s.conn.CloseWithError(0, "")
	})
	return err
}
