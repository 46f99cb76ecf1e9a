package chaoskey

import (
	"context"
	"errors"
	"sync"

	"github.com/TheusHen/chaoskey/chaoskey/session"
	"github.com/TheusHen/chaoskey/chaoskey/transport/quic"
	q "github.com/quic-go/quic-go"
)

var ErrNotListening = errors.New("peer is not listening")

// Peer combines the QUIC transport with sessions. Every accepted connection
// gets its own responder session; nothing is shared between them.
type Peer struct {
	Config   session.Config
	listener *quic.Listener
}

func NewPeer(cfg session.Config) *Peer {
	return &Peer{Config: cfg}
}

func (p *Peer) Listen(addr string) error {
	ln, err := quic.Listen(addr)
	if err != nil {
		return err
	}
	p.listener = ln
	return nil
}

func (p *Peer) Close() error {
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.AddrString()
}

// Accept waits for one initiator and returns its responder session.
func (p *Peer) Accept(ctx context.Context) (*session.Responder, error) {
	if p.listener == nil {
		return nil, ErrNotListening
	}
	conn, err := p.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return p.respond(ctx, conn)
}

func (p *Peer) respond(ctx context.Context, conn q.Connection) (*session.Responder, error) {
	st, err := quic.AcceptStream(ctx, conn)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return session.NewResponder(st, p.Config), nil
}

// Serve accepts connections until ctx is done, running each session on its
// own goroutine. It waits for running sessions before returning.
func (p *Peer) Serve(ctx context.Context, h session.Handler) error {
	if p.listener == nil {
		return ErrNotListening
	}
	log := p.Config.Logger
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := p.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection accepted")

		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := p.respond(ctx, conn)
			if err != nil {
				log.Warn().Err(err).Msg("session stream not opened")
				return
			}
			if err := resp.Serve(ctx, h); err != nil {
				log.Warn().Err(err).Str("session", resp.ID()).Str("kind", session.Kind(err)).Msg("session failed")
			}
		}()
	}
}

// Dial connects to a listening peer and returns an initiator session.
func (p *Peer) Dial(ctx context.Context, addr string) (*session.Initiator, error) {
	conn, err := quic.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	st, err := quic.OpenStream(ctx, conn)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return session.NewInitiator(st, p.Config), nil
}
