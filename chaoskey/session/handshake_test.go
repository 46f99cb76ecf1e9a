package session

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/TheusHen/chaoskey/chaoskey/protocol"
)

func TestNegotiateDerivesSameParams(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, b := net.Pipe()
	in := NewInitiator(a, Config{})
	resp := NewResponder(b, Config{})
	defer in.conn.Close()
	defer resp.conn.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- resp.negotiate(ctx) }()

	if err := in.negotiate(ctx); err != nil {
		t.Fatalf("initiator negotiate: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("responder negotiate: %v", err)
	}

	if in.Params() != resp.Params() {
		t.Fatalf("params differ: %+v vs %+v", in.Params(), resp.Params())
	}
	if in.State() != StateUnsynced || resp.State() != StateUnsynced {
		t.Fatalf("unexpected states %s / %s", in.State(), resp.State())
	}
	if in.Trajectory() != InitiatorSeed || resp.Trajectory() != ResponderSeed {
		t.Fatalf("trajectories not seeded")
	}
}

func TestNegotiateRejectsWrongFrame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, b := net.Pipe()
	peer := protocol.NewConn(a)
	defer peer.Close()
	resp := NewResponder(b, Config{})

	go func() { _ = peer.Send(protocol.Text("not a key")) }()

	err := resp.Serve(ctx, nil)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
	if resp.State() != StateClosed {
		t.Fatalf("session not closed after violation")
	}
}
