package protocol

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestConnSendRecvPoll(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewConn(a), NewConn(b)
	defer ca.Close()
	defer cb.Close()

	if _, ok, err := cb.Poll(); ok || err != nil {
		t.Fatalf("Poll on idle conn: ok=%v err=%v", ok, err)
	}

	go func() {
		_ = ca.Send(Coordinate(1), Coordinate(2), Coordinate(3))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for want := 1.0; want <= 3; want++ {
		f, err := cb.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		v, err := AsCoordinate(f)
		if err != nil || v != want {
			t.Fatalf("got %v (%v), want %v", v, err, want)
		}
	}

	go func() { _ = ca.Send(Control(SyncComplete)) }()
	deadline := time.Now().Add(5 * time.Second)
	for {
		f, ok, err := cb.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if ok {
			if err := ExpectControl(f, SyncComplete); err != nil {
				t.Fatalf("ExpectControl: %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("frame never arrived")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConnReportsPeerClose(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewConn(a), NewConn(b)
	defer cb.Close()

	_ = ca.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cb.Recv(ctx); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if _, _, err := cb.Poll(); err != io.EOF {
		t.Fatalf("expected EOF from Poll, got %v", err)
	}
}

func TestConnRecvHonoursContext(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewConn(a), NewConn(b)
	defer ca.Close()
	defer cb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cb.Recv(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
