package chaoskey

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TheusHen/chaoskey/chaoskey/session"
)

func TestPeerServeAndDial(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := session.DefaultConfig()
	cfg.TickInterval = 0

	server := NewPeer(cfg)
	if err := server.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	addr := server.ListenAddr()
	if addr == "" {
		t.Fatalf("expected listener addr")
	}

	received := make(chan session.Message, 4)
	serveCtx, stop := context.WithCancel(ctx)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(serveCtx, func(m session.Message) { received <- m })
	}()

	client := NewPeer(cfg)
	in, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	want := []string{"Hello, Testing!", "over quic"}
	for _, m := range want {
		if _, err := in.Send(ctx, []byte(m)); err != nil {
			t.Fatalf("Send(%q): %v", m, err)
		}
	}
	if err := in.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, w := range want {
		select {
		case m := <-received:
			if string(m.Plaintext) != w {
				t.Fatalf("got %q, want %q", m.Plaintext, w)
			}
		case <-ctx.Done():
			t.Fatalf("message %q never arrived", w)
		}
	}

	stop()
	if err := <-serveErr; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestPeerServesConcurrentSessions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := session.DefaultConfig()
	cfg.TickInterval = 0

	server := NewPeer(cfg)
	if err := server.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer server.Close()

	const clients = 12
	const perClient = 2

	var mu sync.Mutex
	seen := make(map[string]int)
	sessions := make(map[string]bool)
	all := make(chan struct{})
	handler := func(m session.Message) {
		mu.Lock()
		defer mu.Unlock()
		seen[string(m.Plaintext)]++
		sessions[m.Session] = true
		total := 0
		for _, n := range seen {
			total += n
		}
		if total == clients*perClient {
			close(all)
		}
	}

	serveCtx, stop := context.WithCancel(ctx)
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(serveCtx, handler) }()

	errs := make(chan error, clients)
	var wg sync.WaitGroup
	for c := 0; c < clients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			in, err := NewPeer(cfg).Dial(ctx, server.ListenAddr())
			if err != nil {
				errs <- fmt.Errorf("client %d dial: %w", c, err)
				return
			}
			for i := 0; i < perClient; i++ {
				if _, err := in.Send(ctx, []byte(fmt.Sprintf("client %d message %d", c, i))); err != nil {
					errs <- fmt.Errorf("client %d send %d: %w", c, i, err)
					return
				}
			}
			if err := in.Close(); err != nil {
				errs <- fmt.Errorf("client %d close: %w", c, err)
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("%v", err)
	}

	select {
	case <-all:
	case <-ctx.Done():
		t.Fatalf("not every message arrived")
	}
	stop()
	if err := <-serveErr; err != nil {
		t.Fatalf("Serve: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for c := 0; c < clients; c++ {
		for i := 0; i < perClient; i++ {
			key := fmt.Sprintf("client %d message %d", c, i)
			if seen[key] != 1 {
				t.Fatalf("%q delivered %d times", key, seen[key])
			}
		}
	}
	if len(sessions) != clients {
		t.Fatalf("messages came from %d sessions, want %d", len(sessions), clients)
	}
}

func TestPeerAcceptWithoutListen(t *testing.T) {
	p := NewPeer(session.DefaultConfig())
	if _, err := p.Accept(context.Background()); err != ErrNotListening {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
	if err := p.Serve(context.Background(), nil); err != ErrNotListening {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
}
