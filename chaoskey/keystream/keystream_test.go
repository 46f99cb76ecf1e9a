package keystream

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/TheusHen/chaoskey/chaoskey/lorenz"
)

// referenceWindow reproduces the keystream of the published test vector: 16
// ticks, each stepped from the seed (-10, -7, 35) with sigma=25, rho=2.
func referenceWindow(t *testing.T) []byte {
	t.Helper()
	seed := lorenz.State{X: -10, Y: -7, Z: 35}
	p := lorenz.Params{Sigma: 25, Rho: 2, Beta: lorenz.Beta, H: lorenz.H}
	buf := NewBuffer(0)
	for i := 0; i < 16; i++ {
		buf.Append(lorenz.Free(seed, p).Y)
	}
	w, err := buf.Window(0, WindowSize)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	return w
}

func TestEncipherReferenceVector(t *testing.T) {
	w := referenceWindow(t)
	got, err := Encipher([]byte("Hello, Testing!"), w)
	if err != nil {
		t.Fatalf("Encipher: %v", err)
	}
	if got != "QrLPHFImLZRvpNcZU20s" {
		t.Fatalf("ciphertext = %q", got)
	}

	plain, err := Decipher(got, w)
	if err != nil {
		t.Fatalf("Decipher: %v", err)
	}
	if string(plain) != "Hello, Testing!" {
		t.Fatalf("plaintext = %q", plain)
	}
}

func TestEncipherEmptyMessage(t *testing.T) {
	got, err := Encipher(nil, referenceWindow(t))
	if err != nil {
		t.Fatalf("Encipher: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty ciphertext, got %q", got)
	}
}

func TestCipherRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		w := make([]byte, WindowSize)
		rng.Read(w)
		msg := make([]byte, rng.Intn(4096))
		rng.Read(msg)

		ct, err := Encipher(msg, w)
		if err != nil {
			t.Fatalf("Encipher: %v", err)
		}
		pt, err := Decipher(ct, w)
		if err != nil {
			t.Fatalf("Decipher: %v", err)
		}
		if !bytes.Equal(pt, msg) {
			t.Fatalf("round trip mismatch at %d", i)
		}
	}
}

func TestCipherRejectsBadInput(t *testing.T) {
	if _, err := Encipher([]byte("x"), make([]byte, 8)); err != ErrWindowSize {
		t.Fatalf("expected ErrWindowSize, got %v", err)
	}
	if _, err := Decipher("!!not base64", make([]byte, WindowSize)); err == nil {
		t.Fatalf("expected malformed ciphertext error")
	}
}

func TestFindRelocatesWindow(t *testing.T) {
	p := lorenz.NewParams(28, 10)
	s := lorenz.State{X: 1, Y: 1, Z: 1}
	buf := NewBuffer(0)
	for i := 0; i < 64; i++ {
		s = lorenz.Free(s, p)
		buf.Append(s.Y)
	}

	for _, k := range []int{0, 8, 24, 200} {
		w, err := buf.Window(k, WindowSize)
		if err != nil {
			t.Fatalf("Window(%d): %v", k, err)
		}
		fp := Fingerprint(w)
		off, ok := buf.Find(fp[:])
		if !ok || off != k {
			t.Fatalf("Find: got (%d, %v), want %d", off, ok, k)
		}
	}

	if _, ok := buf.Find([]byte("absent!!")); ok {
		t.Fatalf("expected miss")
	}
}

func TestBufferCapacityAndConsume(t *testing.T) {
	buf := NewBuffer(32)
	for i := 0; i < 4; i++ {
		if !buf.Append(float64(i)) {
			t.Fatalf("Append %d refused", i)
		}
	}
	if !buf.Full() || buf.Append(99) {
		t.Fatalf("expected full buffer")
	}

	second, _ := buf.Window(8, 8)
	buf.Consume(8)
	if buf.Len() != 24 || buf.Consumed() != 8 {
		t.Fatalf("len=%d consumed=%d", buf.Len(), buf.Consumed())
	}
	head, _ := buf.Window(0, 8)
	if !bytes.Equal(head, second) {
		t.Fatalf("consume did not advance")
	}
	if _, err := buf.Window(20, 8); err != ErrShortBuffer {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}

	buf.Reset()
	if buf.Len() != 0 || buf.Consumed() != 0 {
		t.Fatalf("reset left data behind")
	}
}
