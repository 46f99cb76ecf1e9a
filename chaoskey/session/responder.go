package session

import (
	"context"
	"fmt"
	"io"

	"github.com/TheusHen/chaoskey/chaoskey/keystream"
	"github.com/TheusHen/chaoskey/chaoskey/lorenz"
	"github.com/TheusHen/chaoskey/chaoskey/protocol"
	"github.com/TheusHen/chaoskey/internal/metrics"
)

// Message is one deciphered message delivered by a Responder.
type Message struct {
	Session    string
	Ciphertext string
	Plaintext  []byte
}

// Handler receives every message a responder deciphers.
type Handler func(Message)

// Responder couples to the initiator and deciphers its messages.
type Responder struct {
	*Session
}

// NewResponder wraps a stream accepted from an initiator.
func NewResponder(rw io.ReadWriteCloser, cfg Config) *Responder {
	return &Responder{Session: newSession(rw, RoleResponder, cfg)}
}

// Serve runs the session until the initiator cancels it or it fails.
func (r *Responder) Serve(ctx context.Context, h Handler) error {
	if r.state == StateClosed {
		return ErrSessionClosed
	}
	if err := r.negotiate(ctx); err != nil {
		return r.abort(err)
	}
	for {
		more, err := r.awaitSyncRequest(ctx)
		if err != nil {
			return r.abort(err)
		}
		if !more {
			return r.finish()
		}
		if err := r.synchronize(ctx); err != nil {
			return r.abort(err)
		}
		if err := r.awaitCiphertext(ctx); err != nil {
			return r.abort(err)
		}
		msg, err := r.receive(ctx)
		if err != nil {
			return r.abort(err)
		}
		r.enter(StateCompleted)
		r.log.Info().Int("bytes", len(msg.Plaintext)).Msg("message received")
		metrics.RecordMessage(r.role.String(), len(msg.Plaintext))
		if h != nil {
			h(msg)
		}
		r.restart()
	}
}

// awaitSyncRequest free-runs until the initiator asks to synchronize. It
// reports false when the initiator cancels instead.
func (r *Responder) awaitSyncRequest(ctx context.Context) (bool, error) {
	for {
		r.tick()
		f, ok, err := r.poll()
		if err != nil {
			return false, err
		}
		if ok {
			c, err := protocol.AsControl(f)
			if err != nil {
				return false, wrapViolation(r.state, err)
			}
			switch c {
			case protocol.SyncRequest:
				if err := r.send(protocol.Text(syncAck)); err != nil {
					return false, err
				}
				r.enter(StateSyncing)
				return true, nil
			case protocol.Cancel:
				r.log.Debug().Msg("cancelled by initiator")
				return false, nil
			default:
				return false, violation(r.state, "unexpected %s", c)
			}
		}
		if err := r.pace(ctx); err != nil {
			return false, err
		}
	}
}

func (r *Responder) recvCoordinate(ctx context.Context) (float64, error) {
	f, err := r.recv(ctx)
	if err != nil {
		return 0, err
	}
	v, err := protocol.AsCoordinate(f)
	if err != nil {
		return 0, wrapViolation(r.state, err)
	}
	return v, nil
}

// synchronize couples the local integrator to the initiator's x until the
// (y, z) the initiator reports equals, bit for bit, what this side computed
// on the previous tick for SyncTicks ticks in a row.
func (r *Responder) synchronize(ctx context.Context) error {
	var (
		lastY, lastZ float64
		primed       bool
		matches      int
		ticks        int
	)
	for matches < r.cfg.SyncTicks {
		var peer lorenz.State
		var err error
		if peer.X, err = r.recvCoordinate(ctx); err != nil {
			return err
		}
		if peer.Y, err = r.recvCoordinate(ctx); err != nil {
			return err
		}
		if peer.Z, err = r.recvCoordinate(ctx); err != nil {
			return err
		}
		if !peer.Finite() {
			return violation(r.state, "non-finite coordinate %v", peer)
		}
		ticks++

		r.traj = lorenz.Coupled(r.traj, peer.X, r.params)
		if primed && sameBits(peer.Y, lastY) && sameBits(peer.Z, lastZ) {
			matches++
		} else {
			matches = 0
		}
		lastY, lastZ, primed = r.traj.Y, r.traj.Z, true
	}

	if err := r.send(protocol.Control(protocol.SyncComplete)); err != nil {
		return err
	}
	r.log.Info().Int("ticks", ticks).Msg("synchronized")
	metrics.RecordSync(r.role.String(), ticks)

	// The initiator may still sit on the tick this side just computed, so
	// that tick's y opens the keystream.
	r.buf.Reset()
	r.buf.Append(r.traj.Y)
	r.enter(StateSynced)
	return nil
}

// awaitCiphertext free-runs and harvests until the initiator announces a
// ciphertext. Coordinate triples the initiator sent before it saw
// SyncComplete are discarded, each one moving the start of the keystream a
// tick forward.
func (r *Responder) awaitCiphertext(ctx context.Context) error {
	stale := 0
	for {
		var (
			f   protocol.Frame
			ok  bool
			err error
		)
		if r.harvest() {
			f, ok, err = r.poll()
		} else {
			// retention bound reached; nothing to do but wait
			f, err = r.recv(ctx)
			ok = err == nil
		}
		if err != nil {
			return err
		}
		if !ok {
			if err := r.pace(ctx); err != nil {
				return err
			}
			continue
		}

		if protocol.IsCoordinate(f) {
			stale++
			if stale%3 == 0 {
				r.skipStaleTick()
			}
			continue
		}
		if stale%3 != 0 {
			return violation(r.state, "partial coordinate triple (%d frames)", stale)
		}
		if err := protocol.ExpectControl(f, protocol.EncryptionComplete); err != nil {
			return wrapViolation(r.state, err)
		}
		r.log.Debug().Int("stale_ticks", stale/3).Int("harvested", r.buf.Len()).Msg("ciphertext announced")
		r.enter(StateTransmitting)
		return nil
	}
}

// skipStaleTick accounts for one tick the initiator ran before it saw
// SyncComplete. The initiator starts harvesting after that tick, so its y is
// dropped here, or skipped when it has not been harvested yet.
func (r *Responder) skipStaleTick() {
	if r.buf.Len() >= keystream.ChunkSize {
		r.buf.Consume(keystream.ChunkSize)
		return
	}
	r.tick()
}

// receive reads the ciphertext and fingerprint, relocates the sender's
// window in the local keystream and deciphers.
func (r *Responder) receive(ctx context.Context) (Message, error) {
	f, err := r.recv(ctx)
	if err != nil {
		return Message{}, err
	}
	ct, err := protocol.AsText(f)
	if err != nil {
		return Message{}, wrapViolation(r.state, err)
	}

	fp := make([]byte, keystream.FingerprintSize)
	for i := range fp {
		f, err := r.recv(ctx)
		if err != nil {
			return Message{}, err
		}
		if fp[i], err = protocol.AsByte(f); err != nil {
			return Message{}, wrapViolation(r.state, err)
		}
	}

	off, err := r.locate(fp)
	if err != nil {
		return Message{}, err
	}
	window, err := r.buf.Window(off, keystream.WindowSize)
	if err != nil {
		return Message{}, err
	}
	r.buf.Consume(off + keystream.WindowSize)

	plain, err := keystream.Decipher(ct, window)
	if err != nil {
		return Message{}, wrapViolation(r.state, err)
	}
	return Message{Session: r.id, Ciphertext: ct, Plaintext: plain}, nil
}

// locate searches the keystream for fp. The sender may have run ahead of
// this side, so the buffer keeps growing, up to its retention bound, while
// the fingerprint is missing.
func (r *Responder) locate(fp []byte) (int, error) {
	from := 0
	for {
		if off, ok := r.buf.FindFrom(fp, from); ok {
			for r.buf.Len() < off+keystream.WindowSize {
				if !r.harvest() {
					return 0, ErrLookupFailure
				}
			}
			return off, nil
		}
		from = r.buf.Len() - len(fp) + 1
		if from < 0 {
			from = 0
		}
		if !r.harvest() {
			return 0, fmt.Errorf("%w: fingerprint %x not in %d harvested bytes", ErrLookupFailure, fp, r.buf.Len())
		}
	}
}
