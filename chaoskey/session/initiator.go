package session

import (
	"context"
	"io"

	"github.com/TheusHen/chaoskey/chaoskey/keystream"
	"github.com/TheusHen/chaoskey/chaoskey/protocol"
	"github.com/TheusHen/chaoskey/internal/metrics"
)

// Initiator requests synchronization and enciphers messages.
type Initiator struct {
	*Session
}

// NewInitiator wraps a stream already connected to a responder.
func NewInitiator(rw io.ReadWriteCloser, cfg Config) *Initiator {
	return &Initiator{Session: newSession(rw, RoleInitiator, cfg)}
}

// Send runs one synchronization episode and transmits msg. It returns the
// base64 ciphertext that went on the wire. The first call also negotiates
// the session parameters.
func (in *Initiator) Send(ctx context.Context, msg []byte) (string, error) {
	if in.state == StateClosed {
		return "", ErrSessionClosed
	}
	if err := in.negotiate(ctx); err != nil {
		return "", in.abort(err)
	}
	if err := in.requestSync(ctx); err != nil {
		return "", in.abort(err)
	}
	if err := in.synchronize(ctx); err != nil {
		return "", in.abort(err)
	}
	window, err := in.harvestWindow(ctx)
	if err != nil {
		return "", in.abort(err)
	}
	ct, err := in.transmit(msg, window)
	if err != nil {
		return "", in.abort(err)
	}
	in.restart()
	return ct, nil
}

// Close cancels the session. A responder waiting for the next message ends
// cleanly.
func (in *Initiator) Close() error {
	if in.state == StateClosed {
		return nil
	}
	if in.state == StateUnsynced {
		if err := in.send(protocol.Control(protocol.Cancel)); err != nil {
			return in.abort(err)
		}
	}
	return in.finish()
}

// requestSync asks the responder to couple and free-runs until it agrees.
func (in *Initiator) requestSync(ctx context.Context) error {
	if err := in.send(protocol.Control(protocol.SyncRequest)); err != nil {
		return err
	}
	for {
		in.tick()
		f, ok, err := in.poll()
		if err != nil {
			return err
		}
		if ok {
			ack, err := protocol.AsText(f)
			if err != nil {
				return wrapViolation(in.state, err)
			}
			in.log.Debug().Str("ack", ack).Msg("sync request accepted")
			in.enter(StateSyncing)
			return nil
		}
		if err := in.pace(ctx); err != nil {
			return err
		}
	}
}

// synchronize streams the trajectory until the responder reports that it
// has converged.
func (in *Initiator) synchronize(ctx context.Context) error {
	ticks := 0
	for {
		in.tick()
		ticks++
		if err := in.send(
			protocol.Coordinate(in.traj.X),
			protocol.Coordinate(in.traj.Y),
			protocol.Coordinate(in.traj.Z),
		); err != nil {
			return err
		}
		f, ok, err := in.poll()
		if err != nil {
			return err
		}
		if ok {
			if err := protocol.ExpectControl(f, protocol.SyncComplete); err != nil {
				return wrapViolation(in.state, err)
			}
			in.log.Info().Int("ticks", ticks).Msg("synchronized")
			metrics.RecordSync(in.role.String(), ticks)
			in.buf.Reset()
			in.enter(StateSynced)
			return nil
		}
		if err := in.pace(ctx); err != nil {
			return err
		}
	}
}

// harvestWindow free-runs until one keystream window is available.
func (in *Initiator) harvestWindow(ctx context.Context) ([]byte, error) {
	for in.buf.Len() < keystream.WindowSize {
		in.harvest()
		f, ok, err := in.poll()
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, violation(in.state, "unexpected %s", f)
		}
		if err := in.pace(ctx); err != nil {
			return nil, err
		}
	}
	window, err := in.buf.Window(0, keystream.WindowSize)
	if err != nil {
		return nil, err
	}
	// the window is never handed out twice
	in.buf.Consume(keystream.WindowSize)
	in.enter(StateTransmitting)
	return window, nil
}

func (in *Initiator) transmit(msg, window []byte) (string, error) {
	ct, err := keystream.Encipher(msg, window)
	if err != nil {
		return "", err
	}
	fp := keystream.Fingerprint(window)

	frames := make([]protocol.Frame, 0, 2+keystream.FingerprintSize)
	frames = append(frames, protocol.Control(protocol.EncryptionComplete), protocol.Text(ct))
	for _, b := range fp {
		frames = append(frames, protocol.Byte(b))
	}
	if err := in.send(frames...); err != nil {
		return "", err
	}
	in.enter(StateCompleted)
	in.log.Info().Int("bytes", len(msg)).Str("ciphertext", ct).Msg("message sent")
	metrics.RecordMessage(in.role.String(), len(msg))
	return ct, nil
}
