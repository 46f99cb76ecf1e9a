package session

import (
	"context"
	"errors"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TheusHen/chaoskey/chaoskey/keystream"
	"github.com/TheusHen/chaoskey/chaoskey/lorenz"
	"github.com/TheusHen/chaoskey/chaoskey/protocol"
	"github.com/TheusHen/chaoskey/internal/metrics"
)

const (
	// DefaultSyncTicks is the number of consecutive matching ticks that
	// declares synchronization.
	DefaultSyncTicks = 100
	// DefaultEpsilon nudges the trajectory between messages.
	DefaultEpsilon = 1e-3

	syncAck = "Sync Request approved"
)

var (
	InitiatorSeed = lorenz.State{X: -10, Y: -7, Z: 35}
	ResponderSeed = lorenz.State{X: 0, Y: 1, Z: 2}
)

// Config tunes a session. The zero value of every field selects its default.
type Config struct {
	SyncTicks int
	Epsilon   float64
	// TickInterval paces free-running and syncing ticks. Zero runs flat out.
	TickInterval time.Duration
	// BufferCapacity bounds the retained keystream in bytes.
	BufferCapacity int
	// Seed overrides the role's initial trajectory.
	Seed   *lorenz.State
	Logger zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		SyncTicks:      DefaultSyncTicks,
		Epsilon:        DefaultEpsilon,
		TickInterval:   time.Millisecond,
		BufferCapacity: keystream.DefaultCapacity,
		Logger:         zerolog.Nop(),
	}
}

// Session is the state one connection owns: trajectory, parameters and
// keystream. It is driven by a single goroutine.
type Session struct {
	id     string
	role   Role
	cfg    Config
	conn   *protocol.Conn
	log    zerolog.Logger
	state  State
	params lorenz.Params
	traj   lorenz.State
	buf    *keystream.Buffer
}

func newSession(rw io.ReadWriteCloser, role Role, cfg Config) *Session {
	if cfg.SyncTicks <= 0 {
		cfg.SyncTicks = DefaultSyncTicks
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	id := uuid.NewString()
	return &Session{
		id:    id,
		role:  role,
		cfg:   cfg,
		conn:  protocol.NewConn(rw),
		log:   cfg.Logger.With().Str("session", id).Str("role", role.String()).Logger(),
		state: StateUnverified,
		buf:   keystream.NewBuffer(cfg.BufferCapacity),
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Role() Role            { return s.role }
func (s *Session) State() State          { return s.state }
func (s *Session) Params() lorenz.Params { return s.params }

// Trajectory returns the current point of the local integrator.
func (s *Session) Trajectory() lorenz.State { return s.traj }

func (s *Session) seed() lorenz.State {
	if s.cfg.Seed != nil {
		return *s.cfg.Seed
	}
	if s.role == RoleInitiator {
		return InitiatorSeed
	}
	return ResponderSeed
}

func (s *Session) enter(st State) {
	s.log.Debug().Str("from", s.state.String()).Str("to", st.String()).Msg("state")
	s.state = st
}

func (s *Session) tick() {
	s.traj = lorenz.Free(s.traj, s.params)
}

// harvest ticks once and keeps the y bytes. It reports false when the
// buffer is full and nothing was done.
func (s *Session) harvest() bool {
	if s.buf.Full() {
		return false
	}
	s.tick()
	return s.buf.Append(s.traj.Y)
}

func (s *Session) pace(ctx context.Context) error {
	if s.cfg.TickInterval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.cfg.TickInterval)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) send(frames ...protocol.Frame) error {
	if err := s.conn.Send(frames...); err != nil {
		return channelFailure(s.state, err)
	}
	return nil
}

func (s *Session) recv(ctx context.Context) (protocol.Frame, error) {
	f, err := s.conn.Recv(ctx)
	if err != nil {
		return protocol.Frame{}, s.readFailure(err)
	}
	return f, nil
}

func (s *Session) poll() (protocol.Frame, bool, error) {
	f, ok, err := s.conn.Poll()
	if err != nil {
		return protocol.Frame{}, false, s.readFailure(err)
	}
	return f, ok, nil
}

// readFailure classifies a receive error. A frame the codec refused is the
// peer breaking the protocol; anything else is the stream itself failing.
func (s *Session) readFailure(err error) error {
	if errors.Is(err, protocol.ErrInvalidType) || errors.Is(err, protocol.ErrFrameTooLarge) {
		return wrapViolation(s.state, err)
	}
	return channelFailure(s.state, err)
}

// restart perturbs the trajectory and drops the episode's keystream so the
// next message needs a fresh synchronization.
func (s *Session) restart() {
	s.traj = s.traj.Perturb(s.cfg.Epsilon)
	s.buf.Reset()
	s.enter(StateUnsynced)
}

func (s *Session) abort(err error) error {
	if s.state == StateClosed {
		return err
	}
	s.log.Error().Err(err).Str("state", s.state.String()).Str("kind", Kind(err)).Msg("session aborted")
	s.state = StateClosed
	_ = s.conn.Close()
	metrics.RecordSession(s.role.String(), Kind(err))
	return err
}

func (s *Session) finish() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	metrics.RecordSession(s.role.String(), Kind(nil))
	s.log.Info().Msg("session finished")
	return s.conn.Close()
}

func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
