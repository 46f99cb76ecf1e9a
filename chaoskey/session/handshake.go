package session

import (
	"context"

	"github.com/TheusHen/chaoskey/chaoskey/crypto"
	"github.com/TheusHen/chaoskey/chaoskey/protocol"
)

// negotiate exchanges ephemeral public keys and derives the session
// parameters. The initiator speaks first. It runs once per session.
func (s *Session) negotiate(ctx context.Context) error {
	if s.state != StateUnverified {
		return nil
	}
	n, err := crypto.NewNegotiator()
	if err != nil {
		return err
	}
	local := protocol.PublicKey(n.PublicKey())

	if s.role == RoleInitiator {
		if err := s.send(local); err != nil {
			return err
		}
	}
	f, err := s.recv(ctx)
	if err != nil {
		return err
	}
	peer, err := protocol.AsPublicKey(f)
	if err != nil {
		return wrapViolation(s.state, err)
	}
	if s.role == RoleResponder {
		if err := s.send(local); err != nil {
			return err
		}
	}

	params, err := n.Complete(peer)
	if err != nil {
		return wrapViolation(s.state, err)
	}
	s.params = params
	s.traj = s.seed()
	s.log.Info().Float64("rho", params.Rho).Float64("sigma", params.Sigma).Msg("parameters negotiated")
	s.enter(StateUnsynced)
	return nil
}
