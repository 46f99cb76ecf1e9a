package crypto

import (
	"errors"

	"github.com/TheusHen/chaoskey/chaoskey/lorenz"
)

const (
	// ScalarIndex is the byte of the shared secret that selects the parameters.
	ScalarIndex = 10

	RhoMin = 24.0
	RhoMax = 57.0

	// sigma bounds of the reference curve valid near RhoMin
	lowSigmaMin = 6.0
	lowSigmaMax = 14.5
	// sigma bounds of the reference curve valid near RhoMax
	highSigmaMin = 4.0
	highSigmaMax = 27.0
)

var ErrShortSecret = errors.New("crypto: shared secret too short")

// Negotiator holds the ephemeral keypair of one session until the peer's
// public key arrives.
type Negotiator struct {
	kp   X25519KeyPair
	done bool
}

// NewNegotiator generates the ephemeral keypair.
func NewNegotiator() (*Negotiator, error) {
	kp, err := GenerateX25519()
	if err != nil {
		return nil, err
	}
	return &Negotiator{kp: kp}, nil
}

// PublicKey returns the local public key to send to the peer.
func (n *Negotiator) PublicKey() [PublicKeySize]byte {
	return n.kp.PublicKey
}

// Complete derives the session parameters from the peer's public key. The
// private key is wiped whether or not derivation succeeds, so Complete can
// only be called once.
func (n *Negotiator) Complete(peerPub [PublicKeySize]byte) (lorenz.Params, error) {
	if n.done {
		return lorenz.Params{}, ErrKeyPairWiped
	}
	n.done = true
	defer n.kp.Wipe()

	shared, err := ECDH(n.kp.PrivateKey, peerPub)
	if err != nil {
		return lorenz.Params{}, err
	}
	defer memzero(shared)
	return ParamsFromSecret(shared)
}

// ParamsFromSecret maps a shared secret onto session parameters.
func ParamsFromSecret(secret []byte) (lorenz.Params, error) {
	if len(secret) <= ScalarIndex {
		return lorenz.Params{}, ErrShortSecret
	}
	return ParamsFromScalar(secret[ScalarIndex]), nil
}

// ParamsFromScalar maps one byte onto (rho, sigma).
//
// rho is linear in the scalar over [RhoMin, RhoMax]. sigma is read off two
// reference curves, one tuned for rho near RhoMin and one for rho near
// RhoMax, and the two readings are blended by rho's position in the range.
func ParamsFromScalar(scalar byte) lorenz.Params {
	rho := RhoMin + float64(float64((RhoMax-RhoMin)/255)*float64(scalar))
	t := (rho - RhoMin) / (RhoMax - RhoMin)
	low := lowSigmaMin + float64((lowSigmaMax-lowSigmaMin)*t)
	high := highSigmaMin + float64((highSigmaMax-highSigmaMin)*t)
	sigma := low + float64((high-low)*t)
	return lorenz.NewParams(rho, sigma)
}
