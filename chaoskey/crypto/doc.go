// Package crypto negotiates the chaos parameters of a session.
//
// Each peer generates an ephemeral X25519 keypair, the public halves are
// exchanged, and one byte of the shared secret selects (rho, sigma) inside the
// chaotic regime of the Lorenz system. Nothing but the public keys crosses the
// wire.
//
// Only 256 parameter pairs exist. This is a known narrow keyspace and it is
// kept deliberately: both peers must land on bit-identical parameters and the
// mapping is fixed by the protocol.
package crypto
