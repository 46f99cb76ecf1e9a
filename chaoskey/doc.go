// Package chaoskey lets two peers share a keystream without sending key
// material: each side runs a Lorenz integrator, the responder couples its
// integrator to the initiator's x until both trajectories coincide bit for
// bit, and both then harvest the same bytes to XOR-encipher a message.
//
// The subpackages are the building blocks: lorenz (integrator), crypto
// (parameter negotiation over ephemeral X25519), keystream (harvest buffer
// and cipher), protocol (typed frames), session (state machines) and
// transport/quic. Peer ties them into a listen/dial helper.
//
// The scheme is an exercise in chaos synchronization, not a secure channel:
// there is no peer authentication and the cipher is a 16 byte repeating XOR.
package chaoskey
