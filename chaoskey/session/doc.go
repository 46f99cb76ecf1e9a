// Package session runs the synchronization protocol between two peers.
//
// A session moves through these states:
//
//	Unverified -> Unsynced -> Syncing -> Synced -> Transmitting -> Completed
//
// and loops from Completed back to Unsynced, after nudging the trajectory by
// a small epsilon, for every further message. The initiator drives the
// exchange and enciphers; the responder couples its integrator to the
// initiator's x, declares synchronization and deciphers.
//
// Every failure is fatal: protocol violations, keystream lookup misses and
// transport errors all tear the session down.
package session
