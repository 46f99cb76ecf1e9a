// Package lorenz implements the discretized Lorenz system used to grow a
// shared keystream.
//
// Design goals:
//   - Bit-reproducible steps: every operation runs in a fixed order and each
//     product is rounded explicitly, so two peers with the same inputs see the
//     same IEEE 754 results on every platform
//   - One-way coupling: a receiver driven by the sender's x converges onto the
//     sender's (y, z) regardless of its own starting point
package lorenz
