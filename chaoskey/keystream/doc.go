// Package keystream harvests bytes from a synchronized trajectory and uses
// them as an XOR keystream.
//
// Key features:
//   - Buffer: append-only, 8 little-endian bytes of y per tick, bounded
//   - Window/Consume: the sender takes a window from the front and never
//     hands it out again
//   - Find: the receiver relocates the sender's window by its fingerprint,
//     because the two buffers start at different ticks
//   - Encipher/Decipher: XOR with a 16 byte window, base64 on the wire
package keystream
