// SPDX-License-Identifier: EPL-2.0

// Package buffer wraps sample and frame streams with a decode-ahead ring
// buffer.
//
// A buffered stream owns one background goroutine that reads from the
// wrapped source into a fixed number of pre-allocated slots while the
// consumer drains them in order. The consumer blocks on a condition
// variable when the ring is empty, never spins.
//
// Seeking stops the producer, waits for it to exit, discards every buffered
// slot and restarts production from the new position, so no data from
// before a seek is ever returned after it. Errors from the source are kept
// and returned by the next Read once the slots produced before them have
// been consumed.
//
//	src, _ := wav.NewDecoder(f)
//	buf, err := buffer.NewSampleStream(src, buffer.WithCapacity(8))
//	if err != nil {
//		return err
//	}
//	defer buf.Close()
package buffer
