// Package gpsd implements the client side of the gpsd newline-delimited
// JSON protocol over an abstract duplex byte stream.
//
// It covers three things:
//   - The four-step watch handshake (VERSION, ?WATCH, DEVICES, WATCH ack)
//   - Decoding each line into a typed report (TPV, SKY, PPS, ...)
//   - Lenient per-field coercion for fields whose wire encoding has
//     changed across gpsd versions
//
// Obtaining the byte stream (dialing, timeouts, reconnects) is the
// caller's job; see the feed package for a supervised TCP client.
package gpsd
