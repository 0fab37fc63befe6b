// Package subprocess runs a language server as a child process.
//
// Start spawns the server with piped stdin, stdout, and stderr. Two relay
// goroutines then run for the life of the output streams: the output relay
// parses stdout into frames and publishes message and log events, and the
// diagnostic relay publishes each stderr line. Once both streams have closed
// the process is reaped and a single exit event is published.
//
// Send is the input channel. It frames a body and writes it to stdin under a
// mutex, so concurrent sends are serialized and never interleave on the wire.
package subprocess
