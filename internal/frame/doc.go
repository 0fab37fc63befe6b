// Package frame implements the Content-Length framing used by language
// servers on their stdio streams.
//
// A frame is a header line "Content-Length: <n>", a blank separator line, and
// exactly n bytes of UTF-8 body. Reader parses such a stream into message
// bodies and passes any line that is not a frame header through as a raw log
// line. Writer produces frames.
//
// Two header modes are supported. ModeCompat discards exactly one line after
// the Content-Length line, whatever it contains. ModeStrict reads header lines
// until the blank separator, so peers that also send Content-Type are parsed
// correctly.
package frame
