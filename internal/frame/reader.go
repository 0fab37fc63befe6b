package frame

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// HeaderContentLength is the only header the bridge requires.
	HeaderContentLength = "Content-Length"

	// DefaultMaxFrameSize bounds the body size the reader will buffer.
	DefaultMaxFrameSize = 64 * 1024 * 1024 // 64MB

	// readBufferSize matches what language servers typically flush at once.
	readBufferSize = 64 * 1024

	contentLengthPrefix = HeaderContentLength + ": "
)

// HeaderMode selects how the header block of a frame is consumed.
type HeaderMode string

const (
	// ModeCompat discards exactly one line after the Content-Length line.
	ModeCompat HeaderMode = "compat"
	// ModeStrict consumes header lines until a blank line.
	ModeStrict HeaderMode = "strict"
)

// ParseHeaderMode converts a configuration string into a HeaderMode.
// The empty string selects ModeCompat.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch HeaderMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCompat:
		return ModeCompat, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown header mode %q", s)
	}
}

// ItemKind identifies what Reader.Next produced.
type ItemKind int

const (
	// ItemMessage is a decoded frame body.
	ItemMessage ItemKind = iota
	// ItemLog is a line that was not a frame header.
	ItemLog
	// ItemDropped is a frame that was consumed but could not be delivered.
	ItemDropped
)

// String returns a human-readable kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemMessage:
		return "message"
	case ItemLog:
		return "log"
	case ItemDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// DropReason explains why a frame was dropped.
type DropReason string

const (
	DropShortRead     DropReason = "short_read"
	DropInvalidUTF8   DropReason = "invalid_utf8"
	DropTooLarge      DropReason = "too_large"
	DropMissingLength DropReason = "missing_length"
)

// Item is one unit parsed from the stream.
type Item struct {
	Kind ItemKind
	// Text is the body for ItemMessage and the line for ItemLog.
	Text string
	// Length is the declared body length for ItemMessage and ItemDropped.
	Length int
	// Reason is set for ItemDropped.
	Reason DropReason
}

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	Mode         HeaderMode
	MaxFrameSize int
}

// Reader parses a framed byte stream. It is not safe for concurrent use;
// a single relay goroutine owns it.
type Reader struct {
	br           *bufio.Reader
	mode         HeaderMode
	maxFrameSize int
	err          error // sticky terminal error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, cfg ReaderConfig) *Reader {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeCompat
	}

	maxFrameSize := cfg.MaxFrameSize
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	return &Reader{
		br:           bufio.NewReaderSize(r, readBufferSize),
		mode:         mode,
		maxFrameSize: maxFrameSize,
	}
}

// Next returns the next message, log line, or dropped frame.
//
// Blank lines between frames are skipped. Next returns io.EOF once the stream
// ends, or the underlying read error if a header line could not be read.
// Once Next has returned an error it keeps returning it.
func (r *Reader) Next() (Item, error) {
	if r.err != nil {
		return Item{}, r.err
	}

	for {
		line, err := r.br.ReadString('\n')
		if err != nil && line == "" {
			r.err = err

			return Item{}, err
		}

		trimmed := strings.TrimRight(line, " \t\r\n")
		if trimmed == "" {
			if err != nil {
				r.err = err

				return Item{}, err
			}

			continue
		}

		if !r.isHeader(trimmed) {
			// An unterminated last line is still surfaced before the stream ends.
			r.err = err

			return Item{Kind: ItemLog, Text: trimmed}, nil
		}

		if err != nil {
			// Header with no body following it.
			r.err = err

			return Item{}, err
		}

		length, ok, err := r.readHeaderBlock(trimmed)
		if err != nil {
			r.err = err

			return Item{}, err
		}

		if !ok {
			return Item{Kind: ItemDropped, Reason: DropMissingLength}, nil
		}

		return r.readBody(length), nil
	}
}

// isHeader reports whether line starts a frame header block.
func (r *Reader) isHeader(line string) bool {
	if r.mode == ModeStrict {
		name, _, found := strings.Cut(line, ":")
		if !found {
			return false
		}

		name = strings.TrimSpace(name)

		return strings.EqualFold(name, HeaderContentLength) || strings.EqualFold(name, "Content-Type")
	}

	value, ok := strings.CutPrefix(line, contentLengthPrefix)

	return ok && isDigits(value)
}

// readHeaderBlock consumes the rest of the header block that begins with
// first and returns the declared body length.
func (r *Reader) readHeaderBlock(first string) (int, bool, error) {
	if r.mode != ModeStrict {
		length := parseLength(strings.TrimPrefix(first, contentLengthPrefix))

		// Exactly one separator line, whatever it holds.
		if _, err := r.br.ReadString('\n'); err != nil {
			return 0, false, err
		}

		return length, true, nil
	}

	length, found := 0, false
	line := first

	for {
		name, value, _ := strings.Cut(line, ":")
		if strings.EqualFold(strings.TrimSpace(name), HeaderContentLength) {
			// A non-numeric value leaves the length missing.
			value = strings.TrimSpace(value)
			if isDigits(value) {
				length, found = parseLength(value), true
			}
		}

		next, err := r.br.ReadString('\n')
		if err != nil {
			return 0, false, err
		}

		line = strings.TrimRight(next, " \t\r\n")
		if line == "" {
			return length, found, nil
		}
	}
}

// readBody reads exactly n bytes. Short reads, oversized bodies, and invalid
// UTF-8 produce a dropped item rather than an error; a short read leaves the
// stream at EOF so the following Next call ends the loop.
func (r *Reader) readBody(n int) Item {
	if n > r.maxFrameSize {
		copied, _ := io.CopyN(io.Discard, r.br, int64(n))
		if copied < int64(n) {
			return Item{Kind: ItemDropped, Length: n, Reason: DropShortRead}
		}

		return Item{Kind: ItemDropped, Length: n, Reason: DropTooLarge}
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r.br, body); err != nil {
		return Item{Kind: ItemDropped, Length: n, Reason: DropShortRead}
	}

	if !utf8.Valid(body) {
		return Item{Kind: ItemDropped, Length: n, Reason: DropInvalidUTF8}
	}

	return Item{Kind: ItemMessage, Text: string(body), Length: n}
}

// parseLength parses a decimal body length. Callers pass only ASCII digits;
// a value too large for an int counts as zero.
func parseLength(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}

	return n
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
