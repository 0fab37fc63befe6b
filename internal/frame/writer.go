package frame

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Encode returns body wrapped in a Content-Length header. The length counts
// UTF-8 bytes, not characters.
func Encode(body string) []byte {
	header := contentLengthPrefix + strconv.Itoa(len(body)) + "\r\n\r\n"

	buf := make([]byte, 0, len(header)+len(body))
	buf = append(buf, header...)
	buf = append(buf, body...)

	return buf
}

// Writer writes frames to an underlying stream. Each WriteFrame call writes
// and flushes one complete frame. Writer does no locking of its own.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteFrame writes body as one frame and flushes it.
func (w *Writer) WriteFrame(body string) error {
	if _, err := w.bw.Write(Encode(body)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}

	return nil
}
