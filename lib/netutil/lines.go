// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultMaxLineLength bounds a single protocol line. Instrument
// commands are a keyword and at most two short arguments, so anything
// near this size is garbage.
const DefaultMaxLineLength = 4096

// ErrLineTooLong is returned by LineReader.ReadLine for a line that
// does not fit the reader's limit. The rest of that line has already
// been discarded, so the next ReadLine starts on a fresh line.
var ErrLineTooLong = errors.New("line too long")

// LineReader splits a stream into newline-terminated lines of bounded
// length.
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader returns a LineReader whose lines, terminator included,
// are at most maxLength bytes (DefaultMaxLineLength when maxLength <= 0;
// never below 16).
func NewLineReader(reader io.Reader, maxLength int) *LineReader {
	if maxLength <= 0 {
		maxLength = DefaultMaxLineLength
	}
	return &LineReader{reader: bufio.NewReaderSize(reader, maxLength)}
}

// ReadLine returns the next line without its "\n" or "\r\n". A final
// line without a terminator is still returned; the call after it
// reports io.EOF.
func (r *LineReader) ReadLine() (string, error) {
	line, err := r.reader.ReadSlice('\n')
	switch {
	case err == nil:
		return trimTerminator(line), nil
	case errors.Is(err, bufio.ErrBufferFull):
		return "", r.discardLine()
	case errors.Is(err, io.EOF) && len(line) > 0:
		return trimTerminator(line), nil
	default:
		return "", err
	}
}

// discardLine skips the remainder of an oversized line.
func (r *LineReader) discardLine() error {
	for {
		_, err := r.reader.ReadSlice('\n')
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return ErrLineTooLong
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return err
		}
	}
}

func trimTerminator(line []byte) string {
	return strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
}
