// Package streamjson splits a top-level JSON array into raw candidate objects
// without materializing the input.
//
// The scanner is forward-only and pull-based: each Next returns the raw text
// of one top-level array element. Memory is bounded by the largest single
// object, never by the file size. Malformed elements are the caller's problem;
// the scanner only guarantees correct object boundaries across nested braces
// and quoted strings with escapes
package streamjson

import (
	"bufio"
	"bytes"
	"io"

	perr "chatlake/internal/platform/errors"
)

// scanner states for the top-level walk
type state int

const (
	// stateSeeking is before the array's opening bracket
	stateSeeking state = iota
	// stateIdle is inside the array, between objects
	stateIdle
	// stateInObject is inside an object, depth >= 1
	stateInObject
)

// Scanner pulls candidate objects from a character stream holding one
// top-level JSON array. Not safe for concurrent use
type Scanner struct {
	br  *bufio.Reader
	st  state
	buf bytes.Buffer

	inString bool
	escaped  bool
	depth    int

	done bool
	err  error

	candidates int
	bytesRead  int64
}

// NewScanner wraps r; nothing is read until the first Next
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the raw text of the next top-level object.
// It returns io.EOF after the array's closing bracket, and a Truncated error
// when the stream ends before one is seen (mid-object or between objects).
// The returned string spans exactly one balanced object, braces included
func (s *Scanner) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.done {
		s.err = io.EOF
		return "", io.EOF
	}

	for {
		c, err := s.br.ReadByte()
		if err == io.EOF {
			s.err = s.truncated()
			return "", s.err
		}
		if err != nil {
			s.err = perr.Wrap(err, perr.ErrorCodeTruncated, "stream read failed")
			return "", s.err
		}
		s.bytesRead++

		switch s.st {
		case stateSeeking:
			if c == '[' {
				s.st = stateIdle
			}
			// anything before the array is discarded

		case stateIdle:
			switch c {
			case '{':
				s.buf.Reset()
				s.buf.WriteByte(c)
				s.depth = 1
				s.inString = false
				s.escaped = false
				s.st = stateInObject
			case ']':
				s.done = true
				s.err = io.EOF
				return "", io.EOF
			default:
				// whitespace, commas and stray bytes between objects are discarded
			}

		case stateInObject:
			s.buf.WriteByte(c)

			if s.escaped {
				s.escaped = false
				continue
			}
			if c == '\\' && s.inString {
				s.escaped = true
				continue
			}
			if c == '"' {
				s.inString = !s.inString
				continue
			}
			if s.inString {
				continue
			}
			switch c {
			case '{':
				s.depth++
			case '}':
				s.depth--
				if s.depth == 0 {
					s.st = stateIdle
					s.candidates++
					return s.buf.String(), nil
				}
			}
		}
	}
}

// Stats returns the number of candidates emitted and bytes consumed so far
func (s *Scanner) Stats() (candidates int, bytes int64) {
	return s.candidates, s.bytesRead
}

// truncated builds the state-appropriate unexpected-end error
func (s *Scanner) truncated() error {
	switch s.st {
	case stateSeeking:
		return perr.Truncatedf("no top-level array found in input")
	case stateInObject:
		return perr.Truncatedf("stream ended inside an object at depth %d", s.depth)
	default:
		return perr.Truncatedf("stream ended before the array's closing bracket")
	}
}

// IsTruncated reports whether err marks an unexpected end of input,
// as opposed to the clean io.EOF after the closing bracket
func IsTruncated(err error) bool {
	return perr.IsCode(err, perr.ErrorCodeTruncated)
}
