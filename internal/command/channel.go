// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package command

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxLine is the longest line, terminator excluded, a Channel accepts.
const DefaultMaxLine = 128

var (
	// ErrInvalidEncoding is returned for a line that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("command: line is not valid UTF-8")
	// ErrLineTooLong is returned once per line longer than MaxLine.
	ErrLineTooLong = errors.New("command: line too long")
)

// Transport is the duplex byte link commands arrive on.
//
// Read must not block: with nothing pending it returns 0, nil.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Mode selects how partial lines are handled.
type Mode uint8

const (
	// LineBuffered keeps bytes across polls and emits a command once its
	// terminator arrives.
	LineBuffered Mode = iota
	// SingleShot treats each read as a whole line. A line split across two
	// reads is parsed as two broken lines.
	SingleShot
)

// Options configures a Channel. Zero values pick the defaults.
type Options struct {
	MaxLine    int
	Mode       Mode
	Vocabulary Vocabulary
}

// Channel accumulates bytes from a Transport into Commands.
type Channel struct {
	opts       Options
	rbuf       []byte
	line       []byte
	discarding bool
}

// NewChannel returns a Channel ready to poll.
func NewChannel(opts Options) *Channel {
	if opts.MaxLine <= 0 {
		opts.MaxLine = DefaultMaxLine
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = DefaultVocabulary()
	}
	return &Channel{
		opts: opts,
		rbuf: make([]byte, opts.MaxLine),
		line: make([]byte, 0, 2*opts.MaxLine),
	}
}

// Poll performs at most one non-blocking read and returns at most one
// Command. ok is false when no whole line is available yet.
func (c *Channel) Poll(t Transport) (cmd Command, ok bool, err error) {
	if c.opts.Mode == SingleShot {
		return c.pollSingle(t)
	}
	return c.pollBuffered(t)
}

func isTerminator(b byte) bool {
	return b == '\n' || b == '\r'
}

func (c *Channel) pollSingle(t Transport) (Command, bool, error) {
	n, err := t.Read(c.rbuf)
	if n == 0 {
		if err != nil {
			return Command{}, false, fmt.Errorf("command: read: %w", err)
		}
		return Command{}, false, nil
	}
	b := c.rbuf[:n]
	if isTerminator(b[n-1]) {
		b = b[:n-1]
	}
	return c.decode(b)
}

func (c *Channel) pollBuffered(t Transport) (Command, bool, error) {
	// A previous read may have carried more than one line.
	if cmd, ok, err := c.nextLine(); ok || err != nil {
		return cmd, ok, err
	}

	n, err := t.Read(c.rbuf)
	if n == 0 {
		if err != nil {
			return Command{}, false, fmt.Errorf("command: read: %w", err)
		}
		return Command{}, false, nil
	}
	c.line = append(c.line, c.rbuf[:n]...)
	return c.nextLine()
}

func (c *Channel) nextLine() (Command, bool, error) {
	for {
		i := bytes.IndexAny(c.line, "\r\n")
		if i < 0 {
			switch {
			case c.discarding:
				c.line = c.line[:0]
			case len(c.line) > c.opts.MaxLine:
				c.line = c.line[:0]
				c.discarding = true
				return Command{}, false, ErrLineTooLong
			}
			return Command{}, false, nil
		}

		raw := c.line[:i]
		var (
			cmd Command
			ok  bool
			err error
		)
		switch {
		case c.discarding:
			c.discarding = false
		case len(raw) == 0:
			// bare terminator, e.g. the second half of CRLF
		case len(raw) > c.opts.MaxLine:
			err = ErrLineTooLong
		default:
			cmd, ok, err = c.decode(raw)
		}
		c.line = c.line[:copy(c.line, c.line[i+1:])]
		if ok || err != nil {
			return cmd, ok, err
		}
	}
}

func (c *Channel) decode(b []byte) (Command, bool, error) {
	if !utf8.Valid(b) {
		return Command{}, false, ErrInvalidEncoding
	}
	return c.opts.Vocabulary.Parse(string(b)), true, nil
}
