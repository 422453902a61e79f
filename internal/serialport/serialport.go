// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialport opens the command link and exposes it to the control
// loop without blocking.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// ErrClosed is returned by Shared after Close.
var ErrClosed = errors.New("serialport: closed")

// ReadTimeout bounds how long a read on an opened port waits for data.
// An idle read returns 0, io.EOF.
const ReadTimeout = 100 * time.Millisecond

// idleBackoff spaces retries when a port reports EOF without waiting.
const idleBackoff = 10 * time.Millisecond

// Open opens name as 8N1. Reads return what arrived, or 0, io.EOF after
// ReadTimeout with nothing received.
func Open(name string, baud int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              name,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: uint(ReadTimeout / time.Millisecond),
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", name, err)
	}
	log.Printf("serialport: opened %s at %d baud", name, baud)
	return port, nil
}

// Shared owns a port whose reads block for a bounded time; io.EOF from the
// port means nothing arrived. A background goroutine moves received bytes
// into a bounded buffer; Read drains that buffer without blocking. The mutex
// is the only state shared between the goroutine and the caller.
type Shared struct {
	port  io.ReadWriteCloser
	limit int

	mu      sync.Mutex
	buf     []byte
	err     error
	closed  bool
	dropped int

	done chan struct{}
}

// NewShared starts servicing port. At most limit unread bytes are kept;
// anything beyond that is dropped, as a full device FIFO would.
func NewShared(port io.ReadWriteCloser, limit int) *Shared {
	if limit <= 0 {
		limit = 1024
	}
	s := &Shared{
		port:  port,
		limit: limit,
		buf:   make([]byte, 0, limit),
		done:  make(chan struct{}),
	}
	go s.service()
	return s
}

func (s *Shared) service() {
	defer close(s.done)
	tmp := make([]byte, 64)
	for {
		n, err := s.port.Read(tmp)
		idle := n == 0 && errors.Is(err, io.EOF)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if n > 0 {
			room := s.limit - len(s.buf)
			if n > room {
				s.dropped += n - room
				n = room
			}
			s.buf = append(s.buf, tmp[:n]...)
		}
		if err != nil && !idle {
			s.err = err
		}
		s.mu.Unlock()

		switch {
		case idle:
			time.Sleep(idleBackoff)
		case err != nil:
			return
		}
	}
}

// Read copies pending bytes into p and returns immediately. Once the
// servicing goroutine has stopped and the buffer is empty it returns the
// error that stopped it.
func (s *Shared) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	n := copy(p, s.buf)
	s.buf = s.buf[:copy(s.buf, s.buf[n:])]
	if n == 0 && s.err != nil {
		return 0, s.err
	}
	return n, nil
}

// Write writes p to the port from the caller's goroutine.
func (s *Shared) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}
	return s.port.Write(p)
}

// Dropped reports how many received bytes were discarded because the
// buffer was full.
func (s *Shared) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close closes the port and waits for the servicing goroutine to exit, which
// takes at most one ReadTimeout on a port opened with Open.
func (s *Shared) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.port.Close()
	<-s.done
	return err
}

// Waiting wraps a port from Open so that Read waits through idle timeouts
// instead of returning io.EOF. For callers that want blocking reads.
func Waiting(port io.Reader) io.Reader {
	return waitingReader{r: port}
}

type waitingReader struct {
	r io.Reader
}

func (w waitingReader) Read(p []byte) (int, error) {
	for {
		n, err := w.r.Read(p)
		if n > 0 || !errors.Is(err, io.EOF) {
			return n, err
		}
		time.Sleep(idleBackoff)
	}
}
