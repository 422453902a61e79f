// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package command turns bytes from the serial link into commands.
package command

import "fmt"

// Kind identifies a command.
type Kind uint8

const (
	Unrecognized Kind = iota
	Ping
	ReportClock
	ReportOrientation
)

func (k Kind) String() string {
	switch k {
	case Unrecognized:
		return "Unrecognized"
	case Ping:
		return "Ping"
	case ReportClock:
		return "ReportClock"
	case ReportOrientation:
		return "ReportOrientation"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is one received line. Text is the decoded line without its
// terminator.
type Command struct {
	Kind Kind
	Text string
}

func (c Command) String() string {
	if c.Kind == Unrecognized {
		return fmt.Sprintf("Unrecognized(%q)", c.Text)
	}
	return c.Kind.String()
}

// Vocabulary maps exact, case-sensitive lines to command kinds.
type Vocabulary map[string]Kind

// DefaultVocabulary is the command set of a node with a running clock.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		"ping": Ping,
		"tick": ReportClock,
		"gyro": ReportOrientation,
	}
}

// WithoutClock returns a copy of v without the clock report.
func (v Vocabulary) WithoutClock() Vocabulary {
	out := make(Vocabulary, len(v))
	for line, k := range v {
		if k != ReportClock {
			out[line] = k
		}
	}
	return out
}

// Parse matches line against the vocabulary.
func (v Vocabulary) Parse(line string) Command {
	if k, ok := v[line]; ok {
		return Command{Kind: k, Text: line}
	}
	return Command{Kind: Unrecognized, Text: line}
}
