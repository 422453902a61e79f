// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/relabs-tech/orientation_node/internal/serialport"
)

// RunConsole opens the node's serial link from the host side and relays
// commands typed on stdin, printing every response line.
func RunConsole(port string, baud int) error {
	link, err := serialport.Open(port, baud)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	defer link.Close()
	log.Printf("console: connected to %s at %d baud (commands: ping, tick, gyro)", port, baud)

	rw := struct {
		io.Reader
		io.Writer
	}{serialport.Waiting(link), link}
	return relayConsole(rw, os.Stdin, os.Stdout)
}

// relayConsole copies lines from in to link and responses from link to out.
// It returns when in is exhausted.
func relayConsole(link io.ReadWriter, in io.Reader, out io.Writer) error {
	go func() {
		sc := bufio.NewScanner(link)
		for sc.Scan() {
			fmt.Fprintf(out, "< %s\n", sc.Text())
		}
		if err := sc.Err(); err != nil {
			log.Printf("console: read error: %v", err)
		}
	}()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if _, err := io.WriteString(link, line+"\n"); err != nil {
			return fmt.Errorf("console: write: %w", err)
		}
	}
	return sc.Err()
}
