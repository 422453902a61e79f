// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/relabs-tech/orientation_node/internal/app"
)

func main() {
	port := flag.String("port", "/dev/ttyACM0", "serial device of the node")
	baud := flag.Int("baud", 115200, "baud rate")
	flag.Parse()

	log.Println("starting orientation console (serial host)")

	if err := app.RunConsole(*port, *baud); err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
}
