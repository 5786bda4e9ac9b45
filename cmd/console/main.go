// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/parallax/internal/app"
)

func main() {
	targets := flag.String("targets", "", "YAML target layout (default: built-in demo layout)")
	flag.Parse()

	log.Println("starting parallax (mock console)")

	if err := app.RunMockConsole(*targets); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
