// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"

	"github.com/relabs-tech/parallax/internal/animation"
	"github.com/relabs-tech/parallax/internal/config"
	"github.com/relabs-tech/parallax/internal/lifecycle"
	"github.com/relabs-tech/parallax/internal/motion"
	"github.com/relabs-tech/parallax/internal/sensors"
)

var demoTargets = []config.Target{
	{Element: "background", MaxTranslation: 20},
	{Element: "middle", MaxTranslation: 40},
	{Element: "foreground", MaxTranslation: 60},
}

// RunMockConsole drives the helper from the mock sensor and prints every
// translation. It needs no broker and no hardware. targetsFile may be empty.
func RunMockConsole(targetsFile string) error {
	targets := demoTargets
	if targetsFile != "" {
		t, err := config.LoadTargets(targetsFile)
		if err != nil {
			return err
		}
		targets = t
	}

	reg := lifecycle.NewRegistry()
	h := motion.New(reg, sensors.NewMockService(), animation.LogAnimator{Prefix: "console: "})
	for _, t := range targets {
		h.RegisterTarget(t.Element, t.MaxTranslation)
	}

	stop := lifecycle.NotifyOS(reg)
	defer stop()

	log.Printf("console: %d targets, SIGUSR1 pauses, SIGUSR2 resumes, Ctrl+C quits", len(targets))
	reg.Handle(lifecycle.Resume)
	<-reg.Done()
	log.Println("console: shutting down")
	return nil
}
