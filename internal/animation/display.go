// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package animation

import (
	"fmt"
	"image"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/parallax/internal/motion"
)

const (
	displayW   = 128
	displayH   = 64
	lineHeight = 13

	// address the periph driver always uses
	defaultSSD1306Addr uint16 = 0x3C
)

// Drawer is the part of a display the animator needs. *ssd1306.Dev
// satisfies it.
type Drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// DisplayAnimator draws each element's label on a monochrome OLED, shifted
// by its current translation. Elements are stacked in rows by name.
type DisplayAnimator struct {
	dev   Drawer
	scale float64
	now   func() time.Time

	mu     sync.Mutex
	tracks map[string]*Track
	dirty  bool
}

// NewDisplayAnimator renders onto dev; scale converts translation units to
// pixels.
func NewDisplayAnimator(dev Drawer, scale float64) *DisplayAnimator {
	if scale <= 0 {
		scale = 1
	}
	return &DisplayAnimator{
		dev:    dev,
		scale:  scale,
		now:    time.Now,
		tracks: make(map[string]*Track),
	}
}

// addrBus redirects every transaction to a fixed address so the display
// can sit somewhere other than the driver's default.
type addrBus struct {
	i2c.BusCloser
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error {
	return b.BusCloser.Tx(b.addr, w, r)
}

// displayBus returns the bus the driver should talk through and the address
// it will end up on. Zero means the driver default.
func displayBus(bus i2c.BusCloser, addr uint16) (i2c.Bus, uint16) {
	if addr == 0 || addr == defaultSSD1306Addr {
		return bus, defaultSSD1306Addr
	}
	return addrBus{BusCloser: bus, addr: addr}, addr
}

// OpenSSD1306 initializes periph and opens the OLED on the given I2C bus
// ("" picks the first one). The returned closer releases the bus.
func OpenSSD1306(busName string, addr uint16) (*ssd1306.Dev, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}
	b, addr := displayBus(bus, addr)
	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(b, &opts)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", addr)
	return dev, bus.Close, nil
}

func (d *DisplayAnimator) Animate(t motion.Translation) {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	tr, ok := d.tracks[t.Element]
	if !ok {
		tr = &Track{Start: now}
		d.tracks[t.Element] = tr
	}
	tr.Retarget(now, t)
	d.dirty = true
}

// Frame renders the current state into a fresh image.
func (d *DisplayAnimator) Frame() *image1bit.VerticalLSB {
	now := d.now()
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	d.mu.Lock()
	names := make([]string, 0, len(d.tracks))
	for name := range d.tracks {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		d.mu.Unlock()
		drawer.Dot = fixed.P(5, 26)
		drawer.DrawBytes([]byte("Parallax"))
		drawer.Dot = fixed.P(5, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	rows := displayH / lineHeight
	for i, name := range names {
		if i >= rows {
			break
		}
		x, y := d.tracks[name].Sample(now)
		px := 8 + int(x*d.scale)
		py := lineHeight*(i+1) - 2 + int(y*d.scale)
		drawer.Dot = fixed.P(px, py)
		drawer.DrawBytes([]byte(name))
	}
	d.mu.Unlock()
	return img
}

// animating reports whether a frame is needed and clears the dirty flag
// once every track has settled.
func (d *DisplayAnimator) animating() bool {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return false
	}
	for _, tr := range d.tracks {
		if !tr.Done(now) {
			return true
		}
	}
	// one last frame at the destination
	d.dirty = false
	return true
}

// Run redraws the display every interval while something moves, until stop
// is closed.
func (d *DisplayAnimator) Run(interval time.Duration, stop <-chan struct{}) {
	if err := d.dev.Draw(d.dev.Bounds(), d.Frame(), image.Point{}); err != nil {
		log.Printf("display: error drawing splash: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !d.animating() {
				continue
			}
			if err := d.dev.Draw(d.dev.Bounds(), d.Frame(), image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}
