package main

// Raspberry Pi implementation of the HAL using the periph.io library.  Pins
// are addressed by their BCM numbers.

import (
	"fmt"

	// Use the new periph module layout.  See https://periph.io/news/2020/a_new_start/
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type periphDriver struct{}

// newPeriphDriver initialises periph host state.  host.Init can safely be
// called multiple times; subsequent calls are no-ops.
func newPeriphDriver() (*periphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &periphDriver{}, nil
}

func (*periphDriver) Name() string { return "periph" }

func (*periphDriver) Claim(pin int) (OutputPin, error) {
	name := fmt.Sprintf("GPIO%d", pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %s", name)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("set %s as output: %w", name, err)
	}
	return &periphPin{p: p}, nil
}

type periphPin struct {
	p gpio.PinIO
}

func (pp *periphPin) Write(level Level) error {
	l := gpio.Low
	if level == High {
		l = gpio.High
	}
	return pp.p.Out(l)
}

// Release switches the pin back to a floating input, which is what the pin
// looks like after boot, and halts any pending operation on it.
func (pp *periphPin) Release() error {
	if err := pp.p.In(gpio.Float, gpio.NoEdge); err != nil {
		return err
	}
	return pp.p.Halt()
}
