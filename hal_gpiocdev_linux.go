//go:build linux

package main

// Linux GPIO character device implementation of the HAL.  Unlike the periph
// driver, lines requested here are owned by the process: the kernel refuses
// a second request for the same line until Release closes it.

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const chardevConsumer = "growbox"

type chardevDriver struct {
	chip string
}

func newChardevDriver(chip string) (*chardevDriver, error) {
	if chip == "" {
		chip = "gpiochip0"
	}
	return &chardevDriver{chip: chip}, nil
}

func (*chardevDriver) Name() string { return "gpiocdev" }

func (d *chardevDriver) Claim(pin int) (OutputPin, error) {
	line, err := gpiocdev.RequestLine(d.chip, pin,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(chardevConsumer))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", d.chip, pin, err)
	}
	return &chardevPin{line: line}, nil
}

type chardevPin struct {
	line *gpiocdev.Line
}

func (cp *chardevPin) Write(level Level) error {
	v := 0
	if level == High {
		v = 1
	}
	return cp.line.SetValue(v)
}

func (cp *chardevPin) Release() error {
	// Leave the line as an input so the load is not held by a stale output
	// after we close it.  The close still happens if this fails.
	rerr := cp.line.Reconfigure(gpiocdev.AsInput)
	if err := cp.line.Close(); err != nil {
		return err
	}
	return rerr
}
