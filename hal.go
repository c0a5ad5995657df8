package main

// This file defines the hardware abstraction layer (HAL) for the output pins.
// The pin controller never talks to a GPIO library directly: it claims pins
// through a PinDriver and drives them through the returned OutputPin, so that
// the web server can run on a desktop machine (driver "fake") and the
// handlers can be tested without a Raspberry Pi.

import (
	"fmt"
	"strings"
)

// PinDriver gives access to the host's digital outputs.
type PinDriver interface {
	// Name returns the configuration name of the driver.
	Name() string
	// Claim configures pin as a digital output driving LOW and returns a
	// handle to it.  Failing here means the hardware is unavailable.
	Claim(pin int) (OutputPin, error)
}

// OutputPin is a claimed digital output.
type OutputPin interface {
	Write(level Level) error
	// Release returns the pin to a safe state and gives it back to the host.
	Release() error
}

// newDriver constructs the driver selected by cfg.Driver.
func newDriver(cfg GPIOConfig) (PinDriver, error) {
	switch strings.ToLower(cfg.Driver) {
	case "periph":
		d, err := newPeriphDriver()
		if err != nil {
			return nil, err
		}
		return d, nil
	case "gpiocdev":
		d, err := newChardevDriver(cfg.Chip)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "fake":
		return newFakeDriver(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
