package main

import "fmt"

// ActuatorName identifies one of the two physical devices driven by the box.
type ActuatorName string

const (
	Pump  ActuatorName = "pump"
	Light ActuatorName = "light"
)

// actuatorNames lists every actuator in claim order.
var actuatorNames = []ActuatorName{Pump, Light}

// Level is the logic level of a digital output pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// String returns "HIGH" or "LOW".
func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// PinsConfig maps each actuator to its GPIO pin (BCM numbering for the
// periph driver, line offset for gpiocdev).
type PinsConfig struct {
	Pump  int `yaml:"pump"`
	Light int `yaml:"light"`
}

// pinFor returns the configured pin of the named actuator.
func (p PinsConfig) pinFor(name ActuatorName) (int, error) {
	switch name {
	case Pump:
		return p.Pump, nil
	case Light:
		return p.Light, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownActuator, name)
}
