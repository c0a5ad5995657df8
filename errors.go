package main

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownActuator is returned for an actuator name outside pump/light.
	ErrUnknownActuator = errors.New("unknown actuator")
	// ErrUnknownDriver is returned when gpio.driver names no known driver.
	ErrUnknownDriver = errors.New("unknown gpio driver")
)

// HardwareInitError reports that an actuator's pin could not be claimed as an
// output at startup.  The process must not serve requests after this.
type HardwareInitError struct {
	Actuator ActuatorName
	Pin      int
	Err      error
}

func (e *HardwareInitError) Error() string {
	return fmt.Sprintf("hardware init failed: %s (pin %d): %v", e.Actuator, e.Pin, e.Err)
}

func (e *HardwareInitError) Unwrap() error { return e.Err }

// HardwareWriteError reports a failed level change.  The actuator keeps the
// level it had before the call.
type HardwareWriteError struct {
	Actuator ActuatorName
	Pin      int
	Level    Level
	Err      error
}

func (e *HardwareWriteError) Error() string {
	return fmt.Sprintf("hardware write failed: %s: %v", e.Actuator, e.Err)
}

func (e *HardwareWriteError) Unwrap() error { return e.Err }
