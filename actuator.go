package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Actuator is a device switched by a single digital output.  The mutex is
// held across the hardware write so that two commands to the same actuator
// never interleave, and level is only updated after a successful write.
type Actuator struct {
	Name ActuatorName
	Pin  int

	mu    sync.Mutex
	out   OutputPin
	level Level
}

// Level returns the last level successfully written to the pin.
func (a *Actuator) Level() Level {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.level
}

func (a *Actuator) set(level Level) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.out == nil {
		return &HardwareWriteError{Actuator: a.Name, Pin: a.Pin, Level: level, Err: errors.New("pin released")}
	}
	if err := a.out.Write(level); err != nil {
		return &HardwareWriteError{Actuator: a.Name, Pin: a.Pin, Level: level, Err: err}
	}
	a.level = level
	return nil
}

func (a *Actuator) release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.out == nil {
		return nil
	}
	err := a.out.Release()
	a.out = nil
	a.level = Low
	return err
}

// PinController owns the pump and light outputs.  It is built once at startup
// and handed to the HTTP server; nothing else touches the pins.
type PinController struct {
	driver    PinDriver
	actuators map[ActuatorName]*Actuator
}

// NewPinController claims every actuator's pin as an output.  If any claim
// fails, the pins claimed so far are released and a *HardwareInitError is
// returned.
func NewPinController(driver PinDriver, pins PinsConfig) (*PinController, error) {
	pc := &PinController{
		driver:    driver,
		actuators: make(map[ActuatorName]*Actuator, len(actuatorNames)),
	}
	for _, name := range actuatorNames {
		pin, err := pins.pinFor(name)
		if err != nil {
			pc.Shutdown()
			return nil, err
		}
		out, err := driver.Claim(pin)
		if err != nil {
			pc.Shutdown()
			return nil, &HardwareInitError{Actuator: name, Pin: pin, Err: err}
		}
		pc.actuators[name] = &Actuator{Name: name, Pin: pin, out: out, level: Low}
		log.Debug().Str("actuator", string(name)).Int("pin", pin).Str("driver", driver.Name()).Msg("Claimed output pin")
	}
	return pc, nil
}

// Actuator returns the named actuator.
func (pc *PinController) Actuator(name ActuatorName) (*Actuator, error) {
	a, ok := pc.actuators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActuator, name)
	}
	return a, nil
}

// Set drives the named actuator to level.  Setting the level it already has
// writes it again and leaves it unchanged.  A failed write is returned as a
// *HardwareWriteError and does not change the recorded level.
func (pc *PinController) Set(name ActuatorName, level Level) error {
	a, err := pc.Actuator(name)
	if err != nil {
		return err
	}
	return a.set(level)
}

// Level returns the recorded level of the named actuator.
func (pc *PinController) Level(name ActuatorName) (Level, error) {
	a, err := pc.Actuator(name)
	if err != nil {
		return Low, err
	}
	return a.Level(), nil
}

// Shutdown releases every claimed pin.  Errors are logged and swallowed; it
// is safe to call more than once.
func (pc *PinController) Shutdown() {
	for _, name := range actuatorNames {
		a, ok := pc.actuators[name]
		if !ok {
			continue
		}
		if err := a.release(); err != nil {
			log.Warn().Err(err).Str("actuator", string(name)).Int("pin", a.Pin).Msg("Failed to release pin")
			continue
		}
		log.Debug().Str("actuator", string(name)).Int("pin", a.Pin).Msg("Released pin")
	}
}
