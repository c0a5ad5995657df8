package main

import (
	"errors"
	"fmt"
	"sync"
)

// fakeDriver keeps pin levels in memory.  It is used when running the server
// without GPIO hardware and as the fault-injectable collaborator in tests.
type fakeDriver struct {
	mu   sync.Mutex
	pins map[int]*fakePin

	claimErr   map[int]error
	writeErr   map[int]error
	releaseErr map[int]error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		pins:     make(map[int]*fakePin),
		claimErr:   make(map[int]error),
		writeErr:   make(map[int]error),
		releaseErr: make(map[int]error),
	}
}

func (*fakeDriver) Name() string { return "fake" }

func (d *fakeDriver) Claim(pin int) (OutputPin, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.claimErr[pin]; err != nil {
		return nil, err
	}
	if p, ok := d.pins[pin]; ok && p.claimed {
		return nil, fmt.Errorf("pin %d already claimed", pin)
	}
	p := &fakePin{d: d, pin: pin, claimed: true}
	d.pins[pin] = p
	return p, nil
}

// FailClaim makes the next claims of pin fail with err.  A nil err clears it.
func (d *fakeDriver) FailClaim(pin int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claimErr[pin] = err
}

// FailWrite makes writes to pin fail with err until cleared with nil.
func (d *fakeDriver) FailWrite(pin int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr[pin] = err
}

// FailRelease makes releasing pin fail with err; the pin stays claimed.
func (d *fakeDriver) FailRelease(pin int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseErr[pin] = err
}

// PinLevel reports the physical level of pin and whether it is claimed.
func (d *fakeDriver) PinLevel(pin int) (level Level, claimed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pins[pin]
	if !ok {
		return Low, false
	}
	return p.level, p.claimed
}

// Writes returns the number of successful writes to pin.
func (d *fakeDriver) Writes(pin int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pins[pin]; ok {
		return p.writes
	}
	return 0
}

var errFakeReleased = errors.New("pin not claimed")

type fakePin struct {
	d       *fakeDriver
	pin     int
	level   Level
	claimed bool
	writes  int
}

func (p *fakePin) Write(level Level) error {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	if !p.claimed {
		return errFakeReleased
	}
	if err := p.d.writeErr[p.pin]; err != nil {
		return err
	}
	p.level = level
	p.writes++
	return nil
}

func (p *fakePin) Release() error {
	p.d.mu.Lock()
	defer p.d.mu.Unlock()
	if !p.claimed {
		return errFakeReleased
	}
	if err := p.d.releaseErr[p.pin]; err != nil {
		return err
	}
	p.claimed = false
	p.level = Low
	return nil
}
