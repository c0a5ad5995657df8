//go:build !linux

package main

import (
	"errors"
	"fmt"
	"runtime"
)

var errChardevUnsupported = errors.New("gpio character device requires linux")

type chardevDriver struct{}

func newChardevDriver(string) (*chardevDriver, error) {
	return nil, fmt.Errorf("%w (running on %s)", errChardevUnsupported, runtime.GOOS)
}

func (*chardevDriver) Name() string { return "gpiocdev" }

func (*chardevDriver) Claim(int) (OutputPin, error) { return nil, errChardevUnsupported }
