//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// ErrUnsupportedPlatform is returned by every Opener method on a
// non-windows build; the factory never constructs this Opener outside
// windows, but the package must still compile everywhere.
var ErrUnsupportedPlatform = errors.New("midiwindows: unsupported platform")

type Opener struct {
	logger contracts.Logger
}

func New(logger contracts.Logger, clientName string) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) Open(portName string, onMessage func(contracts.MidiMessage)) (contracts.Scope, error) {
	return nil, ErrUnsupportedPlatform
}

func (o *Opener) ListPorts() ([]string, error) {
	return nil, ErrUnsupportedPlatform
}
