// Package midiportable implements contracts.MidiInputOpener on top of
// gitlab.com/gomidi/midi/v2 and its rtmidi driver. Unlike the darwin and
// windows backends it can create a virtual port, so it is both the
// default backend on every other platform and the fallback the other
// two reach for when asked to create one (spec §4.3).
package midiportable

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/florimondmanca/obs-midi/internal/midi/midiwire"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// virtualPortName is the port name a virtual port is created under when
// no explicit port is requested. The client name is left to the
// registered rtmidi driver; this package does not set it.
const virtualPortName = "Midi In"

// Opener is the rtmidi-backed MidiInputOpener.
type Opener struct {
	logger contracts.Logger
}

// New builds an Opener. logger must be non-nil.
func New(logger contracts.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) rtDriver() (*rtmididrv.Driver, error) {
	drv, ok := drivers.Get().(*rtmididrv.Driver)
	if !ok {
		return nil, fmt.Errorf("rtmididrv driver not registered")
	}
	return drv, nil
}

// ListPorts enumerates every named input port rtmidi can see. A virtual
// port, being created on demand, never appears here.
func (o *Opener) ListPorts() ([]string, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing midi input ports: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// Open binds portName, or creates a virtual "Midi In" port when
// portName is empty.
func (o *Opener) Open(portName string, onMessage func(contracts.MidiMessage)) (contracts.Scope, error) {
	var in drivers.In

	resolvedName := portName

	if portName == "" {
		drv, err := o.rtDriver()
		if err != nil {
			return nil, err
		}
		in, err = drv.OpenVirtualIn(virtualPortName)
		if err != nil {
			return nil, fmt.Errorf("creating virtual midi input %q: %w", virtualPortName, err)
		}
		resolvedName = virtualPortName
		o.logger.Info("created virtual MIDI input port", o.logger.Field().String("port", virtualPortName))
	} else {
		ins, err := drivers.Ins()
		if err != nil {
			return nil, fmt.Errorf("listing midi input ports: %w", err)
		}
		for _, candidate := range ins {
			if candidate.String() == portName {
				in = candidate
				break
			}
		}
		if in == nil {
			return nil, fmt.Errorf("midi input port %q not found", portName)
		}
		if err := in.Open(); err != nil {
			return nil, fmt.Errorf("opening midi input port %q: %w", portName, err)
		}
		o.logger.Info("opened MIDI input port", o.logger.Field().String("port", portName))
	}

	stop, err := in.Listen(func(msg []byte, _ int32) {
		if len(msg) < 2 {
			return
		}
		var data2 byte
		if len(msg) >= 3 {
			data2 = msg[2]
		}
		onMessage(midiwire.Decode(msg[0], msg[1], data2))
	}, drivers.ListenConfig{})
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listening on midi input %q: %w", portName, err)
	}

	return &scope{in: in, stop: stop, name: resolvedName}, nil
}

type scope struct {
	mu     sync.Mutex
	in     drivers.In
	stop   func()
	closed bool
	name   string
}

func (s *scope) PortName() string {
	return s.name
}

func (s *scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.stop != nil {
		s.stop()
	}
	return s.in.Close()
}
