//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/youpy/go-coremidi"

	"github.com/florimondmanca/obs-midi/internal/midi/midiportable"
	"github.com/florimondmanca/obs-midi/internal/midi/midiwire"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// ErrPortNotFound is returned when an explicitly named port does not
// appear among the CoreMIDI sources.
var ErrPortNotFound = errors.New("midi input port not found")

// Opener binds CoreMIDI hardware sources. go-coremidi exposes no
// virtual-source API, so a request for an unnamed port is handed to the
// portable rtmidi fallback instead (spec §4.3, §9).
type Opener struct {
	logger     contracts.Logger
	clientName string
	fallback   *midiportable.Opener
}

// New builds a CoreMIDI-backed Opener. clientName is the CoreMIDI
// client identifier used when connecting to real hardware sources.
func New(logger contracts.Logger, clientName string) *Opener {
	return &Opener{logger: logger, clientName: clientName, fallback: midiportable.New(logger)}
}

// ListPorts enumerates CoreMIDI source names.
func (o *Opener) ListPorts() ([]string, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("listing coremidi sources: %w", err)
	}
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return names, nil
}

func (o *Opener) Open(portName string, onMessage func(contracts.MidiMessage)) (contracts.Scope, error) {
	if portName == "" {
		return o.fallback.Open("", onMessage)
	}

	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("listing coremidi sources: %w", err)
	}

	var source *coremidi.Source
	for i := range sources {
		if sources[i].Name() == portName {
			source = &sources[i]
			break
		}
	}
	if source == nil {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, portName)
	}

	client, err := coremidi.NewClient(o.clientName)
	if err != nil {
		return nil, fmt.Errorf("creating coremidi client: %w", err)
	}

	var mu sync.Mutex
	inputPort, err := coremidi.NewInputPort(client, "Input Port", func(_ coremidi.Source, packet coremidi.Packet) {
		if len(packet.Data) < 2 {
			return
		}
		var data2 byte
		if len(packet.Data) >= 3 {
			data2 = packet.Data[2]
		}
		mu.Lock()
		defer mu.Unlock()
		onMessage(midiwire.Decode(packet.Data[0], packet.Data[1], data2))
	})
	if err != nil {
		return nil, fmt.Errorf("creating coremidi input port: %w", err)
	}

	conn, err := inputPort.Connect(*source)
	if err != nil {
		return nil, fmt.Errorf("connecting coremidi input port to %q: %w", portName, err)
	}

	o.logger.Info("opened MIDI input port", o.logger.Field().String("port", portName))
	return &scope{conn: conn, name: portName}, nil
}

type portConnection interface {
	Disconnect()
}

type scope struct {
	conn portConnection
	name string
}

func (s *scope) PortName() string {
	return s.name
}

func (s *scope) Close() error {
	s.conn.Disconnect()
	return nil
}
