//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/florimondmanca/obs-midi/internal/midi/midiportable"
	"github.com/florimondmanca/obs-midi/internal/midi/midiwire"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// HMIDIIN is a native winmm MIDI input device handle.
type HMIDIIN windows.Handle

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020
	mimData          = 0x3C3
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Opener binds winmm MIDI input devices. winmm has no virtual-port
// concept, so an unnamed-port request is handed to the portable rtmidi
// fallback instead (spec §4.3, §9).
type Opener struct {
	logger   contracts.Logger
	fallback *midiportable.Opener
}

// New builds a winmm-backed Opener. clientName is accepted for
// signature parity with the darwin backend but unused: winmm devices
// carry no client identity concept.
func New(logger contracts.Logger, clientName string) *Opener {
	return &Opener{logger: logger, fallback: midiportable.New(logger)}
}

// ListPorts enumerates winmm device names.
func (o *Opener) ListPorts() ([]string, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	names := make([]string, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			continue
		}
		names = append(names, windows.UTF16ToString(caps.szPname[:]))
	}
	return names, nil
}

func (o *Opener) Open(portName string, onMessage func(contracts.MidiMessage)) (contracts.Scope, error) {
	if portName == "" {
		return o.fallback.Open("", onMessage)
	}

	names, err := o.ListPorts()
	if err != nil {
		return nil, err
	}
	deviceID := -1
	for i, name := range names {
		if name == portName {
			deviceID = i
			break
		}
	}
	if deviceID < 0 {
		return nil, fmt.Errorf("midi input device %q not found", portName)
	}

	s := &scope{onMessage: onMessage, name: portName}
	callback := windows.NewCallback(s.handleMessage)

	r1, _, callErr := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		uintptr(deviceID),
		callback,
		0,
		uintptr(callbackFunction|midiIOStatus),
	)
	if r1 != 0 {
		return nil, fmt.Errorf("opening midi input device %q: %v", portName, callErr)
	}

	if r1, _, callErr := procMidiInStart.Call(uintptr(s.handle)); r1 != 0 {
		return nil, fmt.Errorf("starting midi capture on %q: %v", portName, callErr)
	}

	o.logger.Info("opened MIDI input port", o.logger.Field().String("port", portName))
	return s, nil
}

type scope struct {
	handle    HMIDIIN
	onMessage func(contracts.MidiMessage)
	name      string

	mu     sync.Mutex
	closed bool
}

func (s *scope) PortName() string {
	return s.name
}

// handleMessage is the winmm MIDI input callback. wMsg carries the
// event kind; for MIM_DATA, dwParam1 packs status+data1+data2 little-
// endian in its low 24 bits.
func (s *scope) handleMessage(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	if wMsg != mimData {
		return 0
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0
	}

	status := byte(dwParam1 & 0xFF)
	data1 := byte((dwParam1 >> 8) & 0xFF)
	data2 := byte((dwParam1 >> 16) & 0xFF)
	s.onMessage(midiwire.Decode(status, data1, data2))
	return 0
}

func (s *scope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_, _, _ = procMidiInStop.Call(uintptr(s.handle))
	_, _, _ = procMidiInClose.Call(uintptr(s.handle))
	return nil
}
