package midi

import (
	"sync/atomic"

	"github.com/florimondmanca/obs-midi/internal/lifecycle"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// Activity is the MidiInput component: it opens a port via an injected
// opener, signals readiness on the shared start barrier, and blocks
// until torn down. Incoming messages are dropped until SetHandler
// installs a consumer — the Supervisor only does so once the
// Initializer has finished populating the TriggerTable, so MIDI
// activity observed before that point is structurally discarded rather
// than buffered (spec §5 ordering guarantee).
type Activity struct {
	opener   contracts.MidiInputOpener
	portName string
	logger   contracts.Logger

	barrier     *lifecycle.StartBarrier
	closeSignal *lifecycle.CloseSignal

	handler      atomic.Value // func(contracts.MidiMessage)
	resolvedName atomic.Value // string
}

// Config bundles the construction parameters for an Activity.
type Config struct {
	Opener      contracts.MidiInputOpener
	PortName    string
	Logger      contracts.Logger
	Barrier     *lifecycle.StartBarrier
	CloseSignal *lifecycle.CloseSignal
}

func noopHandler(contracts.MidiMessage) {}

// New builds an Activity. SetHandler must be called to begin delivering
// messages; before that, every incoming message is dropped.
func New(cfg Config) *Activity {
	a := &Activity{
		opener:      cfg.Opener,
		portName:    cfg.PortName,
		logger:      cfg.Logger,
		barrier:     cfg.Barrier,
		closeSignal: cfg.CloseSignal,
	}
	a.handler.Store(func(contracts.MidiMessage) {})
	return a
}

// SetHandler installs h as the consumer of every subsequent MIDI
// message. Safe to call concurrently with message delivery.
func (a *Activity) SetHandler(h func(contracts.MidiMessage)) {
	a.handler.Store(h)
}

// PortName returns the MIDI input port name actually bound. It is set
// as soon as Run has opened the port; before that, or if the open
// failed, it returns "".
func (a *Activity) PortName() string {
	name, _ := a.resolvedName.Load().(string)
	return name
}

func (a *Activity) dispatch(msg contracts.MidiMessage) {
	h, _ := a.handler.Load().(func(contracts.MidiMessage))
	if h == nil {
		h = noopHandler
	}
	h(msg)
}

// Run opens the port, arrives at the start barrier, and blocks until
// the close signal fires, then releases the port. pushErr reports a
// fatal error (the open failed) to the supervisor's error bucket.
func (a *Activity) Run(pushErr func(error)) {
	scope, err := a.opener.Open(a.portName, a.dispatch)
	if err != nil {
		pushErr(err)
		a.barrier.Abort()
		a.closeSignal.Set()
		return
	}
	a.resolvedName.Store(scope.PortName())
	defer func() {
		if err := scope.Close(); err != nil {
			a.logger.Warn("error releasing midi input port", a.logger.Field().Error("error", err))
		}
	}()

	a.barrier.Arrive()
	if err := a.barrier.Wait(); err != nil {
		// A peer aborted the barrier; teardown is already underway.
		return
	}

	<-a.closeSignal.Done()
}
