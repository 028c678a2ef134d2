// Package supervisor wires the MidiInput, ObsClient, TriggerTable,
// ObsEventPump and Initializer components together and drives the
// bridge's startup, steady-state, and teardown lifecycle (spec §2, §4.6).
package supervisor

import (
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/florimondmanca/obs-midi/internal/eventpump"
	"github.com/florimondmanca/obs-midi/internal/initializer"
	"github.com/florimondmanca/obs-midi/internal/lifecycle"
	"github.com/florimondmanca/obs-midi/internal/logger"
	"github.com/florimondmanca/obs-midi/internal/midi"
	"github.com/florimondmanca/obs-midi/internal/obsclient"
	"github.com/florimondmanca/obs-midi/internal/trigger"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

const (
	defaultReconnectDelay = 2 * time.Second
	defaultPollInterval   = 200 * time.Millisecond
	defaultObsHost        = "localhost"

	// startupPollInterval is how often Run checks initializer.IsDone
	// while waiting for the discovery walk to finish.
	startupPollInterval = 5 * time.Millisecond
)

func applyDefaultOptions(opts ...contracts.Option) *contracts.SupervisorOptions {
	o := &contracts.SupervisorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = logger.NewZapLogger()
	}
	o.Logger.SetLevel(o.LogLevel)
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = defaultReconnectDelay
	}
	if o.PollInterval == 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.ObsHost == "" {
		o.ObsHost = defaultObsHost
	}
	return o
}

// errorBucket aggregates errors pushed concurrently by supervised
// activities during startup and runtime (spec §7).
type errorBucket struct {
	mu  sync.Mutex
	err error
}

func (b *errorBucket) push(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = multierr.Append(b.err, err)
}

func (b *errorBucket) drain() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.err
	b.err = nil
	return err
}

// Run is the bridge's entry point. It returns nil on a cooperative
// shutdown (closeSignal was set, whether externally or via Ctrl-C
// wiring done by the caller) and a non-nil, possibly aggregate, error
// on any fatal condition reaching the top level (spec §7).
func Run(closeSignal *lifecycle.CloseSignal, opts ...contracts.Option) error {
	o := applyDefaultOptions(opts...)
	log := o.Logger
	defer func() { _ = log.Sync() }()

	table := trigger.NewTable()
	client := obsclient.NewClient(o.ObsHost, o.ObsPort, o.ObsPassword, log.With(log.Field().String("component", "obsclient")))

	opener := o.MIDIOpener
	if opener == nil {
		opener = midi.NewOpener(log)
	}

	bucket := &errorBucket{}
	barrier := lifecycle.NewStartBarrier(3) // MidiInput, ObsEventPump, Supervisor

	midiActivity := midi.New(midi.Config{
		Opener:      opener,
		PortName:    o.MIDIPortName,
		Logger:      log.With(log.Field().String("component", "midi")),
		Barrier:     barrier,
		CloseSignal: closeSignal,
	})

	pump := eventpump.New(eventpump.Config{
		Client:         client,
		Logger:         log.With(log.Field().String("component", "eventpump")),
		PollInterval:   o.PollInterval,
		ReconnectDelay: o.ReconnectDelay,
		OnDisconnect:   o.OnObsDisconnect,
		OnReconnect:    o.OnObsReconnect,
		CloseSignal:    closeSignal,
		Barrier:        barrier,
	})

	ini := initializer.New(client, table, bucket.push)
	pump.AddHandler(ini.OnEvent)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); midiActivity.Run(bucket.push) }()
	go func() { defer wg.Done(); pump.Run(bucket.push) }()

	activitiesDone := make(chan struct{})
	go func() { wg.Wait(); close(activitiesDone) }()

	teardown := func() error {
		closeSignal.Set()
		wg.Wait()
		err := bucket.drain()
		_ = client.Close(err)
		return err
	}

	barrier.Arrive()
	if err := barrier.Wait(); err != nil {
		// A peer failed to start; its error is already in the bucket.
		return teardown()
	}

	if err := ini.Send(); err != nil {
		bucket.push(err)
		return teardown()
	}

	for !ini.IsDone() {
		if closeSignal.IsSet() {
			return teardown()
		}
		time.Sleep(startupPollInterval)
	}

	midiActivity.SetHandler(func(msg contracts.MidiMessage) {
		action, ok := table.Match(msg)
		if !ok {
			return
		}
		dispatch(client, action, log)
	})

	if o.OnReady != nil {
		o.OnReady(contracts.ReadyInfo{MIDIPortName: midiActivity.PortName(), Triggers: table.Snapshot()})
	}

	select {
	case <-closeSignal.Done():
	case <-activitiesDone:
		// A supervised activity exited without anyone asking it to.
	}

	return teardown()
}

// dispatch sends the OBS request bound to a matched trigger. Errors are
// logged, not raised: a single dropped control action does not justify
// tearing down the bridge.
func dispatch(client *obsclient.Client, action contracts.Action, log contracts.Logger) {
	var err error
	switch action.Kind {
	case contracts.SwitchScene:
		err = client.SetCurrentProgramScene(action.SceneName)
	case contracts.EnableFilter:
		err = client.EnableFilter(action.SourceName, action.FilterName)
	}
	if err != nil {
		log.Warn("failed to dispatch midi-triggered action", log.Field().Error("error", err))
	}
}
