package contracts

import "time"

// OnReadyFunc is invoked once startup completes successfully.
type OnReadyFunc func(ReadyInfo)

// OnObsDisconnectFunc is invoked whenever the ObsEventPump observes the
// OBS socket closing mid-session, before it starts reconnecting.
type OnObsDisconnectFunc func()

// OnObsReconnectFunc is invoked after a dropped OBS connection has been
// re-established and re-authenticated.
type OnObsReconnectFunc func()

// SupervisorOptions configures a bridge run. Construct via the With*
// functions below; zero values are replaced by applyDefaultOptions.
type SupervisorOptions struct {
	Logger   Logger
	LogLevel LogLevel

	MIDIPortName string
	MIDIOpener   MidiInputOpener // injected for tests; nil selects the platform default

	ObsHost     string
	ObsPort     int
	ObsPassword string

	ReconnectDelay time.Duration
	PollInterval   time.Duration

	OnReady          OnReadyFunc
	OnObsDisconnect  OnObsDisconnectFunc
	OnObsReconnect   OnObsReconnectFunc
}

// Option mutates SupervisorOptions during construction.
type Option func(*SupervisorOptions)

// WithLogger sets the logger used by every component of the bridge.
func WithLogger(l Logger) Option {
	return func(o *SupervisorOptions) { o.Logger = l }
}

// WithLogLevel sets the minimum level the logger emits.
func WithLogLevel(level LogLevel) Option {
	return func(o *SupervisorOptions) { o.LogLevel = level }
}

// WithMIDIPortName pins the bridge to a named hardware MIDI input port.
// If unset, the platform opener creates a virtual port when it supports
// one.
func WithMIDIPortName(name string) Option {
	return func(o *SupervisorOptions) { o.MIDIPortName = name }
}

// WithMIDIOpener injects a MidiInputOpener, bypassing the platform
// factory. Primarily for tests.
func WithMIDIOpener(opener MidiInputOpener) Option {
	return func(o *SupervisorOptions) { o.MIDIOpener = opener }
}

// WithObsConnection sets the obs-websocket host, port, and password.
func WithObsConnection(host string, port int, password string) Option {
	return func(o *SupervisorOptions) {
		o.ObsHost = host
		o.ObsPort = port
		o.ObsPassword = password
	}
}

// WithReconnectDelay overrides the fixed delay between OBS reconnect
// attempts (default ~2s per spec §4.4).
func WithReconnectDelay(d time.Duration) Option {
	return func(o *SupervisorOptions) { o.ReconnectDelay = d }
}

// WithPollInterval overrides the bounded socket-read poll used by
// ObsEventPump to recheck the close signal (default 200ms per spec §5).
func WithPollInterval(d time.Duration) Option {
	return func(o *SupervisorOptions) { o.PollInterval = d }
}

// WithOnReady registers the callback fired once startup completes.
func WithOnReady(fn OnReadyFunc) Option {
	return func(o *SupervisorOptions) { o.OnReady = fn }
}

// WithOnObsDisconnect registers the callback fired when OBS drops mid-session.
func WithOnObsDisconnect(fn OnObsDisconnectFunc) Option {
	return func(o *SupervisorOptions) { o.OnObsDisconnect = fn }
}

// WithOnObsReconnect registers the callback fired after OBS reconnects.
func WithOnObsReconnect(fn OnObsReconnectFunc) Option {
	return func(o *SupervisorOptions) { o.OnObsReconnect = fn }
}
