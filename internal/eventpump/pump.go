// Package eventpump drives the ObsClient receive loop once the start
// gate opens, dispatching frames to registered handlers and
// transparently reconnecting on disconnection (spec §4.4).
package eventpump

import (
	"errors"
	"time"

	"github.com/florimondmanca/obs-midi/internal/lifecycle"
	"github.com/florimondmanca/obs-midi/internal/obsclient"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

// Handler is invoked for every frame the pump reads from OBS.
type Handler func(frame *obsclient.Frame)

// Pump is the ObsEventPump activity.
type Pump struct {
	client *obsclient.Client
	logger contracts.Logger

	pollInterval   time.Duration
	reconnectDelay time.Duration

	handlers []Handler

	onDisconnect contracts.OnObsDisconnectFunc
	onReconnect  contracts.OnObsReconnectFunc

	closeSignal *lifecycle.CloseSignal
	barrier     *lifecycle.StartBarrier
}

// Config bundles the construction parameters for a Pump.
type Config struct {
	Client         *obsclient.Client
	Logger         contracts.Logger
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	OnDisconnect   contracts.OnObsDisconnectFunc
	OnReconnect    contracts.OnObsReconnectFunc
	CloseSignal    *lifecycle.CloseSignal
	Barrier        *lifecycle.StartBarrier
}

// New builds a Pump. AddHandler must be called before Run to register
// consumers (typically the Initializer).
func New(cfg Config) *Pump {
	return &Pump{
		client:         cfg.Client,
		logger:         cfg.Logger,
		pollInterval:   cfg.PollInterval,
		reconnectDelay: cfg.ReconnectDelay,
		onDisconnect:   cfg.OnDisconnect,
		onReconnect:    cfg.OnReconnect,
		closeSignal:    cfg.CloseSignal,
		barrier:        cfg.Barrier,
	}
}

// AddHandler registers a frame consumer. Must be called before Run.
func (p *Pump) AddHandler(h Handler) {
	p.handlers = append(p.handlers, h)
}

// Run connects, arrives at the start barrier, waits for its peers, then
// dispatches frames until the close signal is set or a fatal error
// occurs. pushErr reports a fatal error to the supervisor's error
// bucket; Run always returns after reporting, it never panics or exits
// the process itself.
func (p *Pump) Run(pushErr func(error)) {
	if err := p.client.Connect(); err != nil {
		pushErr(err)
		p.barrier.Abort()
		p.closeSignal.Set()
		return
	}

	p.barrier.Arrive()
	if err := p.barrier.Wait(); err != nil {
		// A peer (MidiInput or the Supervisor itself) aborted the
		// barrier; teardown is already underway.
		return
	}

outer:
	for {
		for {
			if p.closeSignal.IsSet() {
				break outer
			}
			frame, err := p.client.NextEvent(p.pollInterval)
			if err != nil {
				break
			}
			if frame == nil {
				continue
			}
			for _, h := range p.handlers {
				h(frame)
			}
		}

		if p.closeSignal.IsSet() {
			break outer
		}

		p.logger.Warn("obs connection lost, reconnecting")
		if p.onDisconnect != nil {
			p.onDisconnect()
		}

		if err := p.reconnectWithBackoff(); err != nil {
			pushErr(err)
			p.closeSignal.Set()
			break outer
		}
		if p.closeSignal.IsSet() {
			break outer
		}

		p.logger.Info("obs connection restored")
		if p.onReconnect != nil {
			p.onReconnect()
		}
	}
}

// reconnectWithBackoff retries Client.Reconnect on a fixed delay,
// rechecking the close signal after every sleep, until it succeeds, the
// close signal is observed (nil, cooperative exit), or authentication
// fails (non-nil, fatal — spec §9 open question 2 is resolved as
// "never retried").
func (p *Pump) reconnectWithBackoff() error {
	for {
		select {
		case <-p.closeSignal.Done():
			return nil
		case <-time.After(p.reconnectDelay):
		}
		if p.closeSignal.IsSet() {
			return nil
		}

		err := p.client.Reconnect()
		if err == nil {
			return nil
		}

		var authErr *obsclient.ErrAuthFailed
		if errors.As(err, &authErr) {
			return err
		}

		p.logger.Warn("obs reconnect attempt failed, retrying",
			p.logger.Field().Error("error", err),
			p.logger.Field().Duration("delay", p.reconnectDelay))
	}
}
