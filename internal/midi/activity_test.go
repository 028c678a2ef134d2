package midi

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florimondmanca/obs-midi/internal/lifecycle"
	"github.com/florimondmanca/obs-midi/internal/logger"
	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

type fakeOpener struct {
	mu        sync.Mutex
	onMessage func(contracts.MidiMessage)
	closed    bool
	openErr   error
	opened    chan struct{}
	name      string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{opened: make(chan struct{}, 1)}
}

func (f *fakeOpener) Open(portName string, onMessage func(contracts.MidiMessage)) (contracts.Scope, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	f.onMessage = onMessage
	f.name = portName
	f.mu.Unlock()
	f.opened <- struct{}{}
	return f, nil
}

func (f *fakeOpener) ListPorts() ([]string, error) { return nil, nil }

func (f *fakeOpener) PortName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *fakeOpener) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeOpener) deliver(msg contracts.MidiMessage) {
	f.mu.Lock()
	cb := f.onMessage
	f.mu.Unlock()
	cb(msg)
}

func TestActivity_DropsMessagesUntilHandlerInstalled(t *testing.T) {
	opener := newFakeOpener()
	barrier := lifecycle.NewStartBarrier(1)
	closeSig := lifecycle.NewCloseSignal()
	a := New(Config{Opener: opener, Logger: logger.NewZapLogger(), Barrier: barrier, CloseSignal: closeSig})

	done := make(chan struct{})
	go func() { a.Run(func(err error) { t.Errorf("unexpected error: %v", err) }); close(done) }()

	<-opener.opened
	require.NoError(t, barrier.Wait())

	opener.deliver(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 1, Note: 1, Velocity: 100})

	var mu sync.Mutex
	var received []contracts.MidiMessage
	a.SetHandler(func(msg contracts.MidiMessage) {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	})

	opener.deliver(contracts.MidiMessage{Kind: contracts.NoteOnMessage, Channel: 2, Note: 2, Velocity: 100})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, received[0].Channel)
	mu.Unlock()

	closeSig.Set()
	<-done
	assert.True(t, opener.closed)
}

func TestActivity_OpenFailureAbortsBarrierAndClosesSignal(t *testing.T) {
	opener := newFakeOpener()
	opener.openErr = fmt.Errorf("boom")
	barrier := lifecycle.NewStartBarrier(1)
	closeSig := lifecycle.NewCloseSignal()
	a := New(Config{Opener: opener, Logger: logger.NewZapLogger(), Barrier: barrier, CloseSignal: closeSig})

	var gotErr error
	a.Run(func(err error) { gotErr = err })

	require.Error(t, gotErr)
	assert.True(t, closeSig.IsSet())
	assert.ErrorIs(t, barrier.Wait(), lifecycle.ErrBarrierAborted)
}

func TestActivity_AbortedBarrierStopsWithoutBlockingOnCloseSignal(t *testing.T) {
	opener := newFakeOpener()
	barrier := lifecycle.NewStartBarrier(2) // never reached by a second party
	closeSig := lifecycle.NewCloseSignal()
	a := New(Config{Opener: opener, Logger: logger.NewZapLogger(), Barrier: barrier, CloseSignal: closeSig})

	done := make(chan struct{})
	go func() { a.Run(func(err error) { t.Errorf("unexpected error: %v", err) }); close(done) }()

	<-opener.opened
	barrier.Abort()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run never returned after barrier abort")
	}
	assert.True(t, opener.closed)
}
