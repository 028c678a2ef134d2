package obsclient

import "fmt"

// ErrConnectRefused wraps a failure to establish the TCP/WebSocket
// connection. Fatal on the first connect attempt, retried during
// reconnect (spec §4.2, §7).
type ErrConnectRefused struct {
	Err error
}

func (e *ErrConnectRefused) Error() string { return fmt.Sprintf("obs connect refused: %v", e.Err) }
func (e *ErrConnectRefused) Unwrap() error { return e.Err }

// ErrAuthFailed wraps an authentication handshake failure: the peer
// closed the socket during Identify, with CloseCode carrying the
// WebSocket close code for observability. Always fatal, even during
// reconnect (spec §7, §9 open question 2).
type ErrAuthFailed struct {
	CloseCode int
	Err       error
}

func (e *ErrAuthFailed) Error() string {
	return fmt.Sprintf("obs authentication failed (close code %d): %v", e.CloseCode, e.Err)
}
func (e *ErrAuthFailed) Unwrap() error { return e.Err }

// ErrDisconnected indicates an established socket closed mid-session.
// Not fatal by itself; it triggers the reconnect policy.
type ErrDisconnected struct {
	Err error
}

func (e *ErrDisconnected) Error() string { return fmt.Sprintf("obs disconnected: %v", e.Err) }
func (e *ErrDisconnected) Unwrap() error { return e.Err }

// ErrProtocol wraps a malformed frame, a missing expected field, or a
// requestStatus.result == false on a request the Initializer depends
// on. Fatal.
type ErrProtocol struct {
	Detail string
}

func (e *ErrProtocol) Error() string { return fmt.Sprintf("obs protocol error: %s", e.Detail) }
