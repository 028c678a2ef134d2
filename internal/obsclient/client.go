// Package obsclient implements a minimal obs-websocket v5 RPC v1
// client: connect/authenticate, correlated request/response, a pull-
// style event iterator, and reconnect (spec §4.2).
package obsclient

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/florimondmanca/obs-midi/sdk/contracts"
)

const helloTimeout = 10 * time.Second

// pendingRequest is the PendingRequest tuple from spec §3, minus the
// request_id which is the map key it lives under.
type pendingRequest struct {
	requestType string
	requestData map[string]interface{}
}

// Client is a synchronous obs-websocket v5 client. One outbound
// connection is held at a time. SendRequest is safe under concurrent
// access from multiple goroutines (spec §5); NextEvent must only be
// called by a single reader goroutine (the ObsEventPump).
type Client struct {
	host     string
	port     int
	password string
	logger   contracts.Logger

	mu        sync.Mutex // guards conn, pending, responses below
	conn      *websocket.Conn
	pending   map[string]pendingRequest
	responses map[string]struct{}
}

// NewClient builds a client targeting ws://host:port/. No connection is
// made until Connect is called.
func NewClient(host string, port int, password string, logger contracts.Logger) *Client {
	return &Client{
		host:      host,
		port:      port,
		password:  password,
		logger:    logger,
		pending:   make(map[string]pendingRequest),
		responses: make(map[string]struct{}),
	}
}

func (c *Client) url() string {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(c.host, strconv.Itoa(c.port)), Path: "/"}
	return u.String()
}

// Connect dials OBS and performs the authentication handshake. On
// return, the client either holds a live, identified connection or has
// returned an *ErrConnectRefused / *ErrAuthFailed, or an *ErrProtocol
// when OBS sends an unexpected or malformed handshake frame.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url(), nil)
	if err != nil {
		return &ErrConnectRefused{Err: err}
	}

	if err := c.handshake(conn); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// Non-critical preflight: a GetVersion request. Its response is never
	// awaited or inspected here (it reaches the event handlers like any
	// other frame), so it cannot perturb Initializer's pending-set
	// invariant (SPEC_FULL supplemented feature #1). Only a send failure
	// is logged.
	if _, err := c.SendRequest("GetVersion", nil); err != nil {
		c.logger.Debug("GetVersion preflight failed", c.logger.Field().Error("error", err))
	}

	return nil
}

func (c *Client) handshake(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var hello Frame
	if err := conn.ReadJSON(&hello); err != nil {
		return authFailure(err)
	}
	if hello.Op != opHello {
		return &ErrProtocol{Detail: fmt.Sprintf("expected Hello (op 0), got op %d", hello.Op)}
	}

	var payload helloPayload
	if err := json.Unmarshal(hello.D, &payload); err != nil {
		return &ErrProtocol{Detail: "malformed Hello payload: " + err.Error()}
	}

	identify := identifyPayload{RPCVersion: rpcVersion}
	if payload.Authentication != nil {
		identify.Authentication = computeAuthResponse(c.password, payload.Authentication.Salt, payload.Authentication.Challenge)
	}

	identifyFrame := Frame{Op: opIdentify}
	identifyFrame.D, _ = json.Marshal(identify)
	if err := conn.WriteJSON(identifyFrame); err != nil {
		return authFailure(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(helloTimeout))
	var ack Frame
	if err := conn.ReadJSON(&ack); err != nil {
		return authFailure(err)
	}
	if ack.Op != opIdentified {
		return &ErrProtocol{Detail: fmt.Sprintf("expected Identified (op 2), got op %d", ack.Op)}
	}

	_ = conn.SetReadDeadline(time.Time{})
	return nil
}

func authFailure(err error) error {
	code := websocket.CloseNoStatusReceived
	if ce, ok := err.(*websocket.CloseError); ok {
		code = ce.Code
	}
	return &ErrAuthFailed{CloseCode: code, Err: err}
}

// Reconnect closes any open socket and calls Connect again.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	return c.Connect()
}

// Close sends a normal close (1000) when reason is nil, an internal
// error close (1011) otherwise, then closes the socket. Idempotent:
// closing an already-closed client is a no-op.
func (c *Client) Close(reason error) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	code := websocket.CloseNormalClosure
	text := ""
	if reason != nil {
		code = websocket.CloseInternalServerErr
		text = reason.Error()
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	return conn.Close()
}

// SendRequest assigns a fresh UUIDv4 requestId, serializes an op-6
// frame, remembers requestData under that id when non-nil, and returns
// the id without waiting for a response.
func (c *Client) SendRequest(requestType string, requestData map[string]interface{}) (string, error) {
	id := uuid.NewString()

	frame := Frame{Op: opRequest}
	var payload interface{}
	if requestData != nil {
		payload = requestData
	}
	body, err := json.Marshal(requestPayload{RequestType: requestType, RequestID: id, RequestData: payload})
	if err != nil {
		return "", err
	}
	frame.D = body

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return "", &ErrDisconnected{Err: fmt.Errorf("not connected")}
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return "", err
	}
	if requestData != nil {
		c.pending[id] = pendingRequest{requestType: requestType, requestData: requestData}
	}
	return id, nil
}

// SetCurrentProgramScene sends SetCurrentProgramScene and discards the
// request id.
func (c *Client) SetCurrentProgramScene(sceneName string) error {
	_, err := c.SendRequest("SetCurrentProgramScene", map[string]interface{}{"sceneName": sceneName})
	return err
}

// EnableFilter sends SetSourceFilterEnabled{filterEnabled: true} and
// discards the request id.
func (c *Client) EnableFilter(sourceName, filterName string) error {
	_, err := c.SendRequest("SetSourceFilterEnabled", map[string]interface{}{
		"sourceName":    sourceName,
		"filterName":    filterName,
		"filterEnabled": true,
	})
	return err
}

// NextEvent blocks up to pollInterval for a frame. It returns
// (nil, nil) on timeout so a caller can poll a close signal,
// (frame, nil) when a frame arrived, an *ErrDisconnected when the peer
// closed the socket (or the read failed otherwise), and an *ErrProtocol
// when a frame arrived that is not valid JSON.
func (c *Client) NextEvent(pollInterval time.Duration) (*Frame, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, &ErrDisconnected{Err: fmt.Errorf("not connected")}
	}

	_ = conn.SetReadDeadline(time.Now().Add(pollInterval))
	_, data, err := conn.ReadMessage()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil
		}
		return nil, &ErrDisconnected{Err: err}
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, &ErrProtocol{Detail: "malformed frame: " + err.Error()}
	}

	if resp, ok := frame.AsResponse(); ok {
		c.mu.Lock()
		c.responses[resp.RequestID] = struct{}{}
		c.mu.Unlock()
	}

	return &frame, nil
}

// IsResponse reports whether frame is a successful op-7 RequestResponse
// (frame.op == 7 AND requestStatus.result == true). A response whose
// result is false is still a response op-wise; consumers that depend on
// it treat result == false as a protocol-level failure (spec §7).
func (c *Client) IsResponse(frame *Frame) bool {
	if frame == nil {
		return false
	}
	resp, ok := frame.AsResponse()
	return ok && resp.RequestStatus.Result
}

// HasResponsesFor reports whether every id in ids has been observed as
// a response. Convenience used by the Initializer to decide whether its
// outstanding discovery requests have all been answered.
func (c *Client) HasResponsesFor(ids map[string]struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range ids {
		if _, ok := c.responses[id]; !ok {
			return false
		}
	}
	return true
}

// GetRequestData looks up and consumes the request_data originally sent
// under requestID. It is retrievable exactly once: spec §3 guarantees
// it stays available "for as long as the response has not been
// delivered to consumers", and delivery to the Initializer is this
// call.
func (c *Client) GetRequestData(requestID string) (map[string]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pr, ok := c.pending[requestID]
	if !ok {
		return nil, false
	}
	delete(c.pending, requestID)
	return pr.requestData, true
}
