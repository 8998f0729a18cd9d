// Package remote maintains the push connection to the local YouTube Music
// API server and carries best-effort outbound playback commands.
package remote

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"karolbroda.com/ytmirror/internal/logger"
)

const (
	wsRoute = "/api/v1/ws"

	// Reconnect tiers: a socket error retries sooner than a clean close.
	errorReconnectDelay = 5 * time.Second
	closeReconnectDelay = 10 * time.Second

	commandTimeout = 10 * time.Second
)

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateReady
)

// wsConn is the slice of *websocket.Conn the read loop needs. Tests swap in
// a scripted connection.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client holds the single persistent push connection. Inbound frames are
// decoded into StatePatch values and handed to the patch callback; outbound
// commands are one-shot HTTP requests with at-most-once semantics.
type Client struct {
	endpoint string

	onPatch func(*StatePatch)
	onOpen  func()

	dial func(wsURL string) (wsConn, error)

	errorDelay time.Duration
	closeDelay time.Duration

	httpClient *http.Client

	mu             sync.Mutex
	state          connState
	conn           wsConn
	reconnectTimer *time.Timer
	closed         bool
}

// NewClient builds a client for the given API endpoint. An empty endpoint is
// allowed; Connect becomes a no-op until one is configured. onOpen fires once
// per successful connection, before any message is delivered.
func NewClient(endpoint string, onPatch func(*StatePatch), onOpen func()) *Client {
	return &Client{
		endpoint:   endpoint,
		onPatch:    onPatch,
		onOpen:     onOpen,
		dial:       gorillaDial,
		errorDelay: errorReconnectDelay,
		closeDelay: closeReconnectDelay,
		httpClient: &http.Client{Timeout: commandTimeout},
	}
}

func gorillaDial(wsURL string) (wsConn, error) {
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Connect opens the push connection. It is a no-op while a connection is
// live, a dial is in flight, or a reconnect timer is already pending, so
// repeated calls never produce a second connection.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed || c.state != stateIdle || c.reconnectTimer != nil {
		c.mu.Unlock()
		return
	}
	if c.endpoint == "" {
		c.mu.Unlock()
		return
	}

	wsURL, err := c.wsURL()
	if err != nil {
		c.mu.Unlock()
		logger.Log.Error().Err(err).Str("endpoint", c.endpoint).Msg("bad api endpoint")
		return
	}

	c.state = stateConnecting
	c.mu.Unlock()

	go c.run(wsURL)
}

func (c *Client) wsURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = wsRoute
	return u.String(), nil
}

func (c *Client) run(wsURL string) {
	conn, err := c.dial(wsURL)
	if err != nil {
		logger.Log.Warn().Err(err).Str("url", wsURL).Msg("connection failed")
		c.dropAndReconnect(c.errorDelay)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.state = stateReady
	c.mu.Unlock()

	logger.Log.Info().Str("url", wsURL).Msg("connected to player")
	if c.onOpen != nil {
		c.onOpen()
	}

	c.readLoop(conn)
}

func (c *Client) readLoop(conn wsConn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			delay := c.errorDelay
			if isClose(err) {
				delay = c.closeDelay
			}
			logger.Log.Warn().Err(err).Msg("player connection lost")
			conn.Close()
			c.dropAndReconnect(delay)
			return
		}

		patch, err := DecodePatch(data)
		if err != nil {
			// Non-fatal: log, drop the frame, keep reading.
			logger.Log.Error().Err(err).Str("payload", string(data)).Msg("invalid push message")
			continue
		}
		if c.onPatch != nil {
			c.onPatch(patch)
		}
	}
}

func isClose(err error) bool {
	if _, ok := err.(*websocket.CloseError); ok {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

// dropAndReconnect resets to idle, tells consumers playback stopped, and arms
// a single reconnect timer. An already-pending timer wins.
func (c *Client) dropAndReconnect(delay time.Duration) {
	c.mu.Lock()
	c.state = stateIdle
	c.conn = nil
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.reconnectTimer == nil {
		c.reconnectTimer = time.AfterFunc(delay, func() {
			c.mu.Lock()
			c.reconnectTimer = nil
			c.mu.Unlock()
			c.Connect()
		})
	}
	c.mu.Unlock()

	if c.onPatch != nil {
		c.onPatch(StoppedPatch())
	}
}

// Send issues a fire-and-forget command. Failures are logged and never
// surfaced: playback controls are idempotent and the UI already updated
// optimistically.
func (c *Client) Send(method string, route string, body any) {
	if c.endpoint == "" {
		return
	}

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			logger.Log.Error().Err(err).Str("route", route).Msg("failed to encode command body")
			return
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.endpoint+route, payload)
	if err != nil {
		logger.Log.Error().Err(err).Str("route", route).Msg("failed to build command request")
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	go func() {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			logger.Log.Warn().Err(err).Str("route", route).Msg("command failed")
			return
		}
		resp.Body.Close()
	}()
}

// Close tears the client down for good; no further reconnects are scheduled.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.state = stateIdle
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
