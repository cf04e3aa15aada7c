package feed

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/strideworks/go-stride/internal/httpc"
	"github.com/strideworks/go-stride/pkg/protocol"
)

// Client is a Go-side observer: it dials a running stride server,
// receives the frame stream and can send control messages back.
type Client struct {
	baseURL  string
	viewerID string

	ws      *websocket.Conn
	wsMutex sync.Mutex

	onFrame func(protocol.FrameData)
	onState func(protocol.SceneState)

	framesReceived atomic.Uint64

	closed    bool
	connected bool
}

// NewClient creates a client for the server at baseURL
// (example: http://localhost:8080).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		viewerID: uuid.New().String(),
	}
}

// OnFrame sets the callback for incoming frames. Set it before
// Connect.
func (c *Client) OnFrame(callback func(protocol.FrameData)) {
	c.onFrame = callback
}

// OnState sets the callback for scene state updates. Set it before
// Connect.
func (c *Client) OnState(callback func(protocol.SceneState)) {
	c.onState = callback
}

// ViewerID returns the id this client identifies itself with.
func (c *Client) ViewerID() string {
	return c.viewerID
}

// Connect checks the server is healthy, then dials the feed endpoint
// and starts the read loop.
func (c *Client) Connect() error {
	resp, err := httpc.Get(c.baseURL + "/api/status")
	if err != nil {
		return fmt.Errorf("server health check failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("server not healthy: status %d", resp.StatusCode)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws/feed/" + c.viewerID
	c.ws, _, err = dialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed connect failed: %w", err)
	}

	c.connected = true
	go c.readLoop()
	return nil
}

// Connected reports whether the feed connection is up.
func (c *Client) Connected() bool {
	return c.connected && !c.closed
}

// FramesReceived returns the number of frames seen so far.
func (c *Client) FramesReceived() uint64 {
	return c.framesReceived.Load()
}

func (c *Client) readLoop() {
	for !c.closed {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.connected = false
			if !c.closed {
				fmt.Printf("⚠️  Feed read error: %v\n", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeFrame:
			c.framesReceived.Add(1)
			if c.onFrame != nil {
				if frame, err := msg.GetFrameData(); err == nil {
					c.onFrame(*frame)
				}
			}

		case protocol.TypeState:
			if c.onState != nil {
				if state, err := msg.GetSceneState(); err == nil {
					c.onState(*state)
				}
			}
		}
	}
}

// SendInput sends control axes to the server.
func (c *Client) SendInput(forward, turn float64, stop bool) error {
	msg, err := protocol.NewInputMessage(forward, turn, stop)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// SendPilot engages or disengages the server-side autopilot.
func (c *Client) SendPilot(engaged bool) error {
	msg, err := protocol.NewPilotMessage(engaged)
	if err != nil {
		return err
	}
	return c.send(msg)
}

// SendReset asks the server to put the body back at the origin.
func (c *Client) SendReset() error {
	msg, err := protocol.NewResetMessage()
	if err != nil {
		return err
	}
	return c.send(msg)
}

// Ping sends a health check; the server answers with a pong.
func (c *Client) Ping() error {
	msg, err := protocol.NewPingMessage(c.viewerID)
	if err != nil {
		return err
	}
	return c.send(msg)
}

func (c *Client) send(msg *protocol.Message) error {
	if c.ws == nil || !c.connected {
		return fmt.Errorf("not connected")
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the feed connection.
func (c *Client) Close() {
	c.closed = true
	if c.ws != nil {
		c.ws.Close()
	}
}
